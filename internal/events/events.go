package events

import (
	"sync"
	"time"

	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// Event represents a generic event structure
type Event struct {
	Type      string
	Timestamp time.Time
	Data      interface{}
}

// RoundCompletedEvent is published after every successful federated round.
type RoundCompletedEvent struct {
	Round            *model.Round
	Strategy         string
	GlobalAccuracy   float64
	ParticipantCount int
}

// TrainingFinishedEvent is published when a continuous-training loop stops.
type TrainingFinishedEvent struct {
	RoundsCompleted int32
	FinalAccuracy   float64
	ExitMessage     string
}

// EventBus handles event subscription and dispatching. Delivery is
// fire-and-forget: a subscriber whose channel is full misses the event
// rather than blocking the publisher.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan<- Event
}

// NewEventBus creates a new instance of the event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan<- Event),
	}
}

// Subscribe adds a new subscriber for a given event type
func (eb *EventBus) Subscribe(eventType string, subscriber chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// Publish sends an event to all subscribers of a given event type without
// blocking on any of them.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	subscribers := eb.subscribers[event.Type]
	eb.mu.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
		}
	}
}
