package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/robfig/cron/v3"

	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/events"
	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/strategy"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

var ErrDuplicateParticipant = errors.New("duplicate participant id")
var ErrUnknownStrategy = errors.New("unknown strategy")
var ErrEmptyRound = errors.New("no participant produced an update")
var ErrRoundInProgress = errors.New("a round is already in progress")
var ErrStopped = errors.New("coordinator is stopped")

// Trainer is the contract the coordinator requires of a participant. The
// concrete implementation lives in the participant package; the interface
// keeps the round machinery independent of any particular local model.
type Trainer interface {
	ID() string
	Kind() model.ModelKind
	IsTrained() bool
	LocalTrain(globalParams map[string][]float64, epochs int) (*model.Update, error)
	Predict(vectors [][]float64) ([]int, error)
}

// Coordinator owns the round lifecycle, the participant registry, the
// global model state and the round history. The global model is replaced
// atomically at the end of each successful round and never mutated in
// place; participants read it at the start of local training but never
// write it.
type Coordinator struct {
	mu            sync.RWMutex
	logger        hclog.Logger
	eventBus      *events.EventBus
	participants  map[string]Trainer
	order         []string
	strategies    map[string]strategy.Strategy
	active        strategy.Strategy
	globalModel   *model.Update
	history       []*model.Round
	epochs        int
	stopped       bool
	inRound       bool
	cronScheduler *cron.Cron
}

// New builds a coordinator with the given strategies, activating
// activeName. At least one strategy is required and activeName must be
// among them.
func New(logger hclog.Logger, eventBus *events.EventBus, strategies []strategy.Strategy, activeName string, epochs int) (*Coordinator, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("at least one aggregation strategy is required")
	}
	if epochs <= 0 {
		epochs = common.DEFAULT_EPOCHS
	}

	byName := map[string]strategy.Strategy{}
	for _, s := range strategies {
		byName[s.Name()] = s
	}

	active, ok := byName[activeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, activeName)
	}

	return &Coordinator{
		logger:        logger,
		eventBus:      eventBus,
		participants:  map[string]Trainer{},
		strategies:    byName,
		active:        active,
		epochs:        epochs,
		cronScheduler: cron.New(cron.WithSeconds()),
	}, nil
}

// Register adds a participant to the registry. Ids must be unique; a
// collision is rejected with no partial registration.
func (c *Coordinator) Register(t Trainer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.participants[t.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateParticipant, t.ID())
	}

	c.participants[t.ID()] = t
	c.order = append(c.order, t.ID())
	c.logger.Info(fmt.Sprintf("Registered participant %s with model kind %s", t.ID(), t.Kind()))

	return nil
}

// SetStrategy swaps the active aggregation strategy for subsequent rounds.
// History already recorded is unaffected. An unknown name leaves the active
// strategy unchanged.
func (c *Coordinator) SetStrategy(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.strategies[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}

	c.active = s
	c.logger.Info(fmt.Sprintf("Aggregation strategy changed to %s", name))

	return nil
}

// RunRound executes one federated round: every registered participant
// trains locally and concurrently, the non-failed updates are aggregated by
// the active strategy, the global model is replaced and a round record
// appended. At most one round runs at a time; a call arriving while another
// is in flight is rejected with ErrRoundInProgress. When every participant
// fails, ErrEmptyRound is returned and no state changes; the caller may
// simply retry. A context deadline bounds the barrier: participants that
// have not returned when ctx expires are excluded from the round rather
// than waited on indefinitely.
func (c *Coordinator) RunRound(ctx context.Context) (*model.Round, error) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil, ErrStopped
	}
	if c.inRound {
		c.mu.Unlock()
		return nil, ErrRoundInProgress
	}
	c.inRound = true
	participants := make([]Trainer, 0, len(c.participants))
	for _, id := range c.order {
		participants = append(participants, c.participants[id])
	}
	globalParams := map[string][]float64{}
	if c.globalModel != nil {
		globalParams = c.globalModel.Params
	}
	active := c.active
	roundNumber := int32(len(c.history) + 1)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inRound = false
		c.mu.Unlock()
	}()

	c.logger.Info(fmt.Sprintf("Starting federated round %d with %d participants", roundNumber, len(participants)))

	updates := c.collectUpdates(ctx, participants, globalParams)
	if len(updates) == 0 {
		c.logger.Warn(fmt.Sprintf("Round %d produced no updates", roundNumber))
		return nil, ErrEmptyRound
	}

	result := active.Aggregate(updates)

	participantIds := make([]string, len(updates))
	totalSamples := 0
	for i, update := range updates {
		participantIds[i] = update.ParticipantId
		totalSamples += update.SampleCount
	}

	round := &model.Round{
		Timestamp:      time.Now(),
		ParticipantIds: participantIds,
		TotalSamples:   totalSamples,
		Result:         result,
	}

	// The number is assigned at append time under the lock; with the
	// in-round gate above it always equals roundNumber.
	c.mu.Lock()
	round.Number = int32(len(c.history) + 1)
	c.globalModel = result
	c.history = append(c.history, round)
	c.mu.Unlock()

	c.logger.Info(fmt.Sprintf("Round %d completed: %d participants, %d samples, accuracy %.4f",
		round.Number, len(participantIds), totalSamples, result.Accuracy))

	c.eventBus.Publish(events.Event{
		Type:      common.ROUND_COMPLETED_EVENT_TYPE,
		Timestamp: round.Timestamp,
		Data: events.RoundCompletedEvent{
			Round:            round,
			Strategy:         active.Name(),
			GlobalAccuracy:   result.Accuracy,
			ParticipantCount: len(participantIds),
		},
	})

	return round, nil
}

// collectUpdates fans local training out across participants and waits at
// the aggregation barrier until everyone has returned or failed, or the
// context expired. Failed participants contribute nothing; zero-sample
// updates never reach a strategy.
func (c *Coordinator) collectUpdates(ctx context.Context, participants []Trainer, globalParams map[string][]float64) []*model.Update {
	results := make(chan *model.Update, len(participants))
	var wg sync.WaitGroup

	for _, p := range participants {
		wg.Add(1)
		go func(t Trainer) {
			defer wg.Done()
			update, err := t.LocalTrain(globalParams, c.epochs)
			if err != nil {
				c.logger.Warn(fmt.Sprintf("Participant %s failed local training: %s", t.ID(), err.Error()))
				return
			}
			if update.SampleCount <= 0 {
				c.logger.Warn(fmt.Sprintf("Participant %s returned a zero-sample update, excluding", t.ID()))
				return
			}
			results <- update
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Warn("Round barrier abandoned, excluding participants that have not returned")
	}

	// The channel is buffered to len(participants), so stragglers finishing
	// after an abandoned barrier still send without blocking; their updates
	// are simply never read.
	collected := len(results)
	updates := make([]*model.Update, 0, collected)
	for i := 0; i < collected; i++ {
		updates = append(updates, <-results)
	}
	return updates
}
