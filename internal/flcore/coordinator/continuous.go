package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/events"
)

// StartContinuousRounds schedules RunRound on a fixed interval until Stop is
// called. Stopping is cooperative and checked at round boundaries only; an
// in-flight round always finishes. The interval also serves as the
// per-round training deadline for the barrier.
func (c *Coordinator) StartContinuousRounds(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid round interval: %s", interval)
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	c.mu.Unlock()

	_, err := c.cronScheduler.AddFunc(fmt.Sprintf("@every %ds", int(interval.Seconds())), func() {
		c.mu.RLock()
		stopped := c.stopped
		inRound := c.inRound
		c.mu.RUnlock()
		if stopped || inRound {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		if _, err := c.RunRound(ctx); err != nil && !errors.Is(err, ErrEmptyRound) && !errors.Is(err, ErrRoundInProgress) {
			c.logger.Error(fmt.Sprintf("Continuous round failed: %s", err.Error()))
		}
	})
	if err != nil {
		return err
	}

	c.cronScheduler.Start()
	c.logger.Info(fmt.Sprintf("Continuous training started, one round every %s", interval))

	return nil
}

// Stop transitions the coordinator to its terminal state. No further rounds
// run after the current one finishes; registration and queries keep
// working.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	rounds := int32(len(c.history))
	accuracy := 0.0
	if c.globalModel != nil {
		accuracy = c.globalModel.Accuracy
	}
	c.mu.Unlock()

	c.cronScheduler.Stop()
	c.logger.Info(fmt.Sprintf("Coordinator stopped after %d rounds", rounds))

	c.eventBus.Publish(events.Event{
		Type:      common.TRAINING_FINISHED_EVENT_TYPE,
		Timestamp: time.Now(),
		Data: events.TrainingFinishedEvent{
			RoundsCompleted: rounds,
			FinalAccuracy:   accuracy,
			ExitMessage:     "stopped by caller",
		},
	})
}
