package coordinator

import (
	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// GlobalModel returns the most recently aggregated update, or nil before
// the first successful round. Callers must treat it as read-only.
func (c *Coordinator) GlobalModel() *model.Update {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.globalModel
}

// History returns a copy of the append-only round history.
func (c *Coordinator) History() []*model.Round {
	c.mu.RLock()
	defer c.mu.RUnlock()
	history := make([]*model.Round, len(c.history))
	copy(history, c.history)
	return history
}

// Participants returns the registered participants in registration order.
func (c *Coordinator) Participants() []Trainer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	participants := make([]Trainer, 0, len(c.order))
	for _, id := range c.order {
		participants = append(participants, c.participants[id])
	}
	return participants
}

// StrategyName returns the name of the active aggregation strategy.
func (c *Coordinator) StrategyName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active.Name()
}

// Stopped reports whether the coordinator reached its terminal state.
func (c *Coordinator) Stopped() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stopped
}

// Snapshot exports the current federation state as a plain value for
// observability collaborators.
func (c *Coordinator) Snapshot() model.MetricsSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := model.MetricsSnapshot{
		Round:              int32(len(c.history)),
		Strategy:           c.active.Name(),
		TrainingInProgress: c.inRound,
		ParticipantCount:   len(c.participants),
	}
	if c.globalModel != nil {
		snapshot.GlobalAccuracy = c.globalModel.Accuracy
	}

	recent := c.history
	if len(recent) > common.SNAPSHOT_RECENT_ROUNDS {
		recent = recent[len(recent)-common.SNAPSHOT_RECENT_ROUNDS:]
	}
	snapshot.RecentRounds = make([]model.RoundSnapshot, len(recent))
	for i, round := range recent {
		snapshot.RecentRounds[i] = round.Snapshot(c.active.Name())
	}

	return snapshot
}
