package model

import "time"

// RoundSnapshot is the read-only per-round view exported to observability
// collaborators (dashboards, metrics exporters).
type RoundSnapshot struct {
	Round            int32     `json:"round"`
	Timestamp        time.Time `json:"timestamp"`
	ParticipantCount int       `json:"participantCount"`
	TotalSamples     int       `json:"totalSamples"`
	Strategy         string    `json:"strategy"`
}

// MetricsSnapshot is the read-only current-state view of a federation.
type MetricsSnapshot struct {
	Round              int32           `json:"round"`
	GlobalAccuracy     float64         `json:"globalAccuracy"`
	Strategy           string          `json:"strategy"`
	TrainingInProgress bool            `json:"trainingInProgress"`
	ParticipantCount   int             `json:"participantCount"`
	RecentRounds       []RoundSnapshot `json:"recentRounds"`
}

// EvaluationResult holds ensemble quality metrics against labeled data.
type EvaluationResult struct {
	Accuracy  float64   `json:"accuracy"`
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
	F1Score   float64   `json:"f1Score"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot exports the round as a plain observability value.
func (r *Round) Snapshot(strategyName string) RoundSnapshot {
	return RoundSnapshot{
		Round:            r.Number,
		Timestamp:        r.Timestamp,
		ParticipantCount: len(r.ParticipantIds),
		TotalSamples:     r.TotalSamples,
		Strategy:         strategyName,
	}
}
