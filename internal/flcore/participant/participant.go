package participant

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/privacy"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

var ErrInsufficientData = errors.New("insufficient data for training")
var ErrNotTrained = errors.New("model not trained yet")

// Participant is an independent holder of private local data and a local
// detection model. Its data never leaves the process boundary; only the
// parameter vectors returned by LocalTrain do, and those are perturbed with
// Laplace noise under the participant's own privacy budget first.
type Participant struct {
	mu       sync.Mutex
	id       string
	kind     model.ModelKind
	injector *privacy.NoiseInjector
	samples  []model.Sample
	trained  bool
	history  []model.TrainingRecord
	model    localModel
	logger   hclog.Logger
}

// New creates an untrained participant with an empty dataset. The privacy
// budget epsilon must be positive (smaller = more private = noisier
// exported parameters).
func New(id string, kind model.ModelKind, privacyBudget float64, logger hclog.Logger) (*Participant, error) {
	injector, err := privacy.NewNoiseInjector(privacyBudget, common.DEFAULT_DELTA, nil)
	if err != nil {
		return nil, fmt.Errorf("participant %s: %w", id, err)
	}

	return &Participant{
		id:       id,
		kind:     kind,
		injector: injector,
		model:    newLocalModel(kind),
		logger:   logger.Named(id),
	}, nil
}

func (p *Participant) ID() string {
	return p.id
}

func (p *Participant) Kind() model.ModelKind {
	return p.kind
}

func (p *Participant) IsTrained() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trained
}

func (p *Participant) SampleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.samples)
}

func (p *Participant) TrainingHistory() []model.TrainingRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	history := make([]model.TrainingRecord, len(p.history))
	copy(history, p.history)
	return history
}

// AddData appends a batch of samples to local storage.
func (p *Participant) AddData(batch []model.Sample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, batch...)
	p.logger.Debug(fmt.Sprintf("Added %d training samples, total %d", len(batch), len(p.samples)))
}

// LocalTrain fits the local model on the current dataset, optionally seeded
// from globalParams, and returns the resulting update. Supervised kinds
// synthesize labels via an internal outlier detector when the dataset
// carries none; the unsupervised kind ignores labels entirely.
func (p *Participant) LocalTrain(globalParams map[string][]float64, epochs int) (*model.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.samples) < common.MIN_TRAINING_SAMPLES {
		p.logger.Warn(fmt.Sprintf("Insufficient data for training: %d samples", len(p.samples)))
		return nil, ErrInsufficientData
	}

	features := make([][]float64, len(p.samples))
	for i, sample := range p.samples {
		features[i] = sample.Features
	}

	labels := p.resolveLabels(features)
	p.model.Fit(features, labels, globalParams)
	p.trained = true

	accuracy := trainingAccuracy(p.model.Predict(features), labels)

	p.history = append(p.history, model.TrainingRecord{
		Timestamp: time.Now(),
		Samples:   len(features),
		Features:  len(features[0]),
		Epochs:    epochs,
	})

	params := map[string][]float64{}
	for key, vector := range p.model.Params() {
		params[key] = p.injector.AddLaplaceNoise(vector, common.AGGREGATION_SENSITIVITY)
	}

	p.logger.Info(fmt.Sprintf("Local training completed: %d samples, accuracy %.4f", len(features), accuracy))

	return &model.Update{
		ParticipantId: p.id,
		Kind:          p.kind,
		SampleCount:   len(p.samples),
		Accuracy:      accuracy,
		Params:        params,
	}, nil
}

// Predict returns one binary label per input vector: 1 for anomalous, 0 for
// normal.
func (p *Participant) Predict(vectors [][]float64) ([]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.trained {
		return nil, ErrNotTrained
	}

	return p.model.Predict(vectors), nil
}

// resolveLabels returns the labels training will fit against. Unlabeled
// samples get labels synthesized by a density-based outlier detector;
// labels the caller provided are always kept. The unsupervised kind
// synthesizes everything so callers never need to label for it.
func (p *Participant) resolveLabels(features [][]float64) []int {
	hasUnlabeled := false
	labels := make([]int, len(p.samples))
	for i, sample := range p.samples {
		labels[i] = sample.Label
		if sample.Label < 0 {
			hasUnlabeled = true
		}
	}

	if !hasUnlabeled && !p.kind.Unsupervised() {
		return labels
	}

	detector := newDensityModel(densityContamination)
	detector.Fit(features, nil, nil)
	synthesized := detector.Predict(features)

	if p.kind.Unsupervised() {
		return synthesized
	}

	for i := range labels {
		if labels[i] < 0 {
			labels[i] = synthesized[i]
		}
	}
	return labels
}

func trainingAccuracy(predictions []int, labels []int) float64 {
	if len(predictions) == 0 {
		return 0
	}
	correct := 0
	for i, prediction := range predictions {
		if prediction == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predictions))
}
