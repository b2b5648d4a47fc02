package ensemble

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/coordinator"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// stubVoter casts a fixed prediction vector regardless of input.
type stubVoter struct {
	id          string
	trained     bool
	predictions []int
	err         error
}

func (s *stubVoter) ID() string            { return s.id }
func (s *stubVoter) Kind() model.ModelKind { return model.NeuralNetwork }
func (s *stubVoter) IsTrained() bool       { return s.trained }

func (s *stubVoter) LocalTrain(globalParams map[string][]float64, epochs int) (*model.Update, error) {
	return nil, errors.New("not used")
}

func (s *stubVoter) Predict(vectors [][]float64) ([]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.predictions, nil
}

type stubSource struct {
	voters []coordinator.Trainer
}

func (s *stubSource) Participants() []coordinator.Trainer {
	return s.voters
}

func newTestEvaluator(voters ...coordinator.Trainer) *Evaluator {
	return NewEvaluator(&stubSource{voters: voters}, hclog.NewNullLogger())
}

func votersFor(perVoterLabels ...[]int) []coordinator.Trainer {
	voters := make([]coordinator.Trainer, len(perVoterLabels))
	for i, labels := range perVoterLabels {
		voters[i] = &stubVoter{id: "voter", trained: true, predictions: labels}
	}
	return voters
}

func TestPredictEnsembleTieResolvesToNormal(t *testing.T) {
	// two of four voters flag the sample: not a strict majority
	evaluator := newTestEvaluator(votersFor([]int{1}, []int{1}, []int{0}, []int{0})...)

	combined := evaluator.PredictEnsemble([][]float64{{0.5}})

	assert.Equal(t, []int{0}, combined)
}

func TestPredictEnsembleStrictMajorityFlags(t *testing.T) {
	evaluator := newTestEvaluator(votersFor([]int{1}, []int{1}, []int{1}, []int{0})...)

	combined := evaluator.PredictEnsemble([][]float64{{0.5}})

	assert.Equal(t, []int{1}, combined)
}

func TestPredictEnsembleNoTrainedParticipants(t *testing.T) {
	evaluator := newTestEvaluator(&stubVoter{id: "p1", trained: false})

	assert.Empty(t, evaluator.PredictEnsemble([][]float64{{0.5}}))
}

func TestPredictEnsembleSkipsFailingVoters(t *testing.T) {
	evaluator := newTestEvaluator(
		&stubVoter{id: "healthy", trained: true, predictions: []int{1, 0}},
		&stubVoter{id: "broken", trained: true, err: errors.New("model gone")},
	)

	combined := evaluator.PredictEnsemble([][]float64{{0.5}, {0.5}})

	assert.Equal(t, []int{1, 0}, combined)
}

func TestPredictEnsembleSkipsLengthMismatch(t *testing.T) {
	evaluator := newTestEvaluator(
		&stubVoter{id: "healthy", trained: true, predictions: []int{1, 1}},
		&stubVoter{id: "short", trained: true, predictions: []int{0}},
	)

	combined := evaluator.PredictEnsemble([][]float64{{0.5}, {0.5}})

	assert.Equal(t, []int{1, 1}, combined)
}

func TestEvaluateReturnsNilWithoutPredictions(t *testing.T) {
	evaluator := newTestEvaluator(&stubVoter{id: "p1", trained: false})

	assert.Nil(t, evaluator.Evaluate([][]float64{{0.5}}, []int{1}))
}

func TestEvaluateReturnsNilOnLabelMismatch(t *testing.T) {
	evaluator := newTestEvaluator(votersFor([]int{1, 0})...)

	assert.Nil(t, evaluator.Evaluate([][]float64{{0.5}, {0.5}}, []int{1}))
}

func TestEvaluateWeightedMetrics(t *testing.T) {
	// single voter, predictions [0,0,1,0] against labels [0,0,1,1]:
	//   class 0: precision 2/3, recall 1,   f1 0.8
	//   class 1: precision 1,   recall 1/2, f1 2/3
	// both classes carry weight 1/2
	evaluator := newTestEvaluator(votersFor([]int{0, 0, 1, 0})...)

	vectors := [][]float64{{0.1}, {0.2}, {0.9}, {0.8}}
	result := evaluator.Evaluate(vectors, []int{0, 0, 1, 1})
	require.NotNil(t, result)

	assert.InDelta(t, 0.75, result.Accuracy, 1e-9)
	assert.InDelta(t, (2.0/3.0+1.0)/2.0, result.Precision, 1e-9)
	assert.InDelta(t, 0.75, result.Recall, 1e-9)
	assert.InDelta(t, (0.8+2.0/3.0)/2.0, result.F1Score, 1e-9)
}

func TestEvaluatePerfectEnsemble(t *testing.T) {
	evaluator := newTestEvaluator(votersFor([]int{0, 1}, []int{0, 1}, []int{0, 1})...)

	result := evaluator.Evaluate([][]float64{{0.1}, {0.9}}, []int{0, 1})
	require.NotNil(t, result)

	assert.InDelta(t, 1.0, result.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, result.Precision, 1e-9)
	assert.InDelta(t, 1.0, result.Recall, 1e-9)
	assert.InDelta(t, 1.0, result.F1Score, 1e-9)
}
