package participant

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/datagen"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

func newTestParticipant(t *testing.T, kind model.ModelKind) *Participant {
	t.Helper()
	p, err := New("node-1", kind, common.DEFAULT_EPSILON, hclog.NewNullLogger())
	require.NoError(t, err)
	return p
}

func TestNewRejectsInvalidPrivacyBudget(t *testing.T) {
	_, err := New("node-1", model.NeuralNetwork, 0, hclog.NewNullLogger())
	assert.Error(t, err)

	_, err = New("node-1", model.NeuralNetwork, -1.0, hclog.NewNullLogger())
	assert.Error(t, err)
}

func TestLocalTrainRequiresMinimumSamples(t *testing.T) {
	p := newTestParticipant(t, model.NeuralNetwork)
	p.AddData(datagen.New(1).Generate(common.MIN_TRAINING_SAMPLES-1, 0.3))

	update, err := p.LocalTrain(nil, common.DEFAULT_EPOCHS)

	assert.Nil(t, update)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.False(t, p.IsTrained())
}

func TestPredictBeforeTraining(t *testing.T) {
	p := newTestParticipant(t, model.NeuralNetwork)

	_, err := p.Predict([][]float64{make([]float64, datagen.NumFeatures)})

	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestLocalTrainProducesUpdate(t *testing.T) {
	p := newTestParticipant(t, model.NeuralNetwork)
	p.AddData(datagen.New(2).Generate(100, 0.3))

	update, err := p.LocalTrain(nil, common.DEFAULT_EPOCHS)
	require.NoError(t, err)

	assert.Equal(t, "node-1", update.ParticipantId)
	assert.Equal(t, model.NeuralNetwork, update.Kind)
	assert.Equal(t, 100, update.SampleCount)
	assert.GreaterOrEqual(t, update.Accuracy, 0.0)
	assert.LessOrEqual(t, update.Accuracy, 1.0)
	assert.Contains(t, update.Params, model.Coefficients_ParamKey)
	assert.True(t, p.IsTrained())
	assert.Len(t, p.TrainingHistory(), 1)
}

func TestLocalTrainSynthesizesLabelsForUnlabeledData(t *testing.T) {
	p := newTestParticipant(t, model.NeuralNetwork)
	p.AddData(datagen.New(3).GenerateUnlabeled(100, 0.3))

	update, err := p.LocalTrain(nil, common.DEFAULT_EPOCHS)
	require.NoError(t, err)

	assert.True(t, p.IsTrained())
	assert.NotEmpty(t, update.Params)
}

func TestResolveLabelsKeepsProvidedLabels(t *testing.T) {
	p := newTestParticipant(t, model.NeuralNetwork)

	samples := datagen.New(9).Generate(40, 0.5)
	for i := 0; i < 10; i++ {
		samples[i].Label = -1
	}
	p.AddData(samples)

	features := make([][]float64, len(samples))
	for i, sample := range samples {
		features[i] = sample.Features
	}

	labels := p.resolveLabels(features)
	require.Len(t, labels, 40)

	// only the unlabeled entries get synthesized; ground truth survives
	for i := 10; i < 40; i++ {
		assert.Equal(t, samples[i].Label, labels[i], "sample %d", i)
	}
	for i := 0; i < 10; i++ {
		assert.Contains(t, []int{0, 1}, labels[i])
	}
}

func TestResolveLabelsUnsupervisedIgnoresProvidedLabels(t *testing.T) {
	p := newTestParticipant(t, model.IsolationForest)

	// every sample carries a label, but the unsupervised kind synthesizes
	// its own regardless
	samples := datagen.New(10).Generate(100, 0.0)
	for i := range samples {
		samples[i].Label = 1
	}
	p.AddData(samples)

	features := make([][]float64, len(samples))
	for i, sample := range samples {
		features[i] = sample.Features
	}

	labels := p.resolveLabels(features)
	require.Len(t, labels, 100)

	normals := 0
	for _, label := range labels {
		if label == 0 {
			normals++
		}
	}
	assert.Greater(t, normals, 0)
}

func TestLocalTrainIsolationForestExportsNoParams(t *testing.T) {
	p := newTestParticipant(t, model.IsolationForest)
	p.AddData(datagen.New(4).Generate(100, 0.3))

	update, err := p.LocalTrain(nil, common.DEFAULT_EPOCHS)
	require.NoError(t, err)

	assert.Empty(t, update.Params)
	assert.True(t, p.IsTrained())
}

func TestLocalTrainRandomForestExportsImportances(t *testing.T) {
	p := newTestParticipant(t, model.RandomForest)
	p.AddData(datagen.New(5).Generate(200, 0.3))

	update, err := p.LocalTrain(nil, common.DEFAULT_EPOCHS)
	require.NoError(t, err)

	require.Contains(t, update.Params, model.FeatureImportances_ParamKey)
	assert.Len(t, update.Params[model.FeatureImportances_ParamKey], datagen.NumFeatures)
}

func TestLocalTrainAccumulatesHistory(t *testing.T) {
	p := newTestParticipant(t, model.Svm)
	p.AddData(datagen.New(6).Generate(50, 0.3))

	for i := 0; i < 3; i++ {
		_, err := p.LocalTrain(nil, common.DEFAULT_EPOCHS)
		require.NoError(t, err)
	}

	history := p.TrainingHistory()
	require.Len(t, history, 3)
	for _, record := range history {
		assert.Equal(t, 50, record.Samples)
		assert.Equal(t, datagen.NumFeatures, record.Features)
	}
}

func TestAddDataAccumulates(t *testing.T) {
	p := newTestParticipant(t, model.NeuralNetwork)
	generator := datagen.New(7)

	p.AddData(generator.Generate(30, 0.3))
	p.AddData(generator.Generate(20, 0.3))

	assert.Equal(t, 50, p.SampleCount())
}

func TestPredictAfterTraining(t *testing.T) {
	p := newTestParticipant(t, model.NeuralNetwork)
	generator := datagen.New(8)
	p.AddData(generator.Generate(200, 0.3))

	_, err := p.LocalTrain(nil, common.DEFAULT_EPOCHS)
	require.NoError(t, err)

	test := generator.Generate(50, 0.3)
	vectors := make([][]float64, len(test))
	for i, sample := range test {
		vectors[i] = sample.Features
	}

	predictions, err := p.Predict(vectors)
	require.NoError(t, err)
	require.Len(t, predictions, 50)
	for _, label := range predictions {
		assert.Contains(t, []int{0, 1}, label)
	}
}
