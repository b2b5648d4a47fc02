package model

import "time"

// Sample is a single feature vector held in a participant's local dataset.
// Label is -1 when the sample is unlabeled; supervised model kinds synthesize
// labels internally in that case.
type Sample struct {
	Features []float64
	Label    int
}

// Update is the value a participant returns from one local training pass.
// It is immutable once returned; the coordinator only reads it.
type Update struct {
	ParticipantId string
	Kind          ModelKind
	SampleCount   int
	Accuracy      float64
	Params        map[string][]float64
}

// Round records one completed federated round.
type Round struct {
	Number         int32
	Timestamp      time.Time
	ParticipantIds []string
	TotalSamples   int
	Result         *Update
}

// TrainingRecord is one entry in a participant's training history.
type TrainingRecord struct {
	Timestamp time.Time
	Samples   int
	Features  int
	Epochs    int
}

// Parameter group keys exposed by local models.
const FeatureImportances_ParamKey = "feature_importances"
const Coefficients_ParamKey = "coefficients"
