package server

import (
	"encoding/json"
	"io"

	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

func toJSON(i interface{}, w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(i)
}

func fromJSON(i interface{}, r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(i)
}

type StartFederationRequest struct {
	Participants          []ParticipantSpec `json:"participants"`
	Strategy              string            `json:"strategy"`
	Epochs                int               `json:"epochs"`
	RoundIntervalSeconds  int               `json:"roundIntervalSeconds"`
	SamplesPerParticipant int               `json:"samplesPerParticipant"`
	AnomalyRatio          float64           `json:"anomalyRatio"`
	Seed                  uint64            `json:"seed"`
}

type ParticipantSpec struct {
	Id            string          `json:"id"`
	ModelKind     model.ModelKind `json:"modelKind"`
	PrivacyBudget float64         `json:"privacyBudget"`
}

type AddDataRequest struct {
	Samples []SampleData `json:"samples"`
}

type SampleData struct {
	Features []float64 `json:"features"`
	Label    *int      `json:"label"`
}

type SetStrategyRequest struct {
	Strategy string `json:"strategy"`
}

type EvaluateRequest struct {
	Samples []SampleData `json:"samples"`
}
