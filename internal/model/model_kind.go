package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ModelKind int

const (
	RandomForest ModelKind = iota
	NeuralNetwork
	Svm
	IsolationForest
	GradientBoosting
)

func (k ModelKind) String() string {
	switch k {
	case RandomForest:
		return "random_forest"
	case NeuralNetwork:
		return "neural_network"
	case Svm:
		return "svm"
	case IsolationForest:
		return "isolation_forest"
	case GradientBoosting:
		return "gradient_boosting"
	default:
		return "unknown"
	}
}

// Unsupervised reports whether the kind trains without labels.
func (k ModelKind) Unsupervised() bool {
	return k == IsolationForest
}

// Marshal as a JSON string: "random_forest"/"svm"/...
func (k ModelKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Accept either JSON strings ("random_forest") or numbers (0-4)
func (k *ModelKind) UnmarshalJSON(b []byte) error {
	// string path
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		s := strings.Trim(string(b), `"`)
		switch strings.ToLower(s) {
		case "random_forest":
			*k = RandomForest
		case "neural_network":
			*k = NeuralNetwork
		case "svm":
			*k = Svm
		case "isolation_forest":
			*k = IsolationForest
		case "gradient_boosting":
			*k = GradientBoosting
		default:
			return fmt.Errorf("invalid ModelKind: %q", s)
		}
		return nil
	}
	// numeric path
	var i int
	if err := json.Unmarshal(b, &i); err != nil {
		return err
	}
	switch v := ModelKind(i); v {
	case RandomForest, NeuralNetwork, Svm, IsolationForest, GradientBoosting:
		*k = v
		return nil
	default:
		return fmt.Errorf("invalid ModelKind numeric value: %d", i)
	}
}
