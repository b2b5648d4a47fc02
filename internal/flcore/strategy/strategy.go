package strategy

import (
	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// Strategy combines a round's participant updates into one global update.
// Aggregate must treat an empty input as a no-op, never an error, and must
// never mutate its inputs.
type Strategy interface {
	Name() string
	Aggregate(updates []*model.Update) *model.Update
}

const FedAvg_StrategyName = "FedAvg"
const FedProx_StrategyName = "FedProx"
const TrimmedMean_StrategyName = "TrimmedMean"
const SecureAvg_StrategyName = "SecureAvg"

func emptyUpdate() *model.Update {
	return &model.Update{Params: map[string][]float64{}}
}

// commonKeys returns the parameter keys present in every update, in no
// particular order. Keys missing from any update are skipped entirely by all
// strategies rather than zero-filled.
func commonKeys(updates []*model.Update) []string {
	keys := []string{}
	for key := range updates[0].Params {
		presentInAll := true
		for _, update := range updates[1:] {
			if _, ok := update.Params[key]; !ok {
				presentInAll = false
				break
			}
		}
		if presentInAll {
			keys = append(keys, key)
		}
	}
	return keys
}

// sameDimension reports whether every update's vector for key has length dim.
func sameDimension(updates []*model.Update, key string, dim int) bool {
	for _, update := range updates {
		if len(update.Params[key]) != dim {
			return false
		}
	}
	return true
}

func totalSampleCount(updates []*model.Update) int {
	total := 0
	for _, update := range updates {
		total += update.SampleCount
	}
	return total
}

func meanAccuracy(updates []*model.Update) float64 {
	accuracies := make([]float64, len(updates))
	for i, update := range updates {
		accuracies[i] = update.Accuracy
	}
	return common.CalculateAverageFloat64(accuracies)
}
