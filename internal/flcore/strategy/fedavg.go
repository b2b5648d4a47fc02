package strategy

import "github.com/Abhishek-yadav04/AgisFL/internal/model"

// FedAvg implements sample-count-weighted federated averaging. The
// aggregated accuracy is the unweighted mean of the reported accuracies.
type FedAvg struct{}

func NewFedAvg() *FedAvg {
	return &FedAvg{}
}

func (s *FedAvg) Name() string {
	return FedAvg_StrategyName
}

func (s *FedAvg) Aggregate(updates []*model.Update) *model.Update {
	if len(updates) == 0 {
		return emptyUpdate()
	}

	totalSamples := totalSampleCount(updates)
	params := map[string][]float64{}

	for _, key := range commonKeys(updates) {
		dim := len(updates[0].Params[key])
		if !sameDimension(updates, key, dim) {
			continue
		}

		aggregated := make([]float64, dim)
		for _, update := range updates {
			weight := float64(update.SampleCount) / float64(totalSamples)
			for i, v := range update.Params[key] {
				aggregated[i] += v * weight
			}
		}
		params[key] = aggregated
	}

	return &model.Update{
		Kind:        updates[0].Kind,
		SampleCount: totalSamples,
		Accuracy:    meanAccuracy(updates),
		Params:      params,
	}
}
