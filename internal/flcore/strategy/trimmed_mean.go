package strategy

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// TrimmedMean aggregates each parameter key with a trimmed unweighted mean:
// updates are sorted by vector norm and floor(trimRatio*N) are dropped from
// each end before averaging. This is the only strategy here that survives
// Byzantine participants; FedAvg and FedProx do not.
type TrimmedMean struct {
	trimRatio float64
}

func NewTrimmedMean(trimRatio float64) (*TrimmedMean, error) {
	if trimRatio < 0 || trimRatio >= 0.5 {
		return nil, fmt.Errorf("invalid trim ratio: must be in [0, 0.5), got %g", trimRatio)
	}

	return &TrimmedMean{trimRatio: trimRatio}, nil
}

func (s *TrimmedMean) Name() string {
	return TrimmedMean_StrategyName
}

func (s *TrimmedMean) Aggregate(updates []*model.Update) *model.Update {
	if len(updates) == 0 {
		return emptyUpdate()
	}

	nTrim := int(s.trimRatio * float64(len(updates)))
	params := map[string][]float64{}

	for _, key := range commonKeys(updates) {
		dim := len(updates[0].Params[key])
		if !sameDimension(updates, key, dim) {
			continue
		}

		indices := sortByNorm(updates, key)
		kept := indices[nTrim : len(indices)-nTrim]
		if len(kept) == 0 {
			continue
		}

		aggregated := make([]float64, dim)
		for _, idx := range kept {
			for i, v := range updates[idx].Params[key] {
				aggregated[i] += v
			}
		}
		for i := range aggregated {
			aggregated[i] /= float64(len(kept))
		}
		params[key] = aggregated
	}

	return &model.Update{
		Kind:        updates[0].Kind,
		SampleCount: totalSampleCount(updates),
		Accuracy:    meanAccuracy(updates),
		Params:      params,
	}
}

func sortByNorm(updates []*model.Update, key string) []int {
	indices := make([]int, len(updates))
	norms := make([]float64, len(updates))
	for i, update := range updates {
		indices[i] = i
		norms[i] = floats.Norm(update.Params[key], 2)
	}

	sort.SliceStable(indices, func(a, b int) bool {
		return norms[indices[a]] < norms[indices[b]]
	})

	return indices
}
