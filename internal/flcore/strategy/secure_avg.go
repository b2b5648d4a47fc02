package strategy

import (
	"golang.org/x/exp/rand"

	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/privacy"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// SecureAvg performs sample-weighted averaging over additively masked
// contributions and then perturbs the aggregate with Laplace noise.
//
// Each pair of participants shares a random offset that one adds and the
// other subtracts, so the masks cancel in the sum while individual masked
// contributions are uninformative on their own. This is additive masking
// only: it is NOT verifiable secret sharing, offers no protection against a
// dishonest aggregator, and must not be treated as a cryptographically
// sound secure-aggregation protocol.
type SecureAvg struct {
	injector *privacy.NoiseInjector
	rng      *rand.Rand
}

func NewSecureAvg(injector *privacy.NoiseInjector, src rand.Source) *SecureAvg {
	return &SecureAvg{
		injector: injector,
		rng:      rand.New(src),
	}
}

func (s *SecureAvg) Name() string {
	return SecureAvg_StrategyName
}

func (s *SecureAvg) Aggregate(updates []*model.Update) *model.Update {
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

		masked := s.maskContributions(updates, key, dim, totalSamples)

		aggregated := make([]float64, dim)
		for _, contribution := range masked {
			for i, v := range contribution {
				aggregated[i] += v
			}
		}

		params[key] = s.injector.AddLaplaceNoise(aggregated, common.AGGREGATION_SENSITIVITY)
	}

	return &model.Update{
		Kind:        updates[0].Kind,
		SampleCount: totalSamples,
		Accuracy:    meanAccuracy(updates),
		Params:      params,
	}
}

// maskContributions returns each update's weighted vector plus its pairwise
// masks. For every pair (a, b) with a < b, a random offset is added to a's
// contribution and subtracted from b's, cancelling exactly in the sum.
func (s *SecureAvg) maskContributions(updates []*model.Update, key string, dim int, totalSamples int) [][]float64 {
	masked := make([][]float64, len(updates))
	for idx, update := range updates {
		weight := float64(update.SampleCount) / float64(totalSamples)
		contribution := make([]float64, dim)
		for i, v := range update.Params[key] {
			contribution[i] = v * weight
		}
		masked[idx] = contribution
	}

	for a := 0; a < len(updates); a++ {
		for b := a + 1; b < len(updates); b++ {
			for i := 0; i < dim; i++ {
				offset := s.rng.NormFloat64()
				masked[a][i] += offset
				masked[b][i] -= offset
			}
		}
	}

	return masked
}
