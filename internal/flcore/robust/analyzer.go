package robust

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Abhishek-yadav04/AgisFL/internal/common"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// Analyzer detects statistical outliers among a set of participant updates.
// It is advisory: it reports suspect indices but never excludes anything
// itself. Integrators wanting hard exclusion call FilterUpdates before
// handing the set to an aggregation strategy.
type Analyzer struct {
	sigmaThreshold float64
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{sigmaThreshold: common.OUTLIER_SIGMA_THRESHOLD}
}

// DetectOutliers flags the index of any update whose parameter-vector norm
// exceeds mean + sigmaThreshold*stddev for at least one parameter key common
// to all updates. Fewer than three updates always yields an empty result;
// flagging is statistically meaningless below that.
func (a *Analyzer) DetectOutliers(updates []*model.Update) []int {
	if len(updates) < common.MIN_UPDATES_FOR_ANALYSIS {
		return []int{}
	}

	flagged := map[int]bool{}
	for _, key := range commonParamKeys(updates) {
		norms := make([]float64, len(updates))
		for i, update := range updates {
			norms[i] = floats.Norm(update.Params[key], 2)
		}

		mean, stddev := popMeanStdDev(norms)
		threshold := mean + a.sigmaThreshold*stddev

		for i, norm := range norms {
			if norm > threshold {
				flagged[i] = true
			}
		}
	}

	indices := make([]int, 0, len(flagged))
	for i := range updates {
		if flagged[i] {
			indices = append(indices, i)
		}
	}

	return indices
}

// FilterUpdates returns updates with all flagged indices dropped.
func (a *Analyzer) FilterUpdates(updates []*model.Update) []*model.Update {
	flagged := a.DetectOutliers(updates)
	if len(flagged) == 0 {
		return updates
	}

	flaggedSet := map[int]bool{}
	for _, i := range flagged {
		flaggedSet[i] = true
	}

	kept := make([]*model.Update, 0, len(updates)-len(flagged))
	for i, update := range updates {
		if !flaggedSet[i] {
			kept = append(kept, update)
		}
	}

	return kept
}

// HELPERS

func commonParamKeys(updates []*model.Update) []string {
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

func popMeanStdDev(values []float64) (float64, float64) {
	mean, variance := stat.MeanVariance(values, nil)
	if len(values) < 2 {
		return mean, 0
	}
	// population variance, not the sample estimate
	popVariance := variance * float64(len(values)-1) / float64(len(values))
	return mean, math.Sqrt(popVariance)
}
