package ensemble

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/Abhishek-yadav04/AgisFL/internal/flcore/coordinator"
	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// ParticipantSource supplies the participants whose votes form the
// ensemble. The coordinator satisfies it.
type ParticipantSource interface {
	Participants() []coordinator.Trainer
}

// Evaluator produces combined predictions by strict majority vote over all
// trained participants, and quality metrics against labeled data.
type Evaluator struct {
	source ParticipantSource
	logger hclog.Logger
}

func NewEvaluator(source ParticipantSource, logger hclog.Logger) *Evaluator {
	return &Evaluator{
		source: source,
		logger: logger,
	}
}

// PredictEnsemble returns one label per input vector: 1 iff strictly more
// than half of the trained participants vote 1 (ties resolve to 0). The
// result is empty when no participant is trained.
func (e *Evaluator) PredictEnsemble(vectors [][]float64) []int {
	votes := [][]int{}
	for _, p := range e.source.Participants() {
		if !p.IsTrained() {
			continue
		}
		predictions, err := p.Predict(vectors)
		if err != nil {
			e.logger.Warn(fmt.Sprintf("Participant %s failed prediction: %s", p.ID(), err.Error()))
			continue
		}
		if len(predictions) == len(vectors) {
			votes = append(votes, predictions)
		}
	}

	if len(votes) == 0 {
		return []int{}
	}

	combined := make([]int, len(vectors))
	for i := range vectors {
		positive := 0
		for _, voter := range votes {
			positive += voter[i]
		}
		if float64(positive) > float64(len(votes))/2 {
			combined[i] = 1
		}
	}

	return combined
}

// Evaluate runs the ensemble over vectors and scores it against trueLabels
// with accuracy and support-weighted precision, recall and F1. A nil result
// means no predictions could be produced.
func (e *Evaluator) Evaluate(vectors [][]float64, trueLabels []int) *model.EvaluationResult {
	predictions := e.PredictEnsemble(vectors)
	if len(predictions) == 0 || len(predictions) != len(trueLabels) {
		return nil
	}

	correct := 0
	for i, prediction := range predictions {
		if prediction == trueLabels[i] {
			correct++
		}
	}

	precision, recall, f1 := weightedScores(predictions, trueLabels)

	return &model.EvaluationResult{
		Accuracy:  float64(correct) / float64(len(predictions)),
		Precision: precision,
		Recall:    recall,
		F1Score:   f1,
		Timestamp: time.Now(),
	}
}

// weightedScores computes per-class precision/recall/F1 for the binary
// classes and weights each by its share of true labels. A class with an
// undefined score (zero denominator) contributes zero, matching the usual
// weighted-average convention.
func weightedScores(predictions []int, trueLabels []int) (float64, float64, float64) {
	total := float64(len(trueLabels))
	var precision, recall, f1 float64

	for _, class := range []int{0, 1} {
		var truePos, falsePos, falseNeg, support float64
		for i, label := range trueLabels {
			if label == class {
				support++
				if predictions[i] == class {
					truePos++
				} else {
					falseNeg++
				}
			} else if predictions[i] == class {
				falsePos++
			}
		}

		var classPrecision, classRecall, classF1 float64
		if truePos+falsePos > 0 {
			classPrecision = truePos / (truePos + falsePos)
		}
		if truePos+falseNeg > 0 {
			classRecall = truePos / (truePos + falseNeg)
		}
		if classPrecision+classRecall > 0 {
			classF1 = 2 * classPrecision * classRecall / (classPrecision + classRecall)
		}

		weight := support / total
		precision += weight * classPrecision
		recall += weight * classRecall
		f1 += weight * classF1
	}

	return precision, recall, f1
}
