package participant

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

const densityContamination = 0.1

// localModel is the detection model a participant trains on its private
// data. Implementations are small self-contained detectors; the federation
// only ever sees the named parameter vectors they choose to expose.
type localModel interface {
	Fit(features [][]float64, labels []int, globalParams map[string][]float64)
	Predict(features [][]float64) []int
	Params() map[string][]float64
}

func newLocalModel(kind model.ModelKind) localModel {
	switch kind {
	case model.IsolationForest:
		return newDensityModel(densityContamination)
	case model.NeuralNetwork, model.Svm:
		return &centroidClassifier{}
	default:
		return &importanceForest{}
	}
}

// centroidClassifier separates classes with a linear decision boundary
// derived from per-class centroids. It exposes the boundary normal as
// "coefficients", which lets the global model seed the next round.
type centroidClassifier struct {
	coefficients []float64
	midpoint     []float64
	soleClass    int // -1 when both classes were seen in training
}

func (c *centroidClassifier) Fit(features [][]float64, labels []int, globalParams map[string][]float64) {
	dim := len(features[0])
	normalCentroid, normalCount := classCentroid(features, labels, 0, dim)
	attackCentroid, attackCount := classCentroid(features, labels, 1, dim)

	if normalCount == 0 || attackCount == 0 {
		c.soleClass = 0
		if attackCount > 0 {
			c.soleClass = 1
		}
		c.coefficients = make([]float64, dim)
		c.midpoint = make([]float64, dim)
		return
	}

	c.soleClass = -1
	c.coefficients = make([]float64, dim)
	c.midpoint = make([]float64, dim)
	for i := 0; i < dim; i++ {
		c.coefficients[i] = attackCentroid[i] - normalCentroid[i]
		c.midpoint[i] = (attackCentroid[i] + normalCentroid[i]) / 2
	}

	// warm start: blend the global boundary into the local one
	if global, ok := globalParams[model.Coefficients_ParamKey]; ok && len(global) == dim {
		for i := range c.coefficients {
			c.coefficients[i] = (c.coefficients[i] + global[i]) / 2
		}
	}
}

func (c *centroidClassifier) Predict(features [][]float64) []int {
	predictions := make([]int, len(features))
	if c.soleClass >= 0 {
		for i := range predictions {
			predictions[i] = c.soleClass
		}
		return predictions
	}

	for i, vector := range features {
		decision := 0.0
		for j, v := range vector {
			decision += (v - c.midpoint[j]) * c.coefficients[j]
		}
		if decision > 0 {
			predictions[i] = 1
		}
	}
	return predictions
}

func (c *centroidClassifier) Params() map[string][]float64 {
	if c.coefficients == nil {
		return map[string][]float64{}
	}
	return map[string][]float64{
		model.Coefficients_ParamKey: c.coefficients,
	}
}

// importanceForest scores every feature by how well it separates the two
// classes and votes with those scores at prediction time. It exposes the
// normalized scores as "feature_importances".
type importanceForest struct {
	importances []float64
	normalMean  []float64
	attackMean  []float64
	soleClass   int
}

func (f *importanceForest) Fit(features [][]float64, labels []int, globalParams map[string][]float64) {
	dim := len(features[0])
	normalMean, normalCount := classCentroid(features, labels, 0, dim)
	attackMean, attackCount := classCentroid(features, labels, 1, dim)

	if normalCount == 0 || attackCount == 0 {
		f.soleClass = 0
		if attackCount > 0 {
			f.soleClass = 1
		}
		f.importances = make([]float64, dim)
		f.normalMean = normalMean
		f.attackMean = attackMean
		return
	}

	f.soleClass = -1
	f.normalMean = normalMean
	f.attackMean = attackMean

	f.importances = make([]float64, dim)
	for i := 0; i < dim; i++ {
		spread := featureStdDev(features, i) + 1e-9
		f.importances[i] = math.Abs(attackMean[i]-normalMean[i]) / spread
	}

	if global, ok := globalParams[model.FeatureImportances_ParamKey]; ok && len(global) == dim {
		for i := range f.importances {
			f.importances[i] = (f.importances[i] + global[i]) / 2
		}
	}

	normalize(f.importances)
}

func (f *importanceForest) Predict(features [][]float64) []int {
	predictions := make([]int, len(features))
	if f.soleClass >= 0 {
		for i := range predictions {
			predictions[i] = f.soleClass
		}
		return predictions
	}

	for i, vector := range features {
		attackVote := 0.0
		for j, v := range vector {
			if math.Abs(v-f.attackMean[j]) < math.Abs(v-f.normalMean[j]) {
				attackVote += f.importances[j]
			}
		}
		if attackVote > 0.5 {
			predictions[i] = 1
		}
	}
	return predictions
}

func (f *importanceForest) Params() map[string][]float64 {
	if f.importances == nil {
		return map[string][]float64{}
	}
	return map[string][]float64{
		model.FeatureImportances_ParamKey: f.importances,
	}
}

// densityModel is the unsupervised kind: it flags samples far from the bulk
// of the training data. It exposes no parameter vectors; opaque models
// contribute samples and predictions but nothing to aggregation.
type densityModel struct {
	contamination float64
	means         []float64
	stddevs       []float64
	threshold     float64
}

func newDensityModel(contamination float64) *densityModel {
	return &densityModel{contamination: contamination}
}

func (d *densityModel) Fit(features [][]float64, labels []int, globalParams map[string][]float64) {
	dim := len(features[0])
	d.means = make([]float64, dim)
	d.stddevs = make([]float64, dim)
	for i := 0; i < dim; i++ {
		column := featureColumn(features, i)
		d.means[i] = stat.Mean(column, nil)
		d.stddevs[i] = stat.StdDev(column, nil) + 1e-9
	}

	scores := make([]float64, len(features))
	for i, vector := range features {
		scores[i] = d.score(vector)
	}
	sort.Float64s(scores)
	d.threshold = stat.Quantile(1-d.contamination, stat.Empirical, scores, nil)
}

func (d *densityModel) Predict(features [][]float64) []int {
	predictions := make([]int, len(features))
	for i, vector := range features {
		if d.score(vector) > d.threshold {
			predictions[i] = 1
		}
	}
	return predictions
}

func (d *densityModel) Params() map[string][]float64 {
	return map[string][]float64{}
}

func (d *densityModel) score(vector []float64) float64 {
	total := 0.0
	for i, v := range vector {
		total += math.Abs(v-d.means[i]) / d.stddevs[i]
	}
	return total / float64(len(vector))
}

// HELPERS

func classCentroid(features [][]float64, labels []int, class int, dim int) ([]float64, int) {
	centroid := make([]float64, dim)
	count := 0
	for i, vector := range features {
		if labels[i] != class {
			continue
		}
		for j, v := range vector {
			centroid[j] += v
		}
		count++
	}
	if count > 0 {
		for j := range centroid {
			centroid[j] /= float64(count)
		}
	}
	return centroid, count
}

func featureColumn(features [][]float64, index int) []float64 {
	column := make([]float64, len(features))
	for i, vector := range features {
		column[i] = vector[index]
	}
	return column
}

func featureStdDev(features [][]float64, index int) float64 {
	return stat.StdDev(featureColumn(features, index), nil)
}

func normalize(values []float64) {
	total := 0.0
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
