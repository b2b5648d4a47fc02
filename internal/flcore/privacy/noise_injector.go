package privacy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// NoiseInjector adds calibrated random perturbation to parameter vectors for
// differential privacy. Both mechanisms are pure transforms: the input vector
// is never modified.
type NoiseInjector struct {
	epsilon float64
	delta   float64
	src     rand.Source
}

// NewNoiseInjector builds an injector for the (epsilon, delta) privacy
// budget. A nil src falls back to the global source. Epsilon must be
// positive and delta must lie in (0, 1); anything else is a configuration
// error, not a recoverable runtime condition.
func NewNoiseInjector(epsilon float64, delta float64, src rand.Source) (*NoiseInjector, error) {
	if epsilon <= 0 {
		return nil, fmt.Errorf("invalid privacy budget: epsilon must be positive, got %g", epsilon)
	}
	if delta <= 0 || delta >= 1 {
		return nil, fmt.Errorf("invalid delta: must be in (0, 1), got %g", delta)
	}

	return &NoiseInjector{
		epsilon: epsilon,
		delta:   delta,
		src:     src,
	}, nil
}

func (ni *NoiseInjector) Epsilon() float64 {
	return ni.epsilon
}

// AddLaplaceNoise adds i.i.d. Laplace(0, sensitivity/epsilon) noise to every
// element of vector and returns the perturbed copy.
func (ni *NoiseInjector) AddLaplaceNoise(vector []float64, sensitivity float64) []float64 {
	dist := distuv.Laplace{
		Mu:    0,
		Scale: sensitivity / ni.epsilon,
		Src:   ni.src,
	}

	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = v + dist.Rand()
	}
	return out
}

// AddGaussianNoise adds zero-mean Gaussian noise calibrated for
// (epsilon, delta)-differential privacy: sigma = sensitivity *
// sqrt(2*ln(1.25/delta)) / epsilon.
func (ni *NoiseInjector) AddGaussianNoise(vector []float64, sensitivity float64) []float64 {
	sigma := sensitivity * math.Sqrt(2*math.Log(1.25/ni.delta)) / ni.epsilon
	dist := distuv.Normal{
		Mu:    0,
		Sigma: sigma,
		Src:   ni.src,
	}

	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = v + dist.Rand()
	}
	return out
}
