package datagen

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

// NumFeatures matches the NSL-KDD-style feature width used across the
// system; the first InformativeFeatures carry the class signal.
const NumFeatures = 41
const InformativeFeatures = 10

// Generator produces synthetic network-traffic samples with separable
// normal and attack patterns, for simulations and tests. All randomness
// flows through the injected source so runs are reproducible.
type Generator struct {
	rng    *rand.Rand
	normal distuv.Normal
	attack distuv.Normal
}

func New(seed uint64) *Generator {
	src := rand.NewSource(seed)
	return &Generator{
		rng:    rand.New(src),
		normal: distuv.Normal{Mu: 0.3, Sigma: 0.1, Src: src},
		attack: distuv.Normal{Mu: 0.8, Sigma: 0.2, Src: src},
	}
}

// Generate returns n labeled samples of which roughly anomalyRatio are
// attacks, shuffled.
func (g *Generator) Generate(n int, anomalyRatio float64) []model.Sample {
	attackCount := int(float64(n) * anomalyRatio)
	samples := make([]model.Sample, 0, n)

	for i := 0; i < n-attackCount; i++ {
		samples = append(samples, g.sample(0))
	}
	for i := 0; i < attackCount; i++ {
		samples = append(samples, g.sample(1))
	}

	g.rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})

	return samples
}

// GenerateUnlabeled returns samples with the label stripped (-1), for
// exercising the internal label-synthesis path.
func (g *Generator) GenerateUnlabeled(n int, anomalyRatio float64) []model.Sample {
	samples := g.Generate(n, anomalyRatio)
	for i := range samples {
		samples[i].Label = -1
	}
	return samples
}

// SplitNonIID partitions samples across parts with alternating class skew:
// even-indexed parts receive mostly normal traffic, odd-indexed parts
// mostly attacks. Leftovers go to the last part.
func (g *Generator) SplitNonIID(samples []model.Sample, parts int) [][]model.Sample {
	if parts <= 0 {
		return nil
	}

	var normals, attacks []model.Sample
	for _, sample := range samples {
		if sample.Label == 1 {
			attacks = append(attacks, sample)
		} else {
			normals = append(normals, sample)
		}
	}

	perPart := len(samples) / parts
	split := make([][]model.Sample, parts)
	for i := 0; i < parts; i++ {
		normalRatio := 0.8
		if i%2 == 1 {
			normalRatio = 0.3
		}

		want := perPart
		if i == parts-1 {
			want = len(normals) + len(attacks)
		}
		wantNormal := int(float64(want) * normalRatio)

		part := []model.Sample{}
		for len(part) < want && (len(normals) > 0 || len(attacks) > 0) {
			takeNormal := len(part) < wantNormal && len(normals) > 0
			if takeNormal || len(attacks) == 0 {
				if len(normals) == 0 {
					takeNormal = false
				} else {
					part = append(part, normals[0])
					normals = normals[1:]
					continue
				}
			}
			part = append(part, attacks[0])
			attacks = attacks[1:]
		}
		split[i] = part
	}

	return split
}

func (g *Generator) sample(label int) model.Sample {
	features := make([]float64, NumFeatures)
	for i := range features {
		if i < InformativeFeatures {
			if label == 1 {
				features[i] = g.attack.Rand()
			} else {
				features[i] = g.normal.Rand()
			}
		} else {
			features[i] = g.rng.Float64()
		}
	}
	return model.Sample{Features: features, Label: label}
}
