package datagen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-yadav04/AgisFL/internal/model"
)

func TestGenerateLabelRatio(t *testing.T) {
	samples := New(1).Generate(100, 0.3)
	require.Len(t, samples, 100)

	attacks := 0
	for _, sample := range samples {
		require.Len(t, sample.Features, NumFeatures)
		require.Contains(t, []int{0, 1}, sample.Label)
		if sample.Label == 1 {
			attacks++
		}
	}
	assert.Equal(t, 30, attacks)
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	first := New(42).Generate(50, 0.3)
	second := New(42).Generate(50, 0.3)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Label, second[i].Label)
		assert.Equal(t, first[i].Features, second[i].Features)
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	first := New(1).Generate(10, 0.3)
	second := New(2).Generate(10, 0.3)

	assert.NotEqual(t, first[0].Features, second[0].Features)
}

func TestGenerateUnlabeledStripsLabels(t *testing.T) {
	samples := New(3).GenerateUnlabeled(20, 0.3)

	for _, sample := range samples {
		assert.Equal(t, -1, sample.Label)
	}
}

func TestSplitNonIIDCoversAllSamples(t *testing.T) {
	generator := New(4)
	samples := generator.Generate(300, 0.4)

	split := generator.SplitNonIID(samples, 3)
	require.Len(t, split, 3)

	total := 0
	for _, part := range split {
		total += len(part)
	}
	assert.Equal(t, 300, total)
}

func TestSplitNonIIDSkewsClasses(t *testing.T) {
	generator := New(5)
	samples := generator.Generate(400, 0.5)

	split := generator.SplitNonIID(samples, 2)
	require.Len(t, split, 2)

	// even-indexed parts are normal-heavy, odd-indexed attack-heavy
	assert.Greater(t, normalShare(split[0]), 0.6)
	assert.Less(t, normalShare(split[1]), 0.5)
}

func TestSplitNonIIDInvalidParts(t *testing.T) {
	generator := New(6)
	assert.Nil(t, generator.SplitNonIID(generator.Generate(10, 0.3), 0))
}

func normalShare(part []model.Sample) float64 {
	normals := 0
	for _, sample := range part {
		if sample.Label == 0 {
			normals++
		}
	}
	return float64(normals) / float64(len(part))
}
