package common

// CalculateAverageFloat64 returns the unweighted mean of numbers, 0 for an
// empty slice.
func CalculateAverageFloat64(numbers []float64) float64 {
	if len(numbers) == 0 {
		return 0
	}

	var sum float64
	for _, number := range numbers {
		sum += number
	}

	return sum / float64(len(numbers))
}

// CopyVector returns a fresh copy of a parameter vector.
func CopyVector(vector []float64) []float64 {
	out := make([]float64, len(vector))
	copy(out, vector)
	return out
}
