package analytics

import (
	"math"
	"slices"
)

// Median finds the median value in a slice of floats. Returns 0 on empty
// input; callers that need null-vs-zero semantics must check emptiness first.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return temp[n/2]
	}
	return (temp[n/2-1] + temp[n/2]) / 2.0
}

// Percentile returns the p-quantile (0..1) using nearest-rank on a copy of
// the input. Returns 0 on empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	idx := int(math.Round(p * float64(len(temp)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > len(temp)-1 {
		idx = len(temp) - 1
	}
	return temp[idx]
}

// Mean returns the arithmetic mean. Returns 0 on empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Round1 rounds to one decimal place for percentage display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places for day/rating display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
