// Package stats provides the descriptive statistics behind sector baselines.
// All functions are pure and ignore NaN inputs unless stated otherwise.
package stats

import (
	"math"
	"sort"
)

// Finite returns the non-NaN, non-Inf values of sample in their original order.
func Finite(sample []float64) []float64 {
	out := make([]float64, 0, len(sample))
	for _, v := range sample {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Mean calculates the arithmetic mean. Returns 0 for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStddev calculates the sample standard deviation (n-1 denominator).
// Returns 0 for fewer than 2 values.
func SampleStddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values) / float64(n-1))
}

// PopulationStddev calculates the population standard deviation (n denominator).
// Returns 0 for an empty sample.
func PopulationStddev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSquaredDeviations(values) / float64(n))
}

func sumSquaredDeviations(values []float64) float64 {
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq
}

// Sorted returns an ascending copy of values.
func Sorted(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// Percentile uses linear interpolation at index p*(n-1).
// sorted must be pre-sorted ASC.
// p is percentile (0.10 = 10th percentile).
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// Median is the 50th percentile of sorted.
func Median(sorted []float64) float64 {
	return Percentile(sorted, 0.50)
}
