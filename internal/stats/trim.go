package stats

import "math"

// TrimOutliers removes extreme values in two sequential passes.
// Each pass drops every value whose absolute deviation from the sample mean
// exceeds k sample standard deviations; the second pass recomputes mean and
// stddev on the first pass's survivors. NaN and Inf values are excluded
// before the first pass.
//
// A degenerate sample (at most one value, or zero variance) at either pass
// yields an empty result, which callers treat as "no baseline available".
// Survivors keep their input order.
func TrimOutliers(sample []float64, k float64) []float64 {
	first := trimPass(Finite(sample), k)
	if len(first) == 0 {
		return nil
	}
	return trimPass(first, k)
}

func trimPass(values []float64, k float64) []float64 {
	if len(values) <= 1 {
		return nil
	}
	std := SampleStddev(values)
	if std == 0 || math.IsNaN(std) {
		return nil
	}

	mean := Mean(values)
	limit := k * std
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if math.Abs(v-mean) > limit {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}
