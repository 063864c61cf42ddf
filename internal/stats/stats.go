// Package stats holds the descriptive statistics used to summarize runs.
// All functions are pure and never fail; empty input yields 0.
package stats

import (
	"math"
	"sort"
)

// SampleIntervalSeconds is the assumed spacing between samples used by
// Duration. Summaries already on disk were computed with this constant.
const SampleIntervalSeconds = 60.0

// Mean returns the arithmetic mean of values.
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

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// Sorted returns an ascending copy of values.
func Sorted(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// Percentile returns the p-th fraction (0..1) of sorted, which must already be
// in ascending order. The rank p*(n-1) is interpolated linearly between its
// neighbouring elements when it is not an integer. p is clamped to [0, 1]
// and NaN is read as 0.
func Percentile(sorted []float64, p float64) float64 {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}

	switch {
	case math.IsNaN(p) || p < 0:
		p = 0
	case p > 1:
		p = 1
	}

	index := p * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Duration estimates a run's length from its sample count. Runs with fewer
// than two samples have no duration.
func Duration(count int) float64 {
	if count < 2 {
		return 0
	}
	return float64(count) * SampleIntervalSeconds
}

// BatteryDrop returns how far the charge fell between start and end; a rise or
// no change is reported as 0.
func BatteryDrop(start, end float64) float64 {
	if start > end {
		return start - end
	}
	return 0
}
