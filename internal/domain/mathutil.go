package domain

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// logistic maps x through 1/(1+exp(-k(x-center))).
func logistic(x, k, center float64) float64 {
	return 1 / (1 + math.Exp(-k*(x-center)))
}

// clip bounds v to [lo, hi]. NaN passes through.
func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// minMaxNormalize scales values to [0,1]. A constant input (including a
// single value) maps to all zeros.
func minMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// nanMean is the arithmetic mean of the finite values, NaN when there are none.
func nanMean(values []float64) float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN()
	}
	return stat.Mean(finite, nil)
}

// median of values; averages the two middle elements for even lengths.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
