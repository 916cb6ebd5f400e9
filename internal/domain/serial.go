package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidSerialInterval is returned when the horizon, mean or sd is not
// strictly positive.
var ErrInvalidSerialInterval = errors.New("invalid serial interval")

// SerialInterval is the discretised serial-interval distribution.
// Weight i is the probability of lag i+1 in the table's time unit.
type SerialInterval struct {
	weights []float64
}

// NewSerialInterval discretises a Gamma(mean, sd) law over lags 1..horizon
// as CDF(s) - CDF(s-1) and renormalises to absorb the truncated tail.
func NewSerialInterval(horizon int, mean, sd float64) (SerialInterval, error) {
	if horizon <= 0 || !(mean > 0) || !(sd > 0) || math.IsInf(mean, 0) || math.IsInf(sd, 0) {
		return SerialInterval{}, fmt.Errorf("%w: horizon=%d mean=%g sd=%g", ErrInvalidSerialInterval, horizon, mean, sd)
	}

	shape := (mean / sd) * (mean / sd)
	scale := sd * sd / mean
	gamma := distuv.Gamma{Alpha: shape, Beta: 1 / scale}

	weights := make([]float64, horizon)
	prev := gamma.CDF(0)
	for s := 1; s <= horizon; s++ {
		cur := gamma.CDF(float64(s))
		weights[s-1] = cur - prev
		prev = cur
	}

	total := floats.Sum(weights)
	if !(total > 0) {
		return SerialInterval{}, fmt.Errorf("%w: no probability mass within %d lags", ErrInvalidSerialInterval, horizon)
	}
	floats.Scale(1/total, weights)

	return SerialInterval{weights: weights}, nil
}

// NewSerialIntervalFromParams is NewSerialInterval for a parameter struct.
func NewSerialIntervalFromParams(p SerialIntervalParams) (SerialInterval, error) {
	return NewSerialInterval(p.Horizon, p.Mean, p.SD)
}

// Horizon is the truncation length S.
func (si SerialInterval) Horizon() int {
	return len(si.weights)
}

// Weights returns a copy of w[1..S].
func (si SerialInterval) Weights() []float64 {
	return slices.Clone(si.weights)
}

// Weight returns w[lag] for 1 <= lag <= S, and 0 outside that range.
func (si SerialInterval) Weight(lag int) float64 {
	if lag < 1 || lag > len(si.weights) {
		return 0
	}
	return si.weights[lag-1]
}
