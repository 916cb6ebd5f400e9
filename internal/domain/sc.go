package domain

import "math"

// epidemicThreshold is the R_t value the SC sigmoid is centred on.
const epidemicThreshold = 1.0

// RegionValue is one row of a two-column {region, value} table.
type RegionValue struct {
	Region string `json:"region" yaml:"region"`
	Value  Value  `json:"value" yaml:"value"`
}

// RtSigmoid maps R_t to (0,1) with RtSigmoid(1) = 0.5. NaN propagates.
func RtSigmoid(rt, steepness float64) float64 {
	return logistic(rt, steepness, epidemicThreshold)
}

// SCByRegion computes the critical-threshold score of every region in the
// latest snapshot, sorted by region.
func SCByRegion(t Table, p Params, g TimeGranularity) []RegionValue {
	return scByRegion(t, p, RtLastByRegion(t, p, g))
}

// SCNationalAverage is the NaN-ignoring mean of SCByRegion.
func SCNationalAverage(t Table, p Params, g TimeGranularity) float64 {
	return meanOf(SCByRegion(t, p, g))
}

// scByRegion combines latest R_t with min-max normalised density:
//
//	SC = clip(sigmoid(R_t) × density_norm, 0, 1)
//
// A constant density across regions normalises to 0. When no row carries a
// density at all, density_norm is 1 and SC is the pure R_t signal.
func scByRegion(t Table, p Params, lastRt map[string]float64) []RegionValue {
	if len(lastRt) == 0 {
		return nil
	}
	groups := t.groupByRegion()

	densityNorm := make([]float64, len(groups))
	if t.HasDensity() {
		densities := make([]float64, len(groups))
		for i, grp := range groups {
			densities[i] = valueOr(grp.latest().Density, p.SC.DefaultDensity)
		}
		densityNorm = minMaxNormalize(densities)
	} else {
		for i := range densityNorm {
			densityNorm[i] = 1
		}
	}

	out := make([]RegionValue, len(groups))
	for i, grp := range groups {
		rt, ok := lastRt[grp.region]
		if !ok {
			rt = math.NaN()
		}
		sc := clip(RtSigmoid(rt, p.SC.Steepness)*densityNorm[i], 0, 1)
		out[i] = RegionValue{Region: grp.region, Value: Value(sc)}
	}
	return out
}

// meanOf is the NaN-ignoring mean of a region table's values.
func meanOf(rows []RegionValue) float64 {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = float64(r.Value)
	}
	return nanMean(values)
}
