package domain

import (
	"maps"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// RtSeries applies Cori's renewal estimator to one region's incidence series.
// The result is aligned with incidence: the first S entries are NaN, and so is
// every entry whose weighted window sum Σ I[t-s]·w[s] is below minDenom.
// NaN incidence counts as zero.
func RtSeries(incidence []float64, si SerialInterval, minDenom float64) []float64 {
	out := make([]float64, len(incidence))
	for i := range out {
		out[i] = math.NaN()
	}

	horizon := si.Horizon()
	if horizon == 0 {
		return out
	}

	filled := make([]float64, len(incidence))
	for i, v := range incidence {
		if !math.IsNaN(v) {
			filled[i] = v
		}
	}

	for t := horizon; t < len(filled); t++ {
		var denom float64
		for s := 1; s <= horizon; s++ {
			denom += filled[t-s] * si.weights[s-1]
		}
		if !(denom >= minDenom) || denom == 0 {
			continue
		}
		if r := filled[t] / denom; !math.IsInf(r, 0) {
			out[t] = r
		}
	}
	return out
}

// lastFinite returns the last non-NaN element of series, or NaN.
func lastFinite(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i]
		}
	}
	return math.NaN()
}

// RegionRt is the R_t series of one region.
type RegionRt struct {
	Region string
	Dates  []string
	Rt     []float64
}

// RtByRegion computes the full R_t series of every region. The serial
// interval is built once for the given granularity. Regions are processed
// concurrently; each goroutine only reads its own defensive copy.
// Returns nil when the table has no incidence source or the serial
// interval parameters are invalid.
func RtByRegion(t Table, p Params, g TimeGranularity) []RegionRt {
	src := t.IncidenceSource()
	if len(t) == 0 || src == IncidenceNone {
		return nil
	}
	si, err := NewSerialIntervalFromParams(p.SerialInterval.ForGranularity(g))
	if err != nil {
		return nil
	}

	groups := t.groupByRegion()
	results := make([]RegionRt, len(groups))

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := range groups {
		eg.Go(func() error {
			grp := groups[i]
			dates := make([]string, len(grp.rows))
			for j := range grp.rows {
				dates[j] = grp.rows[j].Date.Format("2006-01-02")
			}
			results[i] = RegionRt{
				Region: grp.region,
				Dates:  dates,
				Rt:     RtSeries(grp.incidence(src), si, p.MinDenominator),
			}
			return nil
		})
	}
	_ = eg.Wait() // workers never fail

	return results
}

// RtLastByRegion maps each region to its last non-NaN R_t (NaN when the
// whole series is NaN). Contract violations yield an empty map.
func RtLastByRegion(t Table, p Params, g TimeGranularity) map[string]float64 {
	series := RtByRegion(t, p, g)
	out := make(map[string]float64, len(series))
	for _, s := range series {
		out[s.Region] = lastFinite(s.Rt)
	}
	return out
}

// RtNationalAverage is the mean of the per-region latest R_t ignoring NaN,
// or NaN when no region has an estimate.
func RtNationalAverage(t Table, p Params, g TimeGranularity) float64 {
	return nationalRt(RtLastByRegion(t, p, g))
}

// nationalRt averages in region order so repeated calls are bit-identical.
func nationalRt(last map[string]float64) float64 {
	values := make([]float64, 0, len(last))
	for _, region := range slices.Sorted(maps.Keys(last)) {
		values = append(values, last[region])
	}
	return nanMean(values)
}
