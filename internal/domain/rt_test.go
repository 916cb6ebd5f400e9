package domain

import (
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioSI(t *testing.T) SerialInterval {
	t.Helper()
	si, err := NewSerialInterval(4, 2.6, 1.5)
	require.NoError(t, err)
	return si
}

func TestRtSeries_NaNPadding(t *testing.T) {
	si := scenarioSI(t)
	incidence := []float64{10, 12, 15, 20, 25, 30, 28, 26}

	rt := RtSeries(incidence, si, DefaultMinDenominator)

	require.Len(t, rt, len(incidence))
	for i := 0; i < si.Horizon(); i++ {
		assert.True(t, math.IsNaN(rt[i]), "index %d should be NaN", i)
	}
	for i := si.Horizon(); i < len(rt); i++ {
		assert.False(t, math.IsNaN(rt[i]), "index %d should be finite", i)
		assert.False(t, math.IsInf(rt[i], 0), "index %d should be finite", i)
	}
}

func TestRtSeries_ScenarioValues(t *testing.T) {
	si := scenarioSI(t)
	incidence := []float64{10, 12, 15, 20, 25, 30, 28, 26}

	rt := RtSeries(incidence, si, DefaultMinDenominator)

	nan := math.NaN()
	want := []float64{nan, nan, nan, nan, 1.8234, 1.7164, 1.2681, 0.9939}
	opts := cmp.Options{cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-3)}
	if diff := cmp.Diff(want, rt, opts); diff != "" {
		t.Errorf("RtSeries mismatch (-want +got):\n%s", diff)
	}
}

func TestRtSeries_ConstantIncidenceIsOne(t *testing.T) {
	si := scenarioSI(t)
	rt := RtSeries([]float64{10, 10, 10, 10, 10, 10}, si, DefaultMinDenominator)

	assert.InDelta(t, 1.0, rt[4], 1e-12)
	assert.InDelta(t, 1.0, rt[5], 1e-12)
}

func TestRtSeries_OverflowIsNaN(t *testing.T) {
	si := scenarioSI(t)
	rt := RtSeries([]float64{1e-300, 1e-300, 1e-300, 1e-300, 1e10}, si, 0)

	assert.True(t, math.IsNaN(rt[4]))
}

func TestRtSeries_ZeroWindowIsNaN(t *testing.T) {
	si := scenarioSI(t)
	incidence := []float64{5, 5, 5, 5, 0, 0, 0, 0, 3}

	rt := RtSeries(incidence, si, DefaultMinDenominator)

	last := rt[len(rt)-1]
	assert.True(t, math.IsNaN(last))
	assert.False(t, math.IsInf(last, 0))
}

func TestRtSeries_MinDenominatorGuard(t *testing.T) {
	si := scenarioSI(t)
	incidence := []float64{0.2, 0.2, 0.2, 0.2, 0.5}

	assert.True(t, math.IsNaN(RtSeries(incidence, si, 1.0)[4]))
	assert.InDelta(t, 2.5, RtSeries(incidence, si, 0.1)[4], 1e-9)
}

func TestRtSeries_NaNIncidenceTreatedAsZero(t *testing.T) {
	si := scenarioSI(t)
	withGap := []float64{10, math.NaN(), 15, 20, 25}
	withZero := []float64{10, 0, 15, 20, 25}

	got := RtSeries(withGap, si, DefaultMinDenominator)
	want := RtSeries(withZero, si, DefaultMinDenominator)

	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("NaN fill mismatch (-want +got):\n%s", diff)
	}
}

func TestRtSeries_ShorterThanHorizon(t *testing.T) {
	si := scenarioSI(t)
	rt := RtSeries([]float64{1, 2, 3}, si, DefaultMinDenominator)

	assert.Len(t, rt, 3)
	assert.True(t, math.IsNaN(lastFinite(rt)))
}

func TestRtSeries_ZeroSerialInterval(t *testing.T) {
	rt := RtSeries([]float64{1, 2, 3}, SerialInterval{}, DefaultMinDenominator)
	for _, v := range rt {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRtLastByRegion_Scenario(t *testing.T) {
	table := scenarioTable()
	p := scenarioParams()

	last := RtLastByRegion(table, p, InferGranularity(table))

	require.Len(t, last, 2)
	a := last[regionA]
	assert.False(t, math.IsNaN(a))
	assert.InDelta(t, 0.9939, a, 1e-3)
	assert.True(t, math.IsNaN(last[regionB]))

	national := RtNationalAverage(table, p, Daily)
	assert.Equal(t, a, national)
}

func TestRtByRegion_RisingPhaseAboveOne(t *testing.T) {
	table := scenarioTable()

	series := RtByRegion(table, scenarioParams(), Daily)

	require.Len(t, series, 2)
	assert.Equal(t, regionA, series[0].Region)
	assert.Equal(t, "2024-01-05", series[0].Dates[4])
	for i := 4; i <= 6; i++ {
		assert.Greater(t, series[0].Rt[i], 1.0, "index %d", i)
	}
}

func TestRtLastByRegion_LastNonNaNValue(t *testing.T) {
	// Four zero days leave an empty window for the final point, so the
	// estimate from the day before (no new cases, R_t = 0) is reported.
	table := dailySeries(regionA, 10, 12, 15, 20, 25, 0, 0, 0, 0, 4)

	series := RtByRegion(table, scenarioParams(), Daily)
	require.Len(t, series, 1)
	assert.True(t, math.IsNaN(series[0].Rt[9]))

	last := RtLastByRegion(table, scenarioParams(), Daily)
	assert.Equal(t, 0.0, last[regionA])
}

func TestRtLastByRegion_ERFallback(t *testing.T) {
	table := Table{}
	for i, v := range []float64{10, 10, 10, 10, 10, 10} {
		table = append(table, Observation{Region: regionA, Date: day(2024, 1, 1+i), ERVisits: Float(v)})
	}

	last := RtLastByRegion(table, scenarioParams(), Daily)

	assert.InDelta(t, 1.0, last[regionA], 1e-12)
}

func TestRtLastByRegion_ContractViolations(t *testing.T) {
	noIncidence := Table{
		{Region: regionA, Date: day(2024, 1, 1), Density: Float(100)},
		{Region: regionA, Date: day(2024, 1, 2), Density: Float(100)},
	}
	invalid := scenarioParams()
	invalid.SerialInterval.SD = 0

	assert.Empty(t, RtLastByRegion(nil, scenarioParams(), Daily))
	assert.Empty(t, RtLastByRegion(noIncidence, scenarioParams(), Daily))
	assert.Empty(t, RtLastByRegion(scenarioTable(), invalid, Daily))
	assert.True(t, math.IsNaN(RtNationalAverage(nil, scenarioParams(), Daily)))
}

func TestRtNationalAverage_AllNaN(t *testing.T) {
	table := dailySeries(regionB, 0, 0, 0, 0, 0, 0)
	assert.True(t, math.IsNaN(RtNationalAverage(table, scenarioParams(), Daily)))
}

func TestRtLastByRegion_WeeklyTable(t *testing.T) {
	table := weeklySeries(regionA, 50, 50, 50, 50, 50)
	p := DefaultParams()

	g := InferGranularity(table)
	require.Equal(t, Weekly, g)

	last := RtLastByRegion(table, p, g)
	assert.InDelta(t, 1.0, last[regionA], 1e-9)
}

func TestRtLastByRegion_UnsortedInputIsNotMutated(t *testing.T) {
	table := scenarioTable()
	slices.Reverse(table)
	before := slices.Clone(table)

	last := RtLastByRegion(table, scenarioParams(), Daily)

	assert.Equal(t, before, table)
	assert.InDelta(t, 0.9939, last[regionA], 1e-3)
}

func TestRtNationalAverage_Idempotent(t *testing.T) {
	table := append(scenarioTable(), dailySeries(regionC, 3, 4, 6, 9, 13, 18, 24, 31)...)
	p := scenarioParams()

	first := RtNationalAverage(table, p, Daily)
	second := RtNationalAverage(table, p, Daily)

	assert.Equal(t, math.Float64bits(first), math.Float64bits(second))
}

func TestRtNationalAverage_ConcurrentCallers(t *testing.T) {
	table := append(scenarioTable(), dailySeries(regionC, 3, 4, 6, 9, 13, 18, 24, 31)...)
	p := scenarioParams()
	want := RtNationalAverage(table, p, Daily)

	var wg sync.WaitGroup
	results := make([]float64, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = RtNationalAverage(table, p, Daily)
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, math.Float64bits(want), math.Float64bits(got))
	}
}
