package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultLumenInputs() LumenInputs {
	return LumenInputs{
		Trends:          DefaultTrendsSignal,
		Wiki:            DefaultWikiSignal,
		VaccinationRate: DefaultVaccinationRate,
		PopulationTotal: DefaultPopulationTotal,
		NationalRt:      math.NaN(),
	}
}

func TestLumenWeightsV1(t *testing.T) {
	w := LumenWeightsV1
	assert.Equal(t, "v1", w.Version)
	assert.InDelta(t, 1.0, w.Attention+w.Transmission+w.VaccinationGap+w.Population+w.Climate, 1e-12)
}

func TestLumenScore_DegenerateFixture(t *testing.T) {
	p := DefaultParams().Lumen

	// Vaccination gap and climate only: (0.20·0.5 + 0.10·0.5) × 100.
	in := defaultLumenInputs()
	in.PopulationTotal = 0
	assert.InDelta(t, 15.0, LumenScore(in, p), 1e-9)

	// The default population adds 0.15 × 0.01 × 100.
	assert.InDelta(t, 15.15, LumenScore(defaultLumenInputs(), p), 1e-9)
}

func TestLumenScore_Terms(t *testing.T) {
	p := DefaultParams().Lumen

	tests := []struct {
		name string
		edit func(*LumenInputs)
		want float64
	}{
		{"national rt at floor", func(in *LumenInputs) { in.NationalRt = 0.8 }, 15.15},
		{"national rt below floor clips", func(in *LumenInputs) { in.NationalRt = 0.2 }, 15.15},
		{"national rt at ceiling", func(in *LumenInputs) { in.NationalRt = 2.0 }, 40.15},
		{"national rt above ceiling clips", func(in *LumenInputs) { in.NationalRt = 5 }, 40.15},
		{"attention", func(in *LumenInputs) { in.Trends = 60; in.Wiki = 40 }, 45.15},
		{"full vaccination", func(in *LumenInputs) { in.VaccinationRate = 100 }, 5.15},
		{"population clips at scale", func(in *LumenInputs) { in.PopulationTotal = 12_300_000 }, 30.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := defaultLumenInputs()
			tt.edit(&in)
			assert.InDelta(t, tt.want, LumenScore(in, p), 1e-9)
		})
	}
}

func TestLumenByRegion_DefaultsAndBroadcast(t *testing.T) {
	table := append(
		dailySeries(regionA, 10, 10, 10, 10, 10, 10),
		dailySeries(regionB, 10, 10, 10, 10, 10, 10)...,
	)
	table = withLatest(table, regionB, func(o *Observation) {
		o.TrendsSignal = Float(20)
		o.WikiSignal = Float(10)
		o.VaccinationRate = Float(0.4) // share, read as 40 %
		o.PopulationTotal = Float(5_000_000)
	})

	rows := LumenByRegion(table, scenarioParams(), Daily)

	require.Len(t, rows, 2)
	// National R_t = 1 → r0_norm = (1-0.8)/1.2.
	r0 := 0.2 / 1.2
	wantA := (0.25*r0 + 0.20*0.5 + 0.15*0.01 + 0.10*0.5) * 100
	wantB := (0.30*0.3 + 0.25*r0 + 0.20*0.6 + 0.15*0.5 + 0.10*0.5) * 100
	assert.InDelta(t, wantA, float64(rows[0].Value), 1e-9)
	assert.InDelta(t, wantB, float64(rows[1].Value), 1e-9)

	assert.InDelta(t, (wantA+wantB)/2, LumenNationalAverage(table, scenarioParams(), Daily), 1e-9)
}

func TestLumenByRegion_NoIncidenceStillScores(t *testing.T) {
	table := Table{{Region: regionA, Date: day(2024, 1, 1)}}

	rows := LumenByRegion(table, DefaultParams(), Daily)

	require.Len(t, rows, 1)
	assert.InDelta(t, 15.15, float64(rows[0].Value), 1e-9)
}

func TestLumenByRegion_Empty(t *testing.T) {
	assert.Empty(t, LumenByRegion(nil, DefaultParams(), Daily))
	assert.True(t, math.IsNaN(LumenNationalAverage(nil, DefaultParams(), Daily)))
}

func TestVaccinationPercent(t *testing.T) {
	assert.Equal(t, 50.0, vaccinationPercent(0.5))
	assert.Equal(t, 100.0, vaccinationPercent(1))
	assert.Equal(t, 47.3, vaccinationPercent(47.3))
	assert.Equal(t, 0.0, vaccinationPercent(0))
}
