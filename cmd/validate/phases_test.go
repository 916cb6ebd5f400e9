package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonytillet/lumen-indicators/internal/domain"
)

func series(region string, cases ...float64) domain.Table {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	out := make(domain.Table, len(cases))
	for i, c := range cases {
		out[i] = domain.Observation{
			Region:        region,
			Date:          start.AddDate(0, 0, i),
			SentinelCases: domain.Float(c),
			ERVisits:      domain.Float(c / 4),
		}
	}
	return out
}

func ramp(days int, start, step float64) []float64 {
	out := make([]float64, days)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// sampleTable spans more than the default serial-interval horizon so every
// region ends with a finite R_t.
func sampleTable() domain.Table {
	days := domain.DefaultSerialIntervalHorizon + 6
	return append(series("Bretagne", ramp(days, 10, 3)...), series("Corse", ramp(days, 4, 0)...)...)
}

func TestValidateDataset(t *testing.T) {
	assert.True(t, validateDataset(sampleTable()).passed())

	bad := sampleTable()
	bad = append(bad, bad[0])
	bad[1].SentinelCases = domain.Float(-1)
	bad[2].VaccinationRate = domain.Float(140)
	bad[3].PopulationTotal = domain.Float(0)

	p := validateDataset(bad)
	assert.Len(t, p.errors, 4)
	assert.False(t, validateDataset(nil).passed())
}

func TestValidateReproduction(t *testing.T) {
	table := sampleTable()
	snap := domain.ComputeSnapshot(table, domain.DefaultParams())
	require.False(t, snap.National.Rt.IsNaN())

	assert.True(t, validateReproduction(snap, domain.ComputeSnapshot(table, domain.DefaultParams())).passed())

	tampered := domain.ComputeSnapshot(table, domain.DefaultParams())
	tampered.Regions = append([]domain.RegionIndicators(nil), tampered.Regions...)
	tampered.Regions[0].Lumen += 1
	tampered.National.Rt = domain.NaN()

	p := validateReproduction(tampered, snap)
	assert.Len(t, p.errors, 2)
}

func TestValidateRanges(t *testing.T) {
	snap := domain.ComputeSnapshot(sampleTable(), domain.DefaultParams())
	require.False(t, snap.National.Rt.IsNaN())
	assert.True(t, validateRanges(snap).passed())

	skewed := snap
	skewed.National.Rt += 0.5
	assert.Len(t, validateRanges(skewed).errors, 1)

	snap.Regions = append([]domain.RegionIndicators(nil), snap.Regions...)
	snap.Regions[0], snap.Regions[1] = snap.Regions[1], snap.Regions[0]
	snap.Regions[0].SC = 1.5
	p := validateRanges(snap)
	assert.Len(t, p.errors, 2)
}
