package main

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/tonytillet/lumen-indicators/internal/domain"
)

const tolerance = 1e-9

// ── Phase 1: Dataset Integrity ──
// Validates the observation rows the snapshot is derived from.

func validateDataset(t domain.Table) *phase {
	p := &phase{name: "Phase 1: Dataset Integrity"}

	if len(t) == 0 {
		p.errorf("dataset is empty")
		return p
	}

	seen := make(map[string]int, len(t))
	for i, o := range t {
		key := o.Region + "|" + o.Date.Format(time.DateOnly)
		if prev, ok := seen[key]; ok {
			p.errorf("row %d duplicates row %d (%s)", i+1, prev+1, key)
		}
		seen[key] = i

		checkNonNegative(p, i, "cas_sentinelles", o.SentinelCases)
		checkNonNegative(p, i, "urgences_grippe", o.ERVisits)
		checkNonNegative(p, i, "densite", o.Density)
		if o.PopulationTotal != nil && *o.PopulationTotal <= 0 {
			p.errorf("row %d: population_totale must be positive, got %g", i+1, *o.PopulationTotal)
		}
		if o.VaccinationRate != nil && (*o.VaccinationRate < 0 || *o.VaccinationRate > 100) {
			p.errorf("row %d: vaccination %g outside [0,100]", i+1, *o.VaccinationRate)
		}
	}

	if t.IncidenceSource() == domain.IncidenceNone {
		p.errorf("no incidence column (cas_sentinelles or urgences_grippe) present")
	}
	return p
}

func checkNonNegative(p *phase, row int, col string, v *float64) {
	if v != nil && *v < 0 {
		p.errorf("row %d: %s is negative (%g)", row+1, col, *v)
	}
}

// ── Phase 2: Snapshot Reproduction ──
// Validates the fixture against a fresh computation over the same dataset.

func validateReproduction(expected, actual domain.Snapshot) *phase {
	p := &phase{name: "Phase 2: Snapshot Reproduction"}

	if !expected.AsOf.Equal(actual.AsOf) {
		p.errorf("as_of: fixture=%s, computed=%s", expected.AsOf.Format(time.DateOnly), actual.AsOf.Format(time.DateOnly))
	}
	if expected.Granularity != actual.Granularity {
		p.errorf("granularity: fixture=%s, computed=%s", expected.Granularity, actual.Granularity)
	}
	if expected.IncidenceSource != actual.IncidenceSource {
		p.errorf("incidence_source: fixture=%q, computed=%q", expected.IncidenceSource, actual.IncidenceSource)
	}
	if expected.WeightsVersion != actual.WeightsVersion {
		p.errorf("weights_version: fixture=%q, computed=%q", expected.WeightsVersion, actual.WeightsVersion)
	}

	compareValue(p, "national rt", expected.National.Rt, actual.National.Rt)
	compareValue(p, "national sc", expected.National.SC, actual.National.SC)
	compareValue(p, "national severity", expected.National.Severity, actual.National.Severity)
	compareValue(p, "national lumen_score", expected.National.Lumen, actual.National.Lumen)

	if len(expected.Regions) != len(actual.Regions) {
		p.errorf("regions: fixture has %d, computed %d", len(expected.Regions), len(actual.Regions))
	}
	for _, want := range expected.Regions {
		got, ok := actual.Region(want.Region)
		if !ok {
			p.errorf("region %q missing from computed snapshot", want.Region)
			continue
		}
		compareValue(p, want.Region+" rt", want.Rt, got.Rt)
		compareValue(p, want.Region+" sc", want.SC, got.SC)
		compareValue(p, want.Region+" severity", want.Severity, got.Severity)
		compareValue(p, want.Region+" lumen_score", want.Lumen, got.Lumen)
	}
	return p
}

func compareValue(p *phase, label string, want, got domain.Value) {
	if want.IsNaN() || got.IsNaN() {
		if want.IsNaN() != got.IsNaN() {
			p.errorf("%s: fixture=%v, computed=%v", label, want, got)
		}
		return
	}
	if math.Abs(float64(want-got)) > tolerance {
		p.errorf("%s: fixture=%.12g, computed=%.12g", label, want, got)
	}
}

// ── Phase 3: Indicator Ranges ──
// Validates the bounds downstream dashboards assume.

func validateRanges(s domain.Snapshot) *phase {
	p := &phase{name: "Phase 3: Indicator Ranges"}

	if !slices.IsSortedFunc(s.Regions, func(a, b domain.RegionIndicators) int {
		return strings.Compare(a.Region, b.Region)
	}) {
		p.errorf("regions are not sorted by name")
	}

	var rts []float64
	for _, r := range s.Regions {
		if !r.Rt.IsNaN() {
			if r.Rt < 0 {
				p.errorf("%s: negative rt %g", r.Region, r.Rt)
			}
			rts = append(rts, float64(r.Rt))
		}
		if !r.SC.IsNaN() && (r.SC < 0 || r.SC > 1) {
			p.errorf("%s: sc %g outside [0,1]", r.Region, r.SC)
		}
		if !r.Severity.IsNaN() && r.Severity < 0 {
			p.errorf("%s: negative severity %g", r.Region, r.Severity)
		}
		if r.Lumen.IsNaN() || math.IsInf(float64(r.Lumen), 0) {
			p.errorf("%s: lumen_score is not finite", r.Region)
		}
	}

	if len(rts) > 0 {
		var sum float64
		for _, v := range rts {
			sum += v
		}
		compareValue(p, "national rt mean", domain.Value(sum/float64(len(rts))), s.National.Rt)
	} else if !s.National.Rt.IsNaN() {
		p.errorf("national rt %g set without any regional rt", s.National.Rt)
	}
	return p
}
