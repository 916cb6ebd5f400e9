package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

// RawObservationRecord is the flat JSON row produced by the collector.
// Numeric columns are pointers so an absent column stays distinguishable from 0.
type RawObservationRecord struct {
	Region          string   `json:"region"`
	Date            string   `json:"date"`
	SentinelCases   *float64 `json:"cas_sentinelles,omitempty"`
	ERVisits        *float64 `json:"urgences_grippe,omitempty"`
	Density         *float64 `json:"densite,omitempty"`
	PopulationTotal *float64 `json:"population_totale,omitempty"`
	Vaccination2024 *float64 `json:"vaccination_2024,omitempty"`
	VaccinationRate *float64 `json:"vaccination_rate,omitempty"` // generic name used by older extracts
	TrendsSignal    *float64 `json:"google_trends_grippe,omitempty"`
	WikiSignal      *float64 `json:"wiki_grippe_views,omitempty"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Observation is one region's surveillance row for a single date.
type Observation struct {
	Region          string    `json:"region"`
	Date            time.Time `json:"date"`
	SentinelCases   *float64  `json:"cas_sentinelles,omitempty"`
	ERVisits        *float64  `json:"urgences_grippe,omitempty"`
	Density         *float64  `json:"densite,omitempty"`
	PopulationTotal *float64  `json:"population_totale,omitempty"`
	VaccinationRate *float64  `json:"vaccination_rate,omitempty"`
	TrendsSignal    *float64  `json:"google_trends_grippe,omitempty"`
	WikiSignal      *float64  `json:"wiki_grippe_views,omitempty"`
}

// IncidenceSource names the column used as the incidence signal of a table.
type IncidenceSource string

const (
	IncidenceNone     IncidenceSource = ""
	IncidenceSentinel IncidenceSource = "cas_sentinelles"
	IncidenceER       IncidenceSource = "urgences_grippe"
)

// Table is an ordered collection of observations. Indicator functions treat
// it as read-only and never reorder the caller's slice.
type Table []Observation

// IncidenceSource returns the preferred incidence column present in the table.
func (t Table) IncidenceSource() IncidenceSource {
	hasER := false
	for i := range t {
		if t[i].SentinelCases != nil {
			return IncidenceSentinel
		}
		if t[i].ERVisits != nil {
			hasER = true
		}
	}
	if hasER {
		return IncidenceER
	}
	return IncidenceNone
}

// HasDensity reports whether any row carries a population density.
func (t Table) HasDensity() bool {
	for i := range t {
		if t[i].Density != nil {
			return true
		}
	}
	return false
}

// AsOf returns the rows dated on or before cutoff. The zero time returns the
// whole table.
func (t Table) AsOf(cutoff time.Time) Table {
	if cutoff.IsZero() {
		return t
	}
	out := make(Table, 0, len(t))
	for i := range t {
		if !t[i].Date.After(cutoff) {
			out = append(out, t[i])
		}
	}
	return out
}

// LatestDate returns the most recent observation date, or the zero time.
func (t Table) LatestDate() time.Time {
	var latest time.Time
	for i := range t {
		if t[i].Date.After(latest) {
			latest = t[i].Date
		}
	}
	return latest
}

// regionSeries is a defensive copy of one region's rows sorted by date.
type regionSeries struct {
	region string
	rows   []Observation
}

// groupByRegion copies rows into per-region series. Groups are ordered by
// region name and rows by non-decreasing date; ties keep input order.
func (t Table) groupByRegion() []regionSeries {
	index := make(map[string]int)
	var groups []regionSeries
	for i := range t {
		region := t[i].Region
		if region == "" {
			continue
		}
		idx, ok := index[region]
		if !ok {
			idx = len(groups)
			index[region] = idx
			groups = append(groups, regionSeries{region: region})
		}
		groups[idx].rows = append(groups[idx].rows, t[i])
	}

	for i := range groups {
		slices.SortStableFunc(groups[i].rows, func(a, b Observation) int {
			return a.Date.Compare(b.Date)
		})
	}
	slices.SortFunc(groups, func(a, b regionSeries) int {
		return strings.Compare(a.region, b.region)
	})
	return groups
}

// latest returns the last row of the series.
func (s regionSeries) latest() Observation {
	return s.rows[len(s.rows)-1]
}

// incidence extracts the chosen column, filling missing values with zero.
func (s regionSeries) incidence(src IncidenceSource) []float64 {
	out := make([]float64, len(s.rows))
	for i := range s.rows {
		var v *float64
		switch src {
		case IncidenceSentinel:
			v = s.rows[i].SentinelCases
		case IncidenceER:
			v = s.rows[i].ERVisits
		}
		out[i] = valueOr(v, 0)
	}
	return out
}

// valueOr dereferences v, returning def for nil.
func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Float returns a pointer to v, convenient for building observations.
func Float(v float64) *float64 {
	return &v
}
