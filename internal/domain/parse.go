package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingRegion is returned for rows without a region label.
	ErrMissingRegion = errors.New("missing region")
	// ErrMissingDate is returned for rows without a parseable date.
	ErrMissingDate = errors.New("missing date")
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"02/01/2006", // French exports
}

// ParseRawEvent deserializes a RawEvent's value into an Observation.
// It expects the flat JSON row produced by the collector service.
func ParseRawEvent(raw RawEvent) (Observation, error) {
	var rec RawObservationRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Observation{}, fmt.Errorf("parse observation: %w", err)
	}
	return rec.Observation()
}

// Observation validates the record and converts it to its domain form.
func (rec RawObservationRecord) Observation() (Observation, error) {
	region := strings.TrimSpace(rec.Region)
	if region == "" {
		return Observation{}, fmt.Errorf("parse observation: %w", ErrMissingRegion)
	}
	date, err := ParseDate(rec.Date)
	if err != nil {
		return Observation{}, fmt.Errorf("parse observation %q: %w", region, err)
	}

	vaccination := rec.Vaccination2024
	if vaccination == nil {
		vaccination = rec.VaccinationRate
	}

	return Observation{
		Region:          region,
		Date:            date,
		SentinelCases:   finiteOrNil(rec.SentinelCases),
		ERVisits:        finiteOrNil(rec.ERVisits),
		Density:         finiteOrNil(rec.Density),
		PopulationTotal: finiteOrNil(rec.PopulationTotal),
		VaccinationRate: finiteOrNil(vaccination),
		TrendsSignal:    finiteOrNil(rec.TrendsSignal),
		WikiSignal:      finiteOrNil(rec.WikiSignal),
	}, nil
}

// ParseDate accepts a calendar day, an RFC 3339 timestamp or a French
// dd/mm/yyyy date. The result is truncated to the UTC day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised format %q", ErrMissingDate, s)
}

// ParseOptionalFloat parses a CSV cell. Empty cells and "NA"/"NaN" markers
// yield nil; so does anything that does not parse as a finite number.
// A single French decimal comma is accepted; thousands separators are not.
func ParseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") || strings.EqualFold(s, "NaN") {
		return nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finiteOrNil(&v)
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
