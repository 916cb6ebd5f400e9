package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Value is an indicator value. NaN and ±Inf encode as null because
// JSON has no representation for them; null decodes back to NaN.
type Value float64

// NaN returns the missing-value marker.
func NaN() Value { return Value(math.NaN()) }

// IsNaN reports whether the value is missing.
func (v Value) IsNaN() bool { return math.IsNaN(float64(v)) }

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, nil
	}
	return f, nil
}

// RegionIndicators holds every indicator of one region.
type RegionIndicators struct {
	Region   string `json:"region" yaml:"region"`
	Rt       Value  `json:"rt" yaml:"rt"`
	SC       Value  `json:"sc" yaml:"sc"`
	Severity Value  `json:"severity" yaml:"severity"`
	Lumen    Value  `json:"lumen_score" yaml:"lumen_score"`
}

// NationalIndicators holds the national averages.
type NationalIndicators struct {
	Rt       Value `json:"rt" yaml:"rt"`
	SC       Value `json:"sc" yaml:"sc"`
	Severity Value `json:"severity" yaml:"severity"`
	Lumen    Value `json:"lumen_score" yaml:"lumen_score"`
}

// Snapshot is the full indicator set derived from one table.
type Snapshot struct {
	ComputedAt      time.Time          `json:"computed_at" yaml:"computed_at"`
	AsOf            time.Time          `json:"as_of" yaml:"as_of"`
	Granularity     TimeGranularity    `json:"granularity" yaml:"granularity"`
	IncidenceSource IncidenceSource    `json:"incidence_source" yaml:"incidence_source"`
	WeightsVersion  string             `json:"weights_version" yaml:"weights_version"`
	National        NationalIndicators `json:"national" yaml:"national"`
	Regions         []RegionIndicators `json:"regions" yaml:"regions"`
}

// ComputeSnapshot derives every indicator from t in one pass: granularity is
// inferred once and the latest R_t per region feeds SC and the LUMEN-Score.
func ComputeSnapshot(t Table, p Params) Snapshot {
	g := InferGranularity(t)
	lastRt := RtLastByRegion(t, p, g)
	rtNational := nationalRt(lastRt)

	scRows := scByRegion(t, p, lastRt)
	severityRows := SeverityByRegion(t)
	lumenRows := lumenByRegion(t, p.Lumen, rtNational)

	sc := indexByRegion(scRows)
	severity := indexByRegion(severityRows)
	lumen := indexByRegion(lumenRows)

	groups := t.groupByRegion()
	regions := make([]RegionIndicators, len(groups))
	for i, grp := range groups {
		rt, ok := lastRt[grp.region]
		if !ok {
			rt = math.NaN()
		}
		regions[i] = RegionIndicators{
			Region:   grp.region,
			Rt:       Value(rt),
			SC:       lookup(sc, grp.region),
			Severity: lookup(severity, grp.region),
			Lumen:    lookup(lumen, grp.region),
		}
	}

	return Snapshot{
		ComputedAt:      now(),
		AsOf:            t.LatestDate(),
		Granularity:     g,
		IncidenceSource: t.IncidenceSource(),
		WeightsVersion:  p.Lumen.Weights.Version,
		National: NationalIndicators{
			Rt:       Value(rtNational),
			SC:       Value(meanOf(scRows)),
			Severity: Value(meanOf(severityRows)),
			Lumen:    Value(meanOf(lumenRows)),
		},
		Regions: regions,
	}
}

// Region returns the indicators of one region.
func (s Snapshot) Region(name string) (RegionIndicators, bool) {
	for _, r := range s.Regions {
		if r.Region == name {
			return r, true
		}
	}
	return RegionIndicators{}, false
}

func indexByRegion(rows []RegionValue) map[string]Value {
	out := make(map[string]Value, len(rows))
	for _, r := range rows {
		out[r.Region] = r.Value
	}
	return out
}

func lookup(m map[string]Value, region string) Value {
	if v, ok := m[region]; ok {
		return v
	}
	return NaN()
}
