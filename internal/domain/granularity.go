package domain

import (
	"fmt"
	"math"
)

// TimeGranularity is the native time unit of an incidence table.
type TimeGranularity int

const (
	Daily TimeGranularity = iota
	Weekly
)

// weeklyGapDays is the median gap at or above which a table is weekly.
const weeklyGapDays = 6

func (g TimeGranularity) String() string {
	switch g {
	case Weekly:
		return "weekly"
	default:
		return "daily"
	}
}

// MarshalText lets the granularity appear by name in JSON and YAML output.
func (g TimeGranularity) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// InferGranularity pools the gaps between consecutive observations of each
// region and returns Weekly when their median is at least six days.
// Tables without any gap are Daily.
func InferGranularity(t Table) TimeGranularity {
	var gaps []float64
	for _, g := range t.groupByRegion() {
		for i := 1; i < len(g.rows); i++ {
			gaps = append(gaps, g.rows[i].Date.Sub(g.rows[i-1].Date).Hours()/24)
		}
	}
	if len(gaps) == 0 {
		return Daily
	}
	if median(gaps) >= weeklyGapDays {
		return Weekly
	}
	return Daily
}

// ForGranularity rescales day-based parameters to the table unit. For weekly
// tables mean and sd are divided by 7 and the horizon shrinks to ceil(S/7).
func (p SerialIntervalParams) ForGranularity(g TimeGranularity) SerialIntervalParams {
	if g != Weekly {
		return p
	}
	return SerialIntervalParams{
		Horizon: int(math.Ceil(float64(p.Horizon) / 7)),
		Mean:    p.Mean / 7,
		SD:      p.SD / 7,
	}
}

// UnmarshalText accepts the names produced by MarshalText.
func (g *TimeGranularity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "weekly":
		*g = Weekly
	case "daily", "":
		*g = Daily
	default:
		return fmt.Errorf("unknown granularity %q", b)
	}
	return nil
}
