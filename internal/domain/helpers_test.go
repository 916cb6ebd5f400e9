package domain

import (
	"time"
)

const (
	regionA = "Auvergne-Rhône-Alpes"
	regionB = "Bretagne"
	regionC = "Corse"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sentinelSeries builds one region's rows with a given step between dates.
func sentinelSeries(region string, start time.Time, step time.Duration, cases ...float64) Table {
	out := make(Table, len(cases))
	for i, c := range cases {
		out[i] = Observation{
			Region:        region,
			Date:          start.Add(time.Duration(i) * step),
			SentinelCases: Float(c),
		}
	}
	return out
}

func dailySeries(region string, cases ...float64) Table {
	return sentinelSeries(region, day(2024, 1, 1), 24*time.Hour, cases...)
}

func weeklySeries(region string, cases ...float64) Table {
	return sentinelSeries(region, day(2024, 1, 1), 7*24*time.Hour, cases...)
}

// scenarioTable is the two-region reference case: A rises then plateaus,
// B never reports a case.
func scenarioTable() Table {
	t := dailySeries(regionA, 10, 12, 15, 20, 25, 30, 28, 26)
	return append(t, dailySeries(regionB, 0, 0, 0, 0, 0, 0, 0, 0)...)
}

// scenarioParams uses a short serial interval (S=4, mean 2.6, sd 1.5).
func scenarioParams() Params {
	p := DefaultParams()
	p.SerialInterval = SerialIntervalParams{Horizon: 4, Mean: 2.6, SD: 1.5}
	return p
}

// withLatest overrides fields of the last row of region in t.
func withLatest(t Table, region string, fn func(*Observation)) Table {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Region == region {
			fn(&t[i])
			return t
		}
	}
	return t
}
