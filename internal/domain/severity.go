package domain

// SeverityByRegion computes G = ER visits / sentinel cases × 100 on the
// latest row of each region. Returns nil when the table carries neither
// incidence column.
func SeverityByRegion(t Table) []RegionValue {
	if t.IncidenceSource() == IncidenceNone {
		return nil
	}
	groups := t.groupByRegion()
	out := make([]RegionValue, len(groups))
	for i, grp := range groups {
		row := grp.latest()
		out[i] = RegionValue{
			Region: grp.region,
			Value:  Value(severityRatio(row.ERVisits, row.SentinelCases)),
		}
	}
	return out
}

// SeverityNationalAverage is the mean of SeverityByRegion, NaN for an empty table.
func SeverityNationalAverage(t Table) float64 {
	return meanOf(SeverityByRegion(t))
}

// severityRatio fills missing counts with 0 before dividing and reports 0,
// not NaN, when there are no sentinel cases. R_t uses NaN for the same
// situation; the two policies must stay separate.
func severityRatio(erVisits, sentinelCases *float64) float64 {
	num := valueOr(erVisits, 0)
	den := valueOr(sentinelCases, 0)
	if den == 0 {
		return 0
	}
	return num / den * 100
}
