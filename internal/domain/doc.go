// Package domain computes flu-surveillance indicators for French regions.
//
// # Data Source
//
// Observations are per-region, per-date rows assembled by the upstream data
// layer from the Sentinelles network, Santé publique France ER surveillance
// (OSCOUR), INSEE population tables and attention signals (Google Trends,
// Wikipedia page views). The collector publishes each row as flat JSON to the
// Kafka source topic using the French column names below.
//
// # Column Conventions
//
//	region                  French administrative region, e.g. "Île-de-France"
//	date                    "2024-01-08" (day or ISO week start) or RFC 3339
//	cas_sentinelles         sentinel-network case estimate (preferred incidence)
//	urgences_grippe         ER visits for influenza-like illness (fallback incidence)
//	densite                 inhabitants per km²
//	population_totale       inhabitants
//	vaccination_2024        vaccination coverage, percent (a share ≤ 1 is accepted)
//	google_trends_grippe    search interest, arbitrary positive scale
//	wiki_grippe_views       Wikipedia page views for the "Grippe" article
//
// Incidence is chosen per table, not per row: cas_sentinelles when any row
// carries it, urgences_grippe otherwise. A row missing the chosen column
// contributes zero cases.
//
// Granularity:
//
//	The series unit is inferred from the data. If the median gap between
//	consecutive observations of a region is at least 6 days the table is
//	weekly and the serial interval is rescaled to weeks. See [InferGranularity].
//
// # Indicators
//
// R_t (Cori et al. 2013) uses the renewal equation with a Gamma serial
// interval discretised as CDF(s) - CDF(s-1) over lags 1..S:
//
//	R_t = I_t / Σ_{s=1..S} I_{t-s} · w_s
//
// SC (seuil critique) is logistic(R_t) scaled by min-max normalised density,
// bounded to [0,1]. Severity (taux de gravité) is ER visits over sentinel
// cases × 100 on the latest row of each region. The LUMEN-Score blends
// attention, national R_t, vaccination gap, population and a climate
// placeholder with the versioned weights in [LumenWeightsV1].
//
// Numerical policy:
//
//	R_t and SC propagate NaN when the renewal denominator is below the
//	minimum (default 1.0). Severity fills a missing or zero denominator with
//	0 instead. The two policies are kept apart on purpose; see
//	[severityRatio] and [RtSeries].
package domain
