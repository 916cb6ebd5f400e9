package domain

// Default model parameters. Serial-interval values are in days and are
// rescaled for weekly tables by [SerialIntervalParams.ForGranularity].
const (
	DefaultSerialIntervalHorizon = 14
	DefaultSerialIntervalMean    = 2.6
	DefaultSerialIntervalSD      = 1.5
	DefaultMinDenominator        = 1.0

	DefaultSigmoidSteepness = 4.0
	DefaultDensity          = 1.0

	DefaultTrendsSignal      = 0.0
	DefaultWikiSignal        = 0.0
	DefaultVaccinationRate   = 50.0 // percent
	DefaultPopulationTotal   = 100_000.0
	DefaultPopulationScale   = 10_000_000.0
	DefaultClimateNormalized = 0.5
)

// SerialIntervalParams describes the Gamma serial interval and its truncation.
type SerialIntervalParams struct {
	Horizon int     `json:"horizon" yaml:"horizon"`
	Mean    float64 `json:"mean" yaml:"mean"`
	SD      float64 `json:"sd" yaml:"sd"`
}

// SCParams configures the critical-threshold indicator.
type SCParams struct {
	Steepness      float64 `json:"steepness" yaml:"steepness"`
	DefaultDensity float64 `json:"default_density" yaml:"default_density"`
}

// LumenParams holds the per-region defaults of the LUMEN-Score. The weights
// are a versioned constant table and are not meant to be tuned per call.
type LumenParams struct {
	DefaultTrends      float64      `json:"default_trends" yaml:"default_trends"`
	DefaultWiki        float64      `json:"default_wiki" yaml:"default_wiki"`
	DefaultVaccination float64      `json:"default_vaccination" yaml:"default_vaccination"`
	DefaultPopulation  float64      `json:"default_population" yaml:"default_population"`
	PopulationScale    float64      `json:"population_scale" yaml:"population_scale"`
	Weights            LumenWeights `json:"weights" yaml:"weights"`
}

// Params bundles every tunable of the indicator engine.
type Params struct {
	SerialInterval SerialIntervalParams `json:"serial_interval" yaml:"serial_interval"`
	MinDenominator float64              `json:"min_denominator" yaml:"min_denominator"`
	SC             SCParams             `json:"sc" yaml:"sc"`
	Lumen          LumenParams          `json:"lumen" yaml:"lumen"`
}

// DefaultParams returns the reference configuration.
func DefaultParams() Params {
	return Params{
		SerialInterval: SerialIntervalParams{
			Horizon: DefaultSerialIntervalHorizon,
			Mean:    DefaultSerialIntervalMean,
			SD:      DefaultSerialIntervalSD,
		},
		MinDenominator: DefaultMinDenominator,
		SC: SCParams{
			Steepness:      DefaultSigmoidSteepness,
			DefaultDensity: DefaultDensity,
		},
		Lumen: LumenParams{
			DefaultTrends:      DefaultTrendsSignal,
			DefaultWiki:        DefaultWikiSignal,
			DefaultVaccination: DefaultVaccinationRate,
			DefaultPopulation:  DefaultPopulationTotal,
			PopulationScale:    DefaultPopulationScale,
			Weights:            LumenWeightsV1,
		},
	}
}
