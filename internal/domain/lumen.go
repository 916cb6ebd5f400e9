package domain

import "math"

// LumenWeights is one version of the LUMEN-Score blend. Changing a weight
// means publishing a new version, never editing an existing one.
type LumenWeights struct {
	Version        string  `json:"version" yaml:"version"`
	Attention      float64 `json:"attention" yaml:"attention"`
	Transmission   float64 `json:"transmission" yaml:"transmission"`
	VaccinationGap float64 `json:"vaccination_gap" yaml:"vaccination_gap"`
	Population     float64 `json:"population" yaml:"population"`
	Climate        float64 `json:"climate" yaml:"climate"`
}

// LumenWeightsV1 is the reference blend.
var LumenWeightsV1 = LumenWeights{
	Version:        "v1",
	Attention:      0.30,
	Transmission:   0.25,
	VaccinationGap: 0.20,
	Population:     0.15,
	Climate:        0.10,
}

// Reference points of the R_t normalisation: 0.8 maps to 0 and 2.0 to 1.
const (
	lumenRtFloor = 0.8
	lumenRtSpan  = 1.2
)

// LumenInputs are the per-region terms of the score after defaults apply.
type LumenInputs struct {
	Trends          float64
	Wiki            float64
	VaccinationRate float64 // percent
	PopulationTotal float64
	NationalRt      float64
}

// LumenScore evaluates the blend on already defaulted inputs:
//
//	LS = (w_a·iae + w_t·r0_norm + w_v·(1-v) + w_p·d_norm + w_c·climate) × 100
//
// A NaN national R_t contributes r0_norm = 0.
func LumenScore(in LumenInputs, p LumenParams) float64 {
	w := p.Weights
	iae := (in.Trends + in.Wiki) / 100

	r0Norm := 0.0
	if !math.IsNaN(in.NationalRt) {
		r0Norm = clip((in.NationalRt-lumenRtFloor)/lumenRtSpan, 0, 1)
	}

	v := in.VaccinationRate / 100

	scale := p.PopulationScale
	if scale <= 0 {
		scale = DefaultPopulationScale
	}
	dNorm := clip(in.PopulationTotal/scale, 0, 1)

	return (w.Attention*iae +
		w.Transmission*r0Norm +
		w.VaccinationGap*(1-v) +
		w.Population*dNorm +
		w.Climate*DefaultClimateNormalized) * 100
}

// LumenByRegion scores every region from its latest row. The national R_t
// average is broadcast to all regions.
func LumenByRegion(t Table, p Params, g TimeGranularity) []RegionValue {
	return lumenByRegion(t, p.Lumen, RtNationalAverage(t, p, g))
}

// LumenNationalAverage is the mean of LumenByRegion.
func LumenNationalAverage(t Table, p Params, g TimeGranularity) float64 {
	return meanOf(LumenByRegion(t, p, g))
}

func lumenByRegion(t Table, p LumenParams, nationalRt float64) []RegionValue {
	groups := t.groupByRegion()
	if len(groups) == 0 {
		return nil
	}
	out := make([]RegionValue, len(groups))
	for i, grp := range groups {
		row := grp.latest()
		in := LumenInputs{
			Trends:          valueOr(row.TrendsSignal, p.DefaultTrends),
			Wiki:            valueOr(row.WikiSignal, p.DefaultWiki),
			VaccinationRate: vaccinationPercent(valueOr(row.VaccinationRate, p.DefaultVaccination)),
			PopulationTotal: valueOr(row.PopulationTotal, p.DefaultPopulation),
			NationalRt:      nationalRt,
		}
		out[i] = RegionValue{Region: grp.region, Value: Value(LumenScore(in, p))}
	}
	return out
}

// vaccinationPercent reads coverage given as a share (0..1] as percent.
func vaccinationPercent(rate float64) float64 {
	if rate > 0 && rate <= 1 {
		return rate * 100
	}
	return rate
}
