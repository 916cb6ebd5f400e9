package main

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/tonytillet/lumen-indicators/internal/domain"
)

var defaultRegions = []string{
	"Auvergne-Rhône-Alpes",
	"Bretagne",
	"Corse",
	"Grand Est",
	"Hauts-de-France",
	"Île-de-France",
	"Normandie",
	"Nouvelle-Aquitaine",
	"Occitanie",
	"Provence-Alpes-Côte d'Azur",
}

// regionProfile holds the static columns and epidemic shape of one region.
type regionProfile struct {
	population  float64
	density     float64
	vaccination float64
	peakDay     float64
	peakCases   float64
	width       float64
	erShare     float64
}

type generator struct {
	regions []string
	start   time.Time
	days    int
	seed    uint64
	weekly  bool
}

// table builds the dataset. The same seed always yields the same rows.
func (g generator) table() domain.Table {
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))

	profiles := make([]regionProfile, len(g.regions))
	for i := range profiles {
		profiles[i] = regionProfile{
			population:  float64(300_000 + rng.IntN(12_000_000)),
			density:     20 + rng.Float64()*980,
			vaccination: 40 + rng.Float64()*25,
			peakDay:     float64(g.days)*0.45 + rng.NormFloat64()*float64(g.days)*0.08,
			peakCases:   80 + rng.Float64()*400,
			width:       float64(g.days) * (0.10 + rng.Float64()*0.06),
			erShare:     0.15 + rng.Float64()*0.2,
		}
	}

	step := 1
	if g.weekly {
		step = 7
	}

	var out domain.Table
	for i, region := range g.regions {
		p := profiles[i]
		for d := 0; d < g.days; d += step {
			curve := math.Exp(-0.5 * math.Pow((float64(d)-p.peakDay)/p.width, 2))
			cases := math.Round(math.Max(0, p.peakCases*curve*float64(step)+rng.NormFloat64()*3))
			er := math.Round(cases * p.erShare)
			trends := math.Round(100 * curve * (0.8 + 0.2*rng.Float64()))
			wiki := math.Round(40*curve + rng.Float64()*5)

			out = append(out, domain.Observation{
				Region:          region,
				Date:            g.start.AddDate(0, 0, d),
				SentinelCases:   domain.Float(cases),
				ERVisits:        domain.Float(er),
				Density:         domain.Float(math.Round(p.density*10) / 10),
				PopulationTotal: domain.Float(p.population),
				VaccinationRate: domain.Float(math.Round(p.vaccination*10) / 10),
				TrendsSignal:    domain.Float(trends),
				WikiSignal:      domain.Float(wiki),
			})
		}
	}
	return out
}
