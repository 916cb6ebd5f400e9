package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tonytillet/lumen-indicators/internal/dataset"
	"github.com/tonytillet/lumen-indicators/internal/domain"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var version = "v0.0.1-default"

const (
	debugFlag     = "debug"
	formatFlag    = "format"
	inputFlag     = "input"
	asOfFlag      = "as-of"
	regionFlag    = "region"
	siHorizonFlag = "si-horizon"
	siMeanFlag    = "si-mean"
	siSDFlag      = "si-sd"
	minDenomFlag  = "min-denom"
)

// modelFlags are rebuilt per command tree since flags keep parse state.
func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  siHorizonFlag,
			Usage: "Serial interval truncation horizon in days",
			Value: domain.DefaultSerialIntervalHorizon,
		},
		&cli.FloatFlag{
			Name:  siMeanFlag,
			Usage: "Serial interval mean in days",
			Value: domain.DefaultSerialIntervalMean,
		},
		&cli.FloatFlag{
			Name:  siSDFlag,
			Usage: "Serial interval standard deviation in days",
			Value: domain.DefaultSerialIntervalSD,
		},
		&cli.FloatFlag{
			Name:  minDenomFlag,
			Usage: "Minimum infection pressure for an R_t estimate",
			Value: domain.DefaultMinDenominator,
		},
	}
}

func inputFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:     inputFlag,
			Aliases:  []string{"i"},
			Usage:    "Path to the observation dataset (.csv or .jsonl)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  asOfFlag,
			Usage: "Ignore observations after this date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  regionFlag,
			Usage: "Restrict output to one region",
		},
	}, modelFlags()...)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "indicatorctl",
		Version: version,
		Usage:   "Compute flu-surveillance indicators from a local dataset",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugFlag,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&cli.StringFlag{
				Name:  formatFlag,
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool(debugFlag) {
				initLogging(true)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "snapshot",
				Usage:  "Print national and regional indicators",
				Flags:  inputFlags(),
				Action: cmdSnapshot,
			},
			{
				Name:   "rt",
				Usage:  "Print the full R_t series per region",
				Flags:  inputFlags(),
				Action: cmdRt,
			},
			{
				Name:  "params",
				Usage: "Print the effective model parameters",
				Flags: modelFlags(),
				Action: func(_ context.Context, cmd *cli.Command) error {
					p, err := paramsFromFlags(cmd)
					if err != nil {
						return err
					}
					return encode(cmd.Root().Writer, cmd.String(formatFlag), p)
				},
			},
		},
	}
}

func cmdSnapshot(_ context.Context, cmd *cli.Command) error {
	table, p, err := loadInput(cmd)
	if err != nil {
		return err
	}

	snap := domain.ComputeSnapshot(table, p)
	slog.Debug("snapshot computed", "rows", len(table), "regions", len(snap.Regions), "granularity", snap.Granularity)

	if region := cmd.String(regionFlag); region != "" {
		r, ok := snap.Region(region)
		if !ok {
			return fmt.Errorf("region %q not found", region)
		}
		snap.Regions = []domain.RegionIndicators{r}
	}
	return encode(cmd.Root().Writer, cmd.String(formatFlag), snap)
}

// rtPoint is one dated R_t estimate; NaN encodes as null.
type rtPoint struct {
	Date string       `json:"date" yaml:"date"`
	Rt   domain.Value `json:"rt" yaml:"rt"`
}

type rtSeries struct {
	Region string    `json:"region" yaml:"region"`
	Points []rtPoint `json:"points" yaml:"points"`
}

func cmdRt(_ context.Context, cmd *cli.Command) error {
	table, p, err := loadInput(cmd)
	if err != nil {
		return err
	}

	series := rtOutput(table, p, cmd.String(regionFlag))
	if len(series) == 0 {
		return errors.New("no R_t series: dataset has no incidence column or matching region")
	}
	return encode(cmd.Root().Writer, cmd.String(formatFlag), series)
}

func rtOutput(table domain.Table, p domain.Params, region string) []rtSeries {
	var out []rtSeries
	for _, s := range domain.RtByRegion(table, p, domain.InferGranularity(table)) {
		if region != "" && s.Region != region {
			continue
		}
		points := make([]rtPoint, len(s.Rt))
		for i := range s.Rt {
			points[i] = rtPoint{Date: s.Dates[i], Rt: domain.Value(s.Rt[i])}
		}
		out = append(out, rtSeries{Region: s.Region, Points: points})
	}
	return out
}

func loadInput(cmd *cli.Command) (domain.Table, domain.Params, error) {
	p, err := paramsFromFlags(cmd)
	if err != nil {
		return nil, p, err
	}

	table, err := dataset.ReadFile(cmd.String(inputFlag))
	if err != nil {
		return nil, p, fmt.Errorf("reading dataset: %w", err)
	}

	if s := cmd.String(asOfFlag); s != "" {
		cutoff, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, p, fmt.Errorf("invalid --%s %q: %w", asOfFlag, s, err)
		}
		table = table.AsOf(cutoff)
	}
	return table, p, nil
}

// paramsFromFlags overlays the serial-interval flags on the default params
// and rejects combinations the engine would silently turn into NaN.
func paramsFromFlags(cmd *cli.Command) (domain.Params, error) {
	p := domain.DefaultParams()
	p.SerialInterval.Horizon = int(cmd.Int(siHorizonFlag))
	p.SerialInterval.Mean = cmd.Float(siMeanFlag)
	p.SerialInterval.SD = cmd.Float(siSDFlag)
	p.MinDenominator = cmd.Float(minDenomFlag)

	if _, err := domain.NewSerialIntervalFromParams(p.SerialInterval); err != nil {
		return p, err
	}
	if !(p.MinDenominator > 0) {
		return p, fmt.Errorf("--%s must be positive", minDenomFlag)
	}
	return p, nil
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML, "yml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case formatJSON, "":
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
