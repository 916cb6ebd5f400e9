// Command genmock generates a deterministic synthetic flu-season dataset and
// the indicator snapshot the service is expected to publish for it. Fixtures
// are computed with the real domain package so they match pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/flu_observations.csv \
//	  -snapshot-out data/mock/flu_snapshot.json \
//	  -days 120 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tonytillet/lumen-indicators/internal/dataset"
	"github.com/tonytillet/lumen-indicators/internal/domain"
)

// computedAt is the fixed snapshot timestamp, so fixtures are reproducible.
var computedAt = time.Date(2024, time.March, 1, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for observations (.csv or .jsonl)")
	snapshotOut := flag.String("snapshot-out", "", "output path for the expected snapshot JSON")
	start := flag.String("start", "2023-11-01", "first observation date (YYYY-MM-DD)")
	days := flag.Int("days", 120, "number of days to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	weekly := flag.Bool("weekly", false, "emit one row per region per week")
	regions := flag.String("regions", strings.Join(defaultRegions, ","), "comma-separated region names")
	flag.Parse()

	if *out == "" || *snapshotOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -snapshot-out")
	}

	startDate, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	gen := generator{
		regions: splitRegions(*regions),
		start:   startDate,
		days:    *days,
		seed:    *seed,
		weekly:  *weekly,
	}
	table := gen.table()
	log.Printf("generated %d observations for %d regions", len(table), len(gen.regions))

	if err := writeTable(*out, table); err != nil {
		return fmt.Errorf("writing observations: %w", err)
	}
	log.Printf("wrote observations: %s", *out)

	domain.SetClock(clockwork.NewFakeClockAt(computedAt))
	defer domain.SetClock(nil)

	snap := domain.ComputeSnapshot(table, domain.DefaultParams())
	if err := writeJSON(*snapshotOut, snap); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	log.Printf("wrote snapshot: %s", *snapshotOut)

	printStats(snap)
	return nil
}

func splitRegions(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func writeTable(path string, t domain.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		err = dataset.WriteJSONLines(f, t)
	default:
		err = dataset.WriteCSV(f, t)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(snap domain.Snapshot) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("As of: %s (%s, incidence=%s)\n", snap.AsOf.Format(time.DateOnly), snap.Granularity, snap.IncidenceSource)
	fmt.Printf("National: rt=%.4f sc=%.4f severity=%.4f lumen=%.2f\n",
		snap.National.Rt, snap.National.SC, snap.National.Severity, snap.National.Lumen)
	for _, r := range snap.Regions {
		fmt.Printf("  %-28s rt=%.4f sc=%.4f severity=%.4f lumen=%.2f\n",
			r.Region, r.Rt, r.SC, r.Severity, r.Lumen)
	}
}
