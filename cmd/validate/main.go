// Command validate performs end-to-end integrity checks on a mock observation
// dataset and the indicator snapshot fixture generated for it. It verifies the
// dataset rows, recomputes the snapshot with the domain package, and checks
// the indicator ranges consumers rely on.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input data/mock/flu_observations.csv \
//	  -snapshot data/mock/flu_snapshot.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/tonytillet/lumen-indicators/internal/dataset"
	"github.com/tonytillet/lumen-indicators/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	input := flag.String("input", "", "path to the observation dataset (.csv or .jsonl)")
	snapshotPath := flag.String("snapshot", "", "path to the expected snapshot JSON")
	flag.Parse()

	if *input == "" || *snapshotPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*input, *snapshotPath); code != 0 {
		os.Exit(code)
	}
}

func run(inputPath, snapshotPath string) int {
	fmt.Println("=== Flu Indicator Integrity Validation ===")
	fmt.Println()

	table, err := dataset.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	expected, err := loadSnapshot(snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load snapshot: %v\n", err)
		return 1
	}

	// Recompute with the fixture's own timestamp so the two snapshots compare whole.
	domain.SetClock(clockwork.NewFakeClockAt(expected.ComputedAt))
	defer domain.SetClock(nil)
	actual := domain.ComputeSnapshot(table, domain.DefaultParams())

	phases := []*phase{
		validateDataset(table),
		validateReproduction(expected, actual),
		validateRanges(expected),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d observations, %d regions\n", len(table), len(expected.Regions))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadSnapshot(path string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}
