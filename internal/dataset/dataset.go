// Package dataset reads and writes observation tables as CSV or JSON lines,
// using the same column names as the collector's Kafka messages.
package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tonytillet/lumen-indicators/internal/domain"
)

// Columns is the CSV header written by WriteCSV.
var Columns = []string{
	"region",
	"date",
	"cas_sentinelles",
	"urgences_grippe",
	"densite",
	"population_totale",
	"vaccination_2024",
	"google_trends_grippe",
	"wiki_grippe_views",
}

// ErrMissingColumn is returned when a CSV header lacks region or date.
var ErrMissingColumn = errors.New("missing required column")

// ReadFile loads a table from a .csv or .jsonl/.json file.
func ReadFile(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".json", ".ndjson":
		return ReadJSONLines(f)
	default:
		return ReadCSV(f)
	}
}

// ReadCSV parses a header-led CSV. Columns are matched by name; unknown
// columns are ignored and absent ones stay nil on every row.
func ReadCSV(r io.Reader) (domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range []string{"region", "date"} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var table domain.Table
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		rec := domain.RawObservationRecord{
			Region:          get(row, colIdx, "region"),
			Date:            get(row, colIdx, "date"),
			SentinelCases:   num(row, colIdx, "cas_sentinelles"),
			ERVisits:        num(row, colIdx, "urgences_grippe"),
			Density:         num(row, colIdx, "densite"),
			PopulationTotal: num(row, colIdx, "population_totale"),
			Vaccination2024: num(row, colIdx, "vaccination_2024"),
			VaccinationRate: num(row, colIdx, "vaccination_rate"),
			TrendsSignal:    num(row, colIdx, "google_trends_grippe"),
			WikiSignal:      num(row, colIdx, "wiki_grippe_views"),
		}
		obs, err := rec.Observation()
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		table = append(table, obs)
	}
	return table, nil
}

// WriteCSV writes t with the Columns header. Missing values are left empty.
func WriteCSV(w io.Writer, t domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, o := range t {
		row := []string{
			o.Region,
			o.Date.Format(time.DateOnly),
			formatFloat(o.SentinelCases),
			formatFloat(o.ERVisits),
			formatFloat(o.Density),
			formatFloat(o.PopulationTotal),
			formatFloat(o.VaccinationRate),
			formatFloat(o.TrendsSignal),
			formatFloat(o.WikiSignal),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadJSONLines parses one RawObservationRecord per line. Blank lines are skipped.
func ReadJSONLines(r io.Reader) (domain.Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var table domain.Table
	for line := 1; scanner.Scan(); line++ {
		data := strings.TrimSpace(scanner.Text())
		if data == "" {
			continue
		}
		obs, err := domain.ParseRawEvent(domain.RawEvent{Value: []byte(data)})
		if err != nil {
			return nil, fmt.Errorf("jsonl line %d: %w", line, err)
		}
		table = append(table, obs)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	return table, nil
}

// WriteJSONLines writes one RawObservationRecord per observation, the same
// payload the collector publishes to Kafka.
func WriteJSONLines(w io.Writer, t domain.Table) error {
	enc := json.NewEncoder(w)
	for _, o := range t {
		if err := enc.Encode(Record(o)); err != nil {
			return err
		}
	}
	return nil
}

// Record converts an observation back to its wire form.
func Record(o domain.Observation) domain.RawObservationRecord {
	return domain.RawObservationRecord{
		Region:          o.Region,
		Date:            o.Date.Format(time.DateOnly),
		SentinelCases:   o.SentinelCases,
		ERVisits:        o.ERVisits,
		Density:         o.Density,
		PopulationTotal: o.PopulationTotal,
		Vaccination2024: o.VaccinationRate,
		TrendsSignal:    o.TrendsSignal,
		WikiSignal:      o.WikiSignal,
	}
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func num(row []string, idx map[string]int, col string) *float64 {
	return domain.ParseOptionalFloat(get(row, idx, col))
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
