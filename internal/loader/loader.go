// Package loader turns UNHCR-style CSV extracts into a clean historical
// series. These files carry free-text preamble rows before the real
// header, inconsistent column names between export versions, and
// thousands-separated numbers, so the loader detects the header row and
// the target column instead of assuming a fixed layout.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"displacement-forecast/models"
)

const defaultColumnHint = "refugees"

// CSVLoader implements models.SeriesSource over a CSV file.
type CSVLoader struct {
	path         string
	targetColumn string // empty = auto-detect by defaultColumnHint
}

// NewCSV returns a loader for path. targetColumn may be empty, in which
// case the first column whose header mentions "refugees" is used.
func NewCSV(path, targetColumn string) *CSVLoader {
	return &CSVLoader{path: path, targetColumn: targetColumn}
}

// LoadSeries reads the file, locates header and target column, cleans the
// values and aggregates them per year, sorted ascending.
//
// Cleaning policy follows the original extract handling: values that do
// not parse as numbers count as zero rather than failing the row.
func (l *CSVLoader) LoadSeries() (models.HistoricalSeries, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", l.path, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	headerIndex := findHeaderRow(lines)
	if headerIndex < 0 {
		return nil, fmt.Errorf("loader: %s: no header row containing both %q and %q; file starts with: %s",
			l.path, "Year", "Country", preview(lines))
	}
	log.Debug().Int("line", headerIndex).Str("file", l.path).Msg("found header row")

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[headerIndex:], "\n")))
	reader.FieldsPerRecord = -1 // exports are occasionally ragged
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", l.path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("loader: %w: %s has a header but no data rows", models.ErrInsufficientData, l.path)
	}

	headers := records[0]
	yearIdx := columnIndex(headers, func(h string) bool { return strings.EqualFold(strings.TrimSpace(h), "year") })
	if yearIdx < 0 {
		return nil, fmt.Errorf("loader: %s: no Year column among %v", l.path, headers)
	}

	valueIdx := l.findTargetColumn(headers)
	if valueIdx < 0 {
		if l.targetColumn != "" {
			return nil, fmt.Errorf("loader: %s: no column named %q among %v", l.path, l.targetColumn, headers)
		}
		return nil, fmt.Errorf("loader: %s: no column mentioning %q among %v", l.path, defaultColumnHint, headers)
	}
	log.Info().Str("column", headers[valueIdx]).Msg("using column for analysis")

	totals := make(map[int]float64)
	for i, row := range records[1:] {
		if len(row) <= yearIdx || len(row) <= valueIdx {
			log.Warn().Int("row", headerIndex+i+2).Msg("skipping short row")
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		if err != nil {
			log.Warn().Int("row", headerIndex+i+2).Str("year", row[yearIdx]).Msg("skipping row with unparseable year")
			continue
		}
		totals[year] += cleanNumber(row[valueIdx])
	}
	if len(totals) == 0 {
		return nil, fmt.Errorf("loader: %w: %s yielded no usable rows", models.ErrInsufficientData, l.path)
	}

	years := make([]int, 0, len(totals))
	for year := range totals {
		years = append(years, year)
	}
	sort.Ints(years)

	series := make(models.HistoricalSeries, len(years))
	for i, year := range years {
		series[i] = models.Observation{Period: year, Value: totals[year]}
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("loader: %s: %w", l.path, err)
	}
	return series, nil
}

func (l *CSVLoader) findTargetColumn(headers []string) int {
	if l.targetColumn != "" {
		return columnIndex(headers, func(h string) bool {
			return strings.EqualFold(strings.TrimSpace(h), l.targetColumn)
		})
	}
	return columnIndex(headers, func(h string) bool {
		return strings.Contains(strings.ToLower(h), defaultColumnHint)
	})
}

func findHeaderRow(lines []string) int {
	for i, line := range lines {
		if strings.Contains(line, "Year") && strings.Contains(line, "Country") {
			return i
		}
	}
	return -1
}

func columnIndex(headers []string, match func(string) bool) int {
	for i, h := range headers {
		if match(h) {
			return i
		}
	}
	return -1
}

// cleanNumber parses a count that may carry thousands separators or
// surrounding whitespace. Anything unparseable counts as zero.
func cleanNumber(field string) float64 {
	cleaned := strings.TrimSpace(field)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

func preview(lines []string) string {
	n := 5
	if len(lines) < n {
		n = len(lines)
	}
	return strings.Join(lines[:n], " | ")
}
