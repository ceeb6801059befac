// Package ingest parses revenue spreadsheet exports into the engine's
// matrix shape. It owns column discovery and row filtering; cell values are
// passed through raw so the engine's normalizer stays the single authority
// on amounts.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/minsuk/revpulse/internal/engine"
)

var monthColumn = regexp.MustCompile(`^\d{4}-\d{2}$`)

// layout maps spreadsheet columns to their meaning
type layout struct {
	customer  int
	startDate int
	endDate   int
	months    map[int]string // column index -> month key
}

// Parse reads a CSV revenue export and builds a validated matrix.
//
// The header row must contain a customer identity column and one or more
// YYYY-MM month columns; start/end date columns are optional. Rows with an
// empty identity or a "Totals" identity are aggregate rows and are skipped.
func Parse(r io.Reader) (*engine.Matrix, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	l, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var records []engine.CustomerRecord
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		name := strings.TrimSpace(fields[l.customer])
		if name == "" || strings.EqualFold(name, "totals") {
			continue
		}

		record := engine.CustomerRecord{
			Name:    name,
			Revenue: make(map[string]any, len(l.months)),
		}
		if l.startDate >= 0 {
			record.StartDate = strings.TrimSpace(fields[l.startDate])
		}
		if l.endDate >= 0 {
			record.EndDate = strings.TrimSpace(fields[l.endDate])
		}
		for col, key := range l.months {
			record.Revenue[key] = fields[col]
		}

		records = append(records, record)
	}

	matrix, err := engine.NewMatrix(records)
	if err != nil {
		return nil, fmt.Errorf("invalid revenue matrix: %w", err)
	}
	return matrix, nil
}

// ParseFile opens and parses a CSV revenue export
func ParseFile(path string) (*engine.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// parseHeader locates the identity, date and month columns
func parseHeader(header []string) (layout, error) {
	l := layout{
		customer:  -1,
		startDate: -1,
		endDate:   -1,
		months:    make(map[int]string),
	}

	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))

		if monthColumn.MatchString(name) {
			l.months[i] = name
			continue
		}

		switch strings.ToLower(name) {
		case "customer", "customer name", "name", "account":
			if l.customer < 0 {
				l.customer = i
			}
		case "start date", "start":
			l.startDate = i
		case "end date", "end", "churn date":
			l.endDate = i
		}
	}

	if l.customer < 0 {
		return l, fmt.Errorf("no customer column in header")
	}
	if len(l.months) == 0 {
		return l, fmt.Errorf("no YYYY-MM month columns in header")
	}

	return l, nil
}
