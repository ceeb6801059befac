package engine

import (
	"fmt"
	"sort"
	"strconv"
)

// CustomerRecord is one row of the revenue matrix: a customer and its raw
// monthly cell values keyed by "YYYY-MM". Cells may hold numbers, formatted
// currency strings, "N/A" or blanks. Records are owned by the caller and are
// never mutated by the engine.
type CustomerRecord struct {
	Name      string
	StartDate string // optional explicit start date, informational only
	EndDate   string // optional explicit end date, informational only
	Revenue   map[string]any
}

// CellIssue reports a raw cell that was neither a parseable amount nor a
// recognized blank sentinel. The cell still contributes zero revenue; issues
// exist so callers can surface suspect input without changing the numbers.
type CellIssue struct {
	Customer string `json:"customer"`
	Month    string `json:"month"`
	Raw      string `json:"raw"`
}

// Matrix is the validated customers-by-months revenue matrix. The month keys
// form a contiguous ascending period axis shared by every customer. Every
// cell is normalized exactly once at construction; all downstream metrics
// read the same normalized amounts.
type Matrix struct {
	customers  []CustomerRecord
	months     []string
	monthIndex map[string]int
	amounts    [][]float64 // [customer][period-axis index]
	issues     []CellIssue
}

// NewMatrix validates the records and builds the matrix. It fails on
// duplicate customer names, diverging month-key sets and gaps in the period
// axis. Unparseable cells are not an error; they degrade to zero and are
// recorded as issues.
func NewMatrix(customers []CustomerRecord) (*Matrix, error) {
	m := &Matrix{customers: customers}

	seen := make(map[string]bool, len(customers))
	for _, c := range customers {
		if c.Name == "" {
			return nil, fmt.Errorf("customer with empty name")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate customer %q", c.Name)
		}
		seen[c.Name] = true
	}

	if err := m.buildAxis(); err != nil {
		return nil, err
	}

	m.normalizeCells()
	return m, nil
}

// buildAxis collects the shared month keys, sorts them and verifies the
// contiguity invariant. Offsets like i-1 and i-3 are positional, so a gap in
// the axis would silently compare the wrong months.
func (m *Matrix) buildAxis() error {
	keys := make(map[string]bool)
	for _, c := range m.customers {
		for key := range c.Revenue {
			keys[key] = true
		}
	}

	m.months = make([]string, 0, len(keys))
	for key := range keys {
		if _, _, ok := parseMonthKey(key); !ok {
			return fmt.Errorf("invalid month key %q", key)
		}
		m.months = append(m.months, key)
	}
	// Zero-padded YYYY-MM sorts chronologically
	sort.Strings(m.months)

	for i := 1; i < len(m.months); i++ {
		y, mo, _ := parseMonthKey(m.months[i-1])
		if nextMonthKey(y, mo) != m.months[i] {
			return fmt.Errorf("period axis gap between %s and %s", m.months[i-1], m.months[i])
		}
	}

	for _, c := range m.customers {
		if len(c.Revenue) != len(m.months) {
			return fmt.Errorf("customer %q covers %d months, axis has %d", c.Name, len(c.Revenue), len(m.months))
		}
	}

	m.monthIndex = make(map[string]int, len(m.months))
	for i, key := range m.months {
		m.monthIndex[key] = i
	}

	return nil
}

// normalizeCells resolves every raw cell to an amount once, recording issues
// for unrecognized values.
func (m *Matrix) normalizeCells() {
	m.amounts = make([][]float64, len(m.customers))
	for ci, c := range m.customers {
		row := make([]float64, len(m.months))
		for mi, key := range m.months {
			raw := c.Revenue[key]
			amount, ok := ParseCell(raw)
			if !ok {
				m.issues = append(m.issues, CellIssue{
					Customer: c.Name,
					Month:    key,
					Raw:      fmt.Sprintf("%v", raw),
				})
			}
			row[mi] = amount
		}
		m.amounts[ci] = row
	}
}

// Months returns the period axis in ascending order
func (m *Matrix) Months() []string {
	return m.months
}

// Customers returns the customer records in input order
func (m *Matrix) Customers() []CustomerRecord {
	return m.customers
}

// Amount returns the normalized amount for a customer and period-axis index
func (m *Matrix) Amount(customer, month int) float64 {
	return m.amounts[customer][month]
}

// Issues returns the cell parse issues collected at construction
func (m *Matrix) Issues() []CellIssue {
	return m.issues
}

// MonthRange returns the contiguous sequence of month keys from first to
// last inclusive. Collaborators assembling a matrix from sparse sources use
// it to fill the axis the engine requires.
func MonthRange(first, last string) ([]string, error) {
	year, month, ok := parseMonthKey(first)
	if !ok {
		return nil, fmt.Errorf("invalid month key %q", first)
	}
	if _, _, ok := parseMonthKey(last); !ok {
		return nil, fmt.Errorf("invalid month key %q", last)
	}
	if last < first {
		return nil, fmt.Errorf("month range %s..%s is reversed", first, last)
	}

	months := []string{first}
	key := first
	for key != last {
		key = nextMonthKey(year, month)
		year, month, _ = parseMonthKey(key)
		months = append(months, key)
	}
	return months, nil
}

// parseMonthKey parses a "YYYY-MM" key into year and month
func parseMonthKey(key string) (year, month int, ok bool) {
	if len(key) != 7 || key[4] != '-' {
		return 0, 0, false
	}
	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(key[5:])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// nextMonthKey returns the key of the following calendar month
func nextMonthKey(year, month int) string {
	month++
	if month > 12 {
		month = 1
		year++
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}
