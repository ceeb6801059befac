package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row builds a revenue map for a contiguous run of months starting at the
// given "YYYY-MM" key, one value per month.
func row(start string, values ...any) map[string]any {
	year, month, ok := parseMonthKey(start)
	if !ok {
		panic("bad month key " + start)
	}

	revenue := make(map[string]any, len(values))
	key := start
	for _, v := range values {
		revenue[key] = v
		key = nextMonthKey(year, month)
		year, month, _ = parseMonthKey(key)
	}
	return revenue
}

func mustMatrix(t *testing.T, customers []CustomerRecord) *Matrix {
	t.Helper()
	m, err := NewMatrix(customers)
	require.NoError(t, err)
	return m
}

func TestNewMatrixBuildsSortedAxis(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Acme", Revenue: row("2024-01", 100, 200, 300)},
		{Name: "Globex", Revenue: row("2024-01", 0, 0, 50)},
	})

	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, m.Months())
	assert.Equal(t, 100.0, m.Amount(0, 0))
	assert.Equal(t, 50.0, m.Amount(1, 2))
}

func TestNewMatrixAxisCrossesYearBoundary(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Acme", Revenue: row("2023-11", 100, 100, 100, 100)},
	})

	assert.Equal(t, []string{"2023-11", "2023-12", "2024-01", "2024-02"}, m.Months())
}

func TestNewMatrixRejectsAxisGap(t *testing.T) {
	_, err := NewMatrix([]CustomerRecord{
		{Name: "Acme", Revenue: map[string]any{"2024-01": 100, "2024-03": 100}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "period axis gap")
}

func TestNewMatrixRejectsInvalidMonthKey(t *testing.T) {
	tests := []string{"2024-13", "2024-00", "2024/01", "Jan-24", "2024-1"}

	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := NewMatrix([]CustomerRecord{
				{Name: "Acme", Revenue: map[string]any{key: 100}},
			})
			require.Error(t, err)
		})
	}
}

func TestNewMatrixRejectsDuplicateCustomer(t *testing.T) {
	_, err := NewMatrix([]CustomerRecord{
		{Name: "Acme", Revenue: row("2024-01", 100)},
		{Name: "Acme", Revenue: row("2024-01", 200)},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate customer")
}

func TestNewMatrixRejectsDivergingMonthSets(t *testing.T) {
	_, err := NewMatrix([]CustomerRecord{
		{Name: "Acme", Revenue: row("2024-01", 100, 200)},
		{Name: "Globex", Revenue: row("2024-01", 100)},
	})

	require.Error(t, err)
}

func TestNewMatrixCollectsCellIssues(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Acme", Revenue: row("2024-01", "garbled", "$100", "N/A")},
	})

	require.Len(t, m.Issues(), 1)
	issue := m.Issues()[0]
	assert.Equal(t, "Acme", issue.Customer)
	assert.Equal(t, "2024-01", issue.Month)
	assert.Equal(t, "garbled", issue.Raw)

	// The bad cell still contributes zero revenue
	assert.Equal(t, 0.0, m.Amount(0, 0))
	assert.Equal(t, 100.0, m.Amount(0, 1))
}

func TestNewMatrixEmpty(t *testing.T) {
	m, err := NewMatrix(nil)
	require.NoError(t, err)

	assert.Empty(t, m.Months())
	assert.Empty(t, m.MonthlyMetrics())
	assert.Empty(t, m.CustomerSummaries())
	assert.Empty(t, m.Cohorts())
}
