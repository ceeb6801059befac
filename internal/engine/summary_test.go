package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerSummariesActiveCustomer(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Acme", Revenue: row("2024-01", 1000, 1000, 1100, 1100, 1200)},
	})

	summaries := m.CustomerSummaries()
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "Acme", s.Customer)
	assert.Equal(t, 1200.0, s.CurrentMRR)
	assert.Equal(t, 14400.0, s.ARR)

	// Last-quarter month is three back from the end: 2024-02
	assert.Equal(t, 1000.0, s.LastQuarterMRR)
	assert.InDelta(t, 20.0, s.QuarterlyChangePct, 1e-9)

	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, "2024-01", s.StartDate)
	assert.Equal(t, "--", s.EndDate)
	assert.Equal(t, 5400.0, s.LTV)
}

func TestCustomerSummariesChurnedCustomer(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Gone", Revenue: row("2024-01", 500, 500, 0, 0)},
	})

	s := m.CustomerSummaries()[0]

	assert.Equal(t, StatusChurned, s.Status)
	assert.Equal(t, 0.0, s.CurrentMRR)
	assert.Equal(t, 0.0, s.ARR)

	// End date is the last month with revenue
	assert.Equal(t, "2024-02", s.EndDate)
	assert.Equal(t, "2024-01", s.StartDate)
	assert.Equal(t, 1000.0, s.LTV)
}

func TestCustomerSummariesNoRevenueEver(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Ghost", Revenue: row("2024-01", 0, 0, 0)},
	})

	s := m.CustomerSummaries()[0]

	assert.Equal(t, StatusChurned, s.Status)
	assert.Equal(t, "N/A", s.StartDate)
	assert.Equal(t, "N/A", s.EndDate)
	assert.Equal(t, 0.0, s.LTV)
}

func TestCustomerSummariesShortAxisFallsBackToLastMonth(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Acme", Revenue: row("2024-01", 900, 1200)},
	})

	s := m.CustomerSummaries()[0]

	// Axis shorter than a quarter: last-quarter MRR falls back to the
	// current month, so the change is 0
	assert.Equal(t, 1200.0, s.CurrentMRR)
	assert.Equal(t, 1200.0, s.LastQuarterMRR)
	assert.Equal(t, 0.0, s.QuarterlyChangePct)
}

func TestCustomerSummariesZeroLastQuarterBaseline(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Fresh", Revenue: row("2024-01", 0, 0, 0, 0, 800)},
	})

	s := m.CustomerSummaries()[0]

	assert.Equal(t, 800.0, s.CurrentMRR)
	assert.Equal(t, 0.0, s.LastQuarterMRR)
	// Zero baseline degrades to 0 instead of dividing by zero
	assert.Equal(t, 0.0, s.QuarterlyChangePct)
	assert.Equal(t, "2024-05", s.StartDate)
}

func TestCustomerSummariesPreserveInputOrder(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Zeta", Revenue: row("2024-01", 100)},
		{Name: "Alpha", Revenue: row("2024-01", 200)},
	})

	summaries := m.CustomerSummaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "Zeta", summaries[0].Customer)
	assert.Equal(t, "Alpha", summaries[1].Customer)
}
