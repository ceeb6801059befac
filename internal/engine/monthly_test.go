package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyMetricsBasicSeries(t *testing.T) {
	// Customer A pays steadily, customer B lands in the third month
	m := mustMatrix(t, []CustomerRecord{
		{Name: "A", Revenue: row("2024-01", 1000, 1000, 1000)},
		{Name: "B", Revenue: row("2024-01", 0, 0, 1000)},
	})

	metrics := m.MonthlyMetrics()
	require.Len(t, metrics, 3)

	jan, feb, mar := metrics[0], metrics[1], metrics[2]

	assert.Equal(t, "2024-01", jan.Date)
	assert.Equal(t, 1000.0, jan.MRR)
	assert.Equal(t, 12000.0, jan.ARR)
	assert.Equal(t, 1, jan.ActiveCustomers)
	assert.Equal(t, 12000.0, jan.ACV)

	// First month has no comparison period
	assert.Nil(t, jan.NetNewRevenue)
	assert.Nil(t, jan.NRR)
	assert.Nil(t, jan.GrowthRate)

	require.NotNil(t, feb.NetNewRevenue)
	assert.Equal(t, 0.0, *feb.NetNewRevenue)
	require.NotNil(t, feb.NRR)
	assert.Equal(t, 100.0, *feb.NRR)

	assert.Equal(t, 2000.0, mar.MRR)
	assert.Equal(t, 24000.0, mar.ARR)
	assert.Equal(t, 2, mar.ActiveCustomers)
	assert.Equal(t, 12000.0, mar.ACV)

	// B's landing is net-new, annualized
	require.NotNil(t, mar.NetNewRevenue)
	assert.Equal(t, 12000.0, *mar.NetNewRevenue)

	// Reference cohort is {A}: only A had revenue in February, so B's
	// arrival does not inflate NRR
	require.NotNil(t, mar.NRR)
	assert.Equal(t, 100.0, *mar.NRR)

	// Growth needs three months of history
	assert.Nil(t, mar.GrowthRate)
}

func TestMonthlyMetricsGrowthRate(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "A", Revenue: row("2024-01", 1000, 1000, 1000, 1200)},
	})

	metrics := m.MonthlyMetrics()
	require.Len(t, metrics, 4)

	assert.Nil(t, metrics[2].GrowthRate)

	// April vs January: 14400 ARR vs 12000 ARR
	require.NotNil(t, metrics[3].GrowthRate)
	assert.InDelta(t, 20.0, *metrics[3].GrowthRate, 1e-9)
}

func TestMonthlyMetricsGrowthRateZeroBaseline(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "A", Revenue: row("2024-01", 0, 0, 0, 1000)},
	})

	metrics := m.MonthlyMetrics()

	// Baseline ARR is 0: growth degrades to 0 instead of dividing by zero
	require.NotNil(t, metrics[3].GrowthRate)
	assert.Equal(t, 0.0, *metrics[3].GrowthRate)
}

func TestMonthlyMetricsNRRWithChurnAndExpansion(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Expander", Revenue: row("2024-01", 1000, 1200)},
		{Name: "Churner", Revenue: row("2024-01", 500, 0)},
		{Name: "NewLogo", Revenue: row("2024-01", 0, 800)},
	})

	metrics := m.MonthlyMetrics()
	feb := metrics[1]

	// Reference cohort is {Expander, Churner}: (1200+0)/(1000+500) = 80%.
	// NewLogo is excluded from both sides of the ratio.
	require.NotNil(t, feb.NRR)
	assert.InDelta(t, 80.0, *feb.NRR, 1e-9)

	// Net new counts Expander's +200 and NewLogo's +800, annualized
	require.NotNil(t, feb.NetNewRevenue)
	assert.Equal(t, 12000.0, *feb.NetNewRevenue)
}

func TestMonthlyMetricsNRRDefaultsWithoutPriorRevenue(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "A", Revenue: row("2024-01", 0, 1000)},
	})

	metrics := m.MonthlyMetrics()

	// Nobody had revenue in January, so there is nothing to retain:
	// the ratio reads as full retention
	require.NotNil(t, metrics[1].NRR)
	assert.Equal(t, 100.0, *metrics[1].NRR)
}

func TestMonthlyMetricsACVWithoutActiveCustomers(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "A", Revenue: row("2024-01", 0)},
	})

	metrics := m.MonthlyMetrics()
	assert.Equal(t, 0, metrics[0].ActiveCustomers)
	assert.Equal(t, 0.0, metrics[0].ACV)
}

func TestMonthlyMetricsContractionIgnoredByNetNew(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "Shrinker", Revenue: row("2024-01", 1000, 400)},
		{Name: "Grower", Revenue: row("2024-01", 100, 300)},
	})

	metrics := m.MonthlyMetrics()

	// Only Grower's +200 counts; Shrinker's -600 is ignored
	require.NotNil(t, metrics[1].NetNewRevenue)
	assert.Equal(t, 2400.0, *metrics[1].NetNewRevenue)
}
