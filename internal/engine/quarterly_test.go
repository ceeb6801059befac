package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachQuarterlyOnQuarterEndsOnly(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "A", Revenue: row("2024-01", 1000, 1000, 1000, 1000, 1000, 1000)},
	})

	metrics := m.MonthlyMetrics()
	m.AttachQuarterly(metrics)

	// Only March and June are quarter ends
	assert.Nil(t, metrics[0].Quarterly)
	assert.Nil(t, metrics[1].Quarterly)
	assert.NotNil(t, metrics[2].Quarterly)
	assert.Nil(t, metrics[3].Quarterly)
	assert.Nil(t, metrics[4].Quarterly)
	assert.NotNil(t, metrics[5].Quarterly)

	assert.Equal(t, "Q1 '24", metrics[2].Quarterly.Label)
	assert.Equal(t, "Q2 '24", metrics[5].Quarterly.Label)
}

func TestAttachQuarterlySnapshotAndComparison(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "A", Revenue: row("2024-01", 1000, 1000, 1000, 1000, 1000, 1000)},
		{Name: "B", Revenue: row("2024-01", 0, 0, 0, 500, 500, 500)},
	})

	metrics := m.MonthlyMetrics()
	m.AttachQuarterly(metrics)

	jun := metrics[5].Quarterly
	require.NotNil(t, jun)

	// Quarter-end snapshot, not a quarter sum
	assert.Equal(t, 1500.0, jun.MRR)
	assert.Equal(t, 18000.0, jun.ARR)
	assert.Equal(t, 2, jun.ActiveCustomers)
	assert.Equal(t, 9000.0, jun.ACV)

	// Compared against March (three index positions back)
	assert.InDelta(t, 50.0, jun.Growth, 1e-9)
	assert.Equal(t, 6000.0, jun.NetNew)

	// Reference cohort at March is {A}; A kept its 1000
	assert.Equal(t, 100.0, jun.NRR)
}

func TestAttachQuarterlyMissingBaseline(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "A", Revenue: row("2024-02", 1000, 2000)},
	})

	metrics := m.MonthlyMetrics()
	m.AttachQuarterly(metrics)

	mar := metrics[1].Quarterly
	require.NotNil(t, mar)

	// No month three back: baseline 0 for growth/net-new, full retention
	// for NRR
	assert.Equal(t, 0.0, mar.Growth)
	assert.Equal(t, 24000.0, mar.NetNew)
	assert.Equal(t, 100.0, mar.NRR)
}

func TestQuarterLabels(t *testing.T) {
	m := mustMatrix(t, []CustomerRecord{
		{Name: "A", Revenue: row("2023-10", 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100)},
	})

	metrics := m.MonthlyMetrics()
	m.AttachQuarterly(metrics)

	labels := map[string]string{}
	for _, metric := range metrics {
		if metric.Quarterly != nil {
			labels[metric.Date] = metric.Quarterly.Label
		}
	}

	assert.Equal(t, map[string]string{
		"2023-12": "Q4 '23",
		"2024-03": "Q1 '24",
		"2024-06": "Q2 '24",
		"2024-09": "Q3 '24",
	}, labels)
}
