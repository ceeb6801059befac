package engine

// MonthlyMetric is one KPI record per period-axis month. Pointer fields are
// nil when the metric has no comparison period; they serialize as omitted.
type MonthlyMetric struct {
	Date            string           `json:"date"`
	MRR             float64          `json:"mrr"`
	ARR             float64          `json:"arr"`
	NetNewRevenue   *float64         `json:"netNewRevenue,omitempty"`
	GrowthRate      *float64         `json:"growthRate,omitempty"`
	NRR             *float64         `json:"nrr,omitempty"`
	ActiveCustomers int              `json:"activeCustomers"`
	ACV             float64          `json:"acv"`
	Quarterly       *QuarterlyMetric `json:"quarterly,omitempty"`
}

// MonthlyMetrics computes the KPI series, one record per period-axis month.
//
// Offsets are positional on the axis: net-new and NRR compare against the
// previous index, growth against three indexes back. The first month has no
// net-new or NRR, the first three months have no growth rate.
func (m *Matrix) MonthlyMetrics() []MonthlyMetric {
	metrics := make([]MonthlyMetric, 0, len(m.months))

	for i, month := range m.months {
		metric := MonthlyMetric{Date: month}

		var mrr float64
		active := 0
		for ci := range m.customers {
			amount := m.amounts[ci][i]
			mrr += amount
			if amount > 0 {
				active++
			}
		}

		metric.MRR = mrr
		metric.ARR = mrr * 12
		metric.ActiveCustomers = active
		if active > 0 {
			metric.ACV = metric.ARR / float64(active)
		}

		if i > 0 {
			// Net new: positive per-customer deltas only, annualized.
			// Contraction is ignored here; NRR captures it.
			var netNew float64
			for ci := range m.customers {
				delta := m.amounts[ci][i] - m.amounts[ci][i-1]
				if delta > 0 {
					netNew += delta
				}
			}
			netNew *= 12
			metric.NetNewRevenue = &netNew

			nrr := m.retentionRatio(i, i-1)
			metric.NRR = &nrr
		}

		if i >= 3 {
			var prevARR float64
			for ci := range m.customers {
				prevARR += m.amounts[ci][i-3]
			}
			prevARR *= 12

			growth := 0.0
			if prevARR != 0 {
				growth = (metric.ARR - prevARR) / prevARR * 100
			}
			metric.GrowthRate = &growth
		}

		metrics = append(metrics, metric)
	}

	return metrics
}

// retentionRatio computes net revenue retention between two axis indexes.
// The reference cohort is the set of customers with revenue in the reference
// month; the ratio compares their current revenue to their reference revenue,
// so new customers never inflate it and churned customers drag it down.
// Returns 100 when the reference cohort has no revenue.
func (m *Matrix) retentionRatio(cur, ref int) float64 {
	var curSum, refSum float64
	for ci := range m.customers {
		refAmount := m.amounts[ci][ref]
		if refAmount > 0 {
			refSum += refAmount
			curSum += m.amounts[ci][cur]
		}
	}

	if refSum == 0 {
		return 100
	}
	return curSum / refSum * 100
}
