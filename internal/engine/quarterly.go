package engine

import "fmt"

// QuarterlyMetric holds the quarter-end rollup attached to the MonthlyMetric
// of a March, June, September or December month. Values are quarter-end
// snapshots of the monthly series, not quarter sums.
type QuarterlyMetric struct {
	MRR             float64 `json:"quarterlyMrr"`
	ARR             float64 `json:"quarterlyArr"`
	Growth          float64 `json:"quarterlyGrowth"`
	NRR             float64 `json:"quarterlyNrr"`
	NetNew          float64 `json:"quarterlyNetNew"`
	ACV             float64 `json:"quarterlyAcv"`
	ActiveCustomers int     `json:"quarterlyActiveCustomers"`
	Label           string  `json:"formattedQuarter"`
}

// AttachQuarterly fills the Quarterly field of every quarter-end entry in the
// monthly series. The comparison baseline is the entry three index positions
// back; when the axis starts less than a quarter before the entry, growth and
// net-new treat the baseline as 0 and NRR reads as full retention.
func (m *Matrix) AttachQuarterly(series []MonthlyMetric) {
	for i := range series {
		year, month, ok := parseMonthKey(m.months[i])
		if !ok || month%3 != 0 {
			continue
		}

		q := &QuarterlyMetric{
			MRR:             series[i].MRR,
			ARR:             series[i].ARR,
			ACV:             series[i].ACV,
			ActiveCustomers: series[i].ActiveCustomers,
			Label:           fmt.Sprintf("Q%d '%02d", (month+2)/3, year%100),
		}

		prevMRR := 0.0
		if i >= 3 {
			prevMRR = series[i-3].MRR
		}

		if prevMRR != 0 {
			q.Growth = (q.MRR - prevMRR) / prevMRR * 100
		}
		q.NetNew = (q.MRR - prevMRR) * 12

		if i >= 3 {
			q.NRR = m.retentionRatio(i, i-3)
		} else {
			q.NRR = 100
		}

		series[i].Quarterly = q
	}
}
