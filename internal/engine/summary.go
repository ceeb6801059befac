package engine

// Customer lifecycle status
const (
	StatusActive  = "Active"
	StatusChurned = "Churned"
)

// Sentinels used in summary date fields
const (
	dateUnknown     = "N/A"
	dateStillActive = "--"
)

// CustomerSummary is the lifetime/period summary for one customer.
type CustomerSummary struct {
	Customer           string  `json:"customer"`
	CurrentMRR         float64 `json:"currentMrr"`
	LastQuarterMRR     float64 `json:"lastQuarterMrr"`
	ARR                float64 `json:"arr"`
	QuarterlyChangePct float64 `json:"quarterlyChangePct"`
	Status             string  `json:"status"`
	StartDate          string  `json:"startDate"`
	EndDate            string  `json:"endDate"`
	LTV                float64 `json:"ltv"`
}

// CustomerSummaries builds one summary per customer, in input order.
//
// Current MRR is taken from the last axis month, last-quarter MRR from three
// months before the end (falling back to the last month on short axes).
// Start and end dates are inferred from the first and last months with
// nonzero revenue; explicit dates on the record are not trusted here.
func (m *Matrix) CustomerSummaries() []CustomerSummary {
	last := len(m.months) - 1
	lastQuarter := last
	if len(m.months) >= 4 {
		lastQuarter = last - 3
	}

	summaries := make([]CustomerSummary, 0, len(m.customers))

	for ci, c := range m.customers {
		s := CustomerSummary{
			Customer:  c.Name,
			StartDate: dateUnknown,
			EndDate:   dateUnknown,
		}

		if last >= 0 {
			s.CurrentMRR = m.amounts[ci][last]
			s.LastQuarterMRR = m.amounts[ci][lastQuarter]
		}
		s.ARR = s.CurrentMRR * 12

		if s.LastQuarterMRR != 0 {
			s.QuarterlyChangePct = (s.CurrentMRR - s.LastQuarterMRR) / s.LastQuarterMRR * 100
		}

		if s.CurrentMRR > 0 {
			s.Status = StatusActive
		} else {
			s.Status = StatusChurned
		}

		firstActive, lastActive := -1, -1
		for mi := range m.months {
			amount := m.amounts[ci][mi]
			s.LTV += amount
			if amount > 0 {
				if firstActive < 0 {
					firstActive = mi
				}
				lastActive = mi
			}
		}

		if firstActive >= 0 {
			s.StartDate = m.months[firstActive]
		}
		if s.CurrentMRR > 0 {
			s.EndDate = dateStillActive
		} else if lastActive >= 0 {
			s.EndDate = m.months[lastActive]
		}

		summaries = append(summaries, s)
	}

	return summaries
}
