package engine

import "sort"

// Cohort groups customers that started paying in the same month and tracks
// their retention over the relative periods that follow.
type Cohort struct {
	Month          string         `json:"month"`
	Size           int            `json:"size"`
	InitialRevenue float64        `json:"initialRevenue"`
	Periods        []CohortPeriod `json:"periods"`
}

// CohortPeriod is one relative period of a cohort, from the cohort month
// (period 0) up to the latest axis month.
type CohortPeriod struct {
	Period        int     `json:"period"`
	Month         string  `json:"month"`
	RetainedCount int     `json:"retainedCount"`
	PeriodRevenue float64 `json:"periodRevenue"`
	RetentionRate float64 `json:"retentionRate"`
	RevenueRate   float64 `json:"revenueRate"`
}

// Cohorts groups customers by acquisition month and computes retention and
// revenue-retention series per cohort, in ascending month order.
//
// A customer's acquisition month is the first axis month with nonzero
// normalized revenue. Explicit start dates on the record deliberately play no
// part: a start date with a revenue gap would place the customer in a cohort
// whose numbers it never contributed to. Customers with no revenue at all
// belong to no cohort.
func (m *Matrix) Cohorts() []Cohort {
	members := make(map[string][]int)
	for ci := range m.customers {
		for mi := range m.months {
			if m.amounts[ci][mi] > 0 {
				key := m.months[mi]
				members[key] = append(members[key], ci)
				break
			}
		}
	}

	cohortMonths := make([]string, 0, len(members))
	for key := range members {
		cohortMonths = append(cohortMonths, key)
	}
	sort.Strings(cohortMonths)

	cohorts := make([]Cohort, 0, len(cohortMonths))
	for _, month := range cohortMonths {
		cohorts = append(cohorts, m.buildCohort(month, members[month]))
	}

	return cohorts
}

// buildCohort computes the retention series for one cohort. A cohort month
// past the end of the axis yields an empty placeholder: zero initial revenue
// and no periods.
func (m *Matrix) buildCohort(month string, members []int) Cohort {
	cohort := Cohort{
		Month:   month,
		Size:    len(members),
		Periods: []CohortPeriod{},
	}

	start, ok := m.monthIndex[month]
	if !ok || start > len(m.months)-1 {
		return cohort
	}

	for _, ci := range members {
		cohort.InitialRevenue += m.amounts[ci][start]
	}

	for i := start; i < len(m.months); i++ {
		period := CohortPeriod{
			Period: i - start,
			Month:  m.months[i],
		}

		for _, ci := range members {
			amount := m.amounts[ci][i]
			period.PeriodRevenue += amount
			if amount > 0 {
				period.RetainedCount++
			}
		}

		if cohort.Size > 0 {
			period.RetentionRate = float64(period.RetainedCount) / float64(cohort.Size) * 100
		}

		switch {
		case period.Period == 0:
			// Period 0 is 100% by definition
			period.RevenueRate = 100
		case cohort.InitialRevenue > 0:
			period.RevenueRate = period.PeriodRevenue / cohort.InitialRevenue * 100
		}

		cohort.Periods = append(cohort.Periods, period)
	}

	return cohort
}
