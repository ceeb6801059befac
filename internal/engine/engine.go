// Package engine turns a per-customer, per-month revenue matrix into SaaS
// revenue KPIs: a monthly series with quarterly rollups, per-customer
// lifetime summaries and cohort retention tables.
//
// The engine is a pure function of the immutable Matrix: no I/O, no logging,
// no shared state. Malformed input never fails a computation; bad cells
// degrade to zero revenue and missing comparison periods degrade to absent
// metric fields.
package engine

import "time"

// Report bundles the artifacts of one engine run.
type Report struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Months      []MonthlyMetric   `json:"months"`
	Customers   []CustomerSummary `json:"customers"`
	Cohorts     []Cohort          `json:"cohorts"`
	Issues      []CellIssue       `json:"issues,omitempty"`
}

// Analyze runs every pass over the matrix. Output is deterministic: the same
// matrix yields identical metrics, summaries and cohorts on every run.
func Analyze(m *Matrix) *Report {
	months := m.MonthlyMetrics()
	m.AttachQuarterly(months)

	return &Report{
		GeneratedAt: time.Now().UTC(),
		Months:      months,
		Customers:   m.CustomerSummaries(),
		Cohorts:     m.Cohorts(),
		Issues:      m.Issues(),
	}
}
