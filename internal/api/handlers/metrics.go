package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/minsuk/revpulse/internal/engine"
	"github.com/minsuk/revpulse/pkg/logger"
)

// ReportProvider serves the current computed report
type ReportProvider interface {
	Report(ctx context.Context) (*engine.Report, error)
	Refresh(ctx context.Context) (*engine.Report, error)
}

// SnapshotReader reads persisted report history
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context) (*engine.Report, error)
}

// MetricsHandler handles metric read endpoints
type MetricsHandler struct {
	insight   ReportProvider
	snapshots SnapshotReader
	logger    *logger.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(insight ReportProvider, snapshots SnapshotReader, log *logger.Logger) *MetricsHandler {
	return &MetricsHandler{
		insight:   insight,
		snapshots: snapshots,
		logger:    log,
	}
}

// GetMonthly returns the monthly KPI series with quarterly rollups attached
// GET /api/metrics/monthly
func (h *MetricsHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	report, err := h.insight.Report(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute report")
		respondError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	respondJSON(w, http.StatusOK, report.Months)
}

// GetCustomers returns the per-customer lifetime summaries
// GET /api/metrics/customers
func (h *MetricsHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	report, err := h.insight.Report(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute report")
		respondError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	respondJSON(w, http.StatusOK, report.Customers)
}

// GetCohorts returns the cohort retention tables
// GET /api/metrics/cohorts
func (h *MetricsHandler) GetCohorts(w http.ResponseWriter, r *http.Request) {
	report, err := h.insight.Report(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute report")
		respondError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	respondJSON(w, http.StatusOK, report.Cohorts)
}

// GetIssues returns the cell parse issues of the current matrix
// GET /api/matrix/issues
func (h *MetricsHandler) GetIssues(w http.ResponseWriter, r *http.Request) {
	report, err := h.insight.Report(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute report")
		respondError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	issues := report.Issues
	if issues == nil {
		issues = []engine.CellIssue{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(issues),
		"issues": issues,
	})
}

// GetLatestSnapshot returns the most recently persisted report snapshot.
// Unlike the metrics endpoints this never recomputes; it reads history.
// GET /api/reports/latest
func (h *MetricsHandler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	report, err := h.snapshots.LatestSnapshot(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load report snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load report snapshot")
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "No report snapshot stored yet")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
