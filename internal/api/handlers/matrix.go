package handlers

import (
	"context"
	"net/http"

	"github.com/minsuk/revpulse/internal/engine"
	"github.com/minsuk/revpulse/internal/ingest"
	"github.com/minsuk/revpulse/pkg/logger"
)

// MatrixWriter persists a replacement revenue matrix
type MatrixWriter interface {
	ReplaceMatrix(ctx context.Context, records []engine.CustomerRecord) error
}

// MatrixHandler handles matrix upload
type MatrixHandler struct {
	store   MatrixWriter
	insight ReportProvider
	logger  *logger.Logger
}

// NewMatrixHandler creates a new matrix handler
func NewMatrixHandler(store MatrixWriter, insight ReportProvider, log *logger.Logger) *MatrixHandler {
	return &MatrixHandler{
		store:   store,
		insight: insight,
		logger:  log,
	}
}

// UploadResponse summarizes an accepted matrix upload
type UploadResponse struct {
	Status    string `json:"status"`
	Customers int    `json:"customers"`
	Months    int    `json:"months"`
	Issues    int    `json:"issues"`
}

// Upload replaces the stored matrix with the CSV in the request body and
// recomputes the report
// POST /api/matrix/upload
func (h *MatrixHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	matrix, err := ingest.Parse(r.Body)
	if err != nil {
		h.logger.WithError(err).Warn("Rejected matrix upload")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.ReplaceMatrix(ctx, matrix.Customers()); err != nil {
		h.logger.WithError(err).Error("Failed to store uploaded matrix")
		respondError(w, http.StatusInternalServerError, "Failed to store matrix")
		return
	}

	report, err := h.insight.Refresh(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to recompute after upload")
		respondError(w, http.StatusInternalServerError, "Failed to recompute metrics")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"customers": len(report.Customers),
		"months":    len(report.Months),
		"issues":    len(report.Issues),
	}).Info("Matrix uploaded")

	respondJSON(w, http.StatusOK, UploadResponse{
		Status:    "success",
		Customers: len(report.Customers),
		Months:    len(report.Months),
		Issues:    len(report.Issues),
	})
}
