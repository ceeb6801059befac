package handlers

import (
	"context"
	"net/http"

	"github.com/minsuk/revpulse/pkg/logger"
)

// FeedSyncer runs one billing export sync cycle
type FeedSyncer interface {
	Sync(ctx context.Context) error
}

// BillingHandler triggers billing feed syncs
type BillingHandler struct {
	syncer FeedSyncer
	logger *logger.Logger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(syncer FeedSyncer, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		syncer: syncer,
		logger: log,
	}
}

// Sync pulls the billing export, replaces the matrix and recomputes
// POST /api/billing/sync
func (h *BillingHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		respondError(w, http.StatusServiceUnavailable, "Billing feed is not configured")
		return
	}

	if err := h.syncer.Sync(r.Context()); err != nil {
		h.logger.WithError(err).Error("Billing sync failed")
		respondError(w, http.StatusBadGateway, "Billing sync failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "success",
	})
}
