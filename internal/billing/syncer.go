package billing

import (
	"context"
	"fmt"

	"github.com/minsuk/revpulse/internal/engine"
	"github.com/minsuk/revpulse/pkg/logger"
)

// MatrixWriter persists a replacement revenue matrix
type MatrixWriter interface {
	ReplaceMatrix(ctx context.Context, records []engine.CustomerRecord) error
}

// Refresher recomputes the cached report after the matrix changed
type Refresher interface {
	Refresh(ctx context.Context) (*engine.Report, error)
}

// Syncer pulls the billing export, replaces the stored matrix and triggers
// a recompute. It is the unit both the API trigger and the scheduled job run.
type Syncer struct {
	client  *Client
	store   MatrixWriter
	insight Refresher
	logger  *logger.Logger
}

// NewSyncer creates a billing syncer
func NewSyncer(client *Client, store MatrixWriter, insight Refresher, log *logger.Logger) *Syncer {
	return &Syncer{
		client:  client,
		store:   store,
		insight: insight,
		logger:  log,
	}
}

// Sync runs one full export-store-recompute cycle
func (s *Syncer) Sync(ctx context.Context) error {
	records, err := s.client.FetchRecords(ctx)
	if err != nil {
		return fmt.Errorf("fetch billing export: %w", err)
	}

	// Validate before touching storage
	if _, err := engine.NewMatrix(records); err != nil {
		return fmt.Errorf("billing export produced an invalid matrix: %w", err)
	}

	if err := s.store.ReplaceMatrix(ctx, records); err != nil {
		return fmt.Errorf("store billing matrix: %w", err)
	}

	report, err := s.insight.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("recompute after billing sync: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"customers": len(records),
		"months":    len(report.Months),
	}).Info("Billing sync completed")

	return nil
}
