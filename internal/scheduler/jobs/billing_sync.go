package jobs

import (
	"context"

	"github.com/minsuk/revpulse/internal/billing"
	"github.com/minsuk/revpulse/pkg/logger"
)

// BillingSyncJob pulls the billing export nightly and recomputes the report
type BillingSyncJob struct {
	syncer *billing.Syncer
	logger *logger.Logger
}

// NewBillingSyncJob creates a new billing sync job
func NewBillingSyncJob(syncer *billing.Syncer, log *logger.Logger) *BillingSyncJob {
	return &BillingSyncJob{
		syncer: syncer,
		logger: log,
	}
}

// Name returns the job name
func (j *BillingSyncJob) Name() string {
	return "billing_sync"
}

// Schedule returns the cron schedule (daily at 3 AM)
func (j *BillingSyncJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run executes one sync cycle
func (j *BillingSyncJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled billing sync")

	if err := j.syncer.Sync(ctx); err != nil {
		return err
	}

	j.logger.Info("Scheduled billing sync completed")
	return nil
}
