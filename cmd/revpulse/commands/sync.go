package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minsuk/revpulse/internal/billing"
	"github.com/minsuk/revpulse/internal/insight"
	"github.com/minsuk/revpulse/internal/store"
	"github.com/minsuk/revpulse/pkg/config"
	"github.com/minsuk/revpulse/pkg/database"
	"github.com/minsuk/revpulse/pkg/httputil"
	"github.com/minsuk/revpulse/pkg/logger"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the billing export and recompute metrics",
	Long: `Runs one billing sync cycle: pulls the subscription export from the
billing provider, replaces the stored matrix and recomputes the report.

Requires BILLING_ENABLED=true and BILLING_BASE_URL in the environment.

Example:
  go run ./cmd/revpulse sync`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.Billing.Enabled {
		return fmt.Errorf("billing feed is not enabled (set BILLING_ENABLED=true)")
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := store.Init(ctx, db.Pool); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	matrixRepo := store.NewMatrixRepository(db.Pool)
	reportRepo := store.NewReportRepository(db.Pool)
	insightSvc := insight.New(matrixRepo, reportRepo, log)

	httpClient := httputil.New(log)
	billingClient := billing.NewClient(cfg.Billing, httpClient, log)
	syncer := billing.NewSyncer(billingClient, matrixRepo, insightSvc, log)

	if err := syncer.Sync(ctx); err != nil {
		return fmt.Errorf("billing sync: %w", err)
	}

	fmt.Println("Billing sync completed")
	return nil
}
