package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minsuk/revpulse/internal/ingest"
	"github.com/minsuk/revpulse/internal/insight"
	"github.com/minsuk/revpulse/internal/store"
	"github.com/minsuk/revpulse/pkg/config"
	"github.com/minsuk/revpulse/pkg/database"
	"github.com/minsuk/revpulse/pkg/logger"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [csv_file]",
	Short: "Import a revenue matrix CSV into the database",
	Long: `Parses a revenue matrix CSV, replaces the stored matrix and writes
a fresh report snapshot.

Example:
  go run ./cmd/revpulse import revenue.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	matrix, err := ingest.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("parse matrix: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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

	if err := matrixRepo.ReplaceMatrix(ctx, matrix.Customers()); err != nil {
		return fmt.Errorf("store matrix: %w", err)
	}

	insightSvc := insight.New(matrixRepo, reportRepo, log)
	report, err := insightSvc.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("compute report: %w", err)
	}

	fmt.Printf("Imported %d customers over %d months (%d cohorts, %d cell issues)\n",
		len(report.Customers), len(report.Months), len(report.Cohorts), len(report.Issues))

	return nil
}
