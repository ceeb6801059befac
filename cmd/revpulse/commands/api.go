package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minsuk/revpulse/internal/api"
	"github.com/minsuk/revpulse/internal/api/handlers"
	"github.com/minsuk/revpulse/internal/billing"
	"github.com/minsuk/revpulse/internal/insight"
	"github.com/minsuk/revpulse/internal/store"
	"github.com/minsuk/revpulse/pkg/config"
	"github.com/minsuk/revpulse/pkg/database"
	"github.com/minsuk/revpulse/pkg/httputil"
	"github.com/minsuk/revpulse/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                - Health check
  GET  /api/metrics/monthly   - Monthly KPI series with quarterly rollups
  GET  /api/metrics/customers - Per-customer lifetime summaries
  GET  /api/metrics/cohorts   - Cohort retention tables
  GET  /api/matrix/issues     - Cell parse issues of the current matrix
  GET  /api/reports/latest    - Most recent persisted report snapshot
  POST /api/matrix/upload     - Replace the matrix with a CSV body
  POST /api/billing/sync      - Pull the billing export and recompute
  GET  /api/stream            - Websocket refresh event stream

Example:
  go run ./cmd/revpulse api
  go run ./cmd/revpulse api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := store.Init(ctx, db.Pool); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	log.Info("Connected to database")

	matrixRepo := store.NewMatrixRepository(db.Pool)
	reportRepo := store.NewReportRepository(db.Pool)

	insightSvc := insight.New(matrixRepo, reportRepo, log)

	hub := api.NewHub(log)
	defer hub.Close()
	insightSvc.OnRefresh(hub.NotifyRefresh)

	var syncer *billing.Syncer
	if cfg.Billing.Enabled {
		httpClient := httputil.New(log)
		billingClient := billing.NewClient(cfg.Billing, httpClient, log)
		syncer = billing.NewSyncer(billingClient, matrixRepo, insightSvc, log)
	}

	metricsHandler := handlers.NewMetricsHandler(insightSvc, reportRepo, log)
	matrixHandler := handlers.NewMatrixHandler(matrixRepo, insightSvc, log)
	billingHandler := handlers.NewBillingHandler(syncerOrNil(syncer), log)

	router := api.NewRouter(metricsHandler, matrixHandler, billingHandler, hub, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// syncerOrNil keeps the handler's nil check working: a typed nil *Syncer
// stored in the interface would not compare equal to nil.
func syncerOrNil(s *billing.Syncer) handlers.FeedSyncer {
	if s == nil {
		return nil
	}
	return s
}
