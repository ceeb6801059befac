package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minsuk/revpulse/internal/billing"
	"github.com/minsuk/revpulse/internal/insight"
	"github.com/minsuk/revpulse/internal/scheduler"
	"github.com/minsuk/revpulse/internal/scheduler/jobs"
	"github.com/minsuk/revpulse/internal/store"
	"github.com/minsuk/revpulse/pkg/config"
	"github.com/minsuk/revpulse/pkg/database"
	"github.com/minsuk/revpulse/pkg/httputil"
	"github.com/minsuk/revpulse/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the job scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- billing_sync: daily at 3 AM (pull billing export, recompute report)

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run a specific job immediately

Example:
  go run ./cmd/revpulse scheduler start
  go run ./cmd/revpulse scheduler run billing_sync`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a specific job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down scheduler...")
	sched.Stop()

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Printf("Running job: %s\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob is asynchronous; block until interrupted so the job can finish
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}

func initScheduler() (*scheduler.Scheduler, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if !cfg.Billing.Enabled {
		return nil, nil, fmt.Errorf("billing feed is not enabled (set BILLING_ENABLED=true)")
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := store.Init(context.Background(), db.Pool); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init schema: %w", err)
	}

	matrixRepo := store.NewMatrixRepository(db.Pool)
	reportRepo := store.NewReportRepository(db.Pool)
	insightSvc := insight.New(matrixRepo, reportRepo, log)

	httpClient := httputil.New(log)
	billingClient := billing.NewClient(cfg.Billing, httpClient, log)
	syncer := billing.NewSyncer(billingClient, matrixRepo, insightSvc, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewBillingSyncJob(syncer, log)); err != nil {
		db.Close()
		return nil, nil, err
	}

	return sched, db.Close, nil
}
