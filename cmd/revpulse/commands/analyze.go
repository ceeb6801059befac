package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minsuk/revpulse/internal/engine"
	"github.com/minsuk/revpulse/internal/ingest"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [csv_file]",
	Short: "Compute metrics from a revenue matrix CSV",
	Long: `Parses a revenue matrix CSV, runs the full analysis and prints the
report as JSON. Needs no database or configuration.

Example:
  go run ./cmd/revpulse analyze revenue.csv
  go run ./cmd/revpulse analyze revenue.csv --pretty=false`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzePretty bool

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzePretty, "pretty", true, "indent JSON output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	matrix, err := ingest.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("parse matrix: %w", err)
	}

	report := engine.Analyze(matrix)

	enc := json.NewEncoder(os.Stdout)
	if analyzePretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if len(report.Issues) > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d cell(s) were not recognized and treated as zero\n", len(report.Issues))
	}

	return nil
}
