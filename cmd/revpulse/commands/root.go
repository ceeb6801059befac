package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "revpulse",
	Short: "RevPulse - SaaS revenue metrics and cohort engine",
	Long: `RevPulse CLI

Computes MRR, ARR, NRR, growth and cohort retention from a customer
revenue matrix, fed by CSV upload or a billing provider export.

Usage:
  go run ./cmd/revpulse [command]

Examples:
  go run ./cmd/revpulse api
  go run ./cmd/revpulse analyze revenue.csv
  go run ./cmd/revpulse import revenue.csv
  go run ./cmd/revpulse sync`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
