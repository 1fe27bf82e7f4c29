package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stonks",
	Short: "Stock price forecast service",
	Long: `Stonks API

Market-aware stock price forecasting: serves predictions over HTTP,
keeps price history cached, and retrains models around the exchange
calendar.

Usage:
  go run ./cmd/stonks [command]

Examples:
  go run ./cmd/stonks api
  go run ./cmd/stonks forecast AAPL --interval 1h --duration 5
  go run ./cmd/stonks train --symbol AAPL --interval 1h
  go run ./cmd/stonks market-state`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
