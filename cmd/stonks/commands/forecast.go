package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stonksapi/backend/internal/forecast"
	"github.com/stonksapi/backend/internal/market"
)

// forecastCmd produces a one-off forecast on the command line.
var forecastCmd = &cobra.Command{
	Use:   "forecast <symbol>",
	Short: "Generate a forecast for a symbol",
	Long: `Generates a price forecast for one symbol and prints it as JSON.

Requires a trained model artifact for the (symbol, interval) pair.

Example:
  go run ./cmd/stonks forecast AAPL --interval 1h --duration 5`,
	Args: cobra.ExactArgs(1),
	RunE: runForecast,
}

var (
	forecastInterval string
	forecastDuration string
)

func init() {
	rootCmd.AddCommand(forecastCmd)

	forecastCmd.Flags().StringVar(&forecastInterval, "interval", "1h", "price series interval (1m|1h|1d|1mo)")
	forecastCmd.Flags().StringVar(&forecastDuration, "duration", "", "number of future points (default per interval)")
}

func runForecast(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer c.close()

	engine := forecast.NewEngine(c.cache, c.store, c.cfg.Forecast.SeqLength, nil, c.log)

	fc, err := engine.Forecast(cmd.Context(), args[0], market.Interval(forecastInterval), forecastDuration)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}
