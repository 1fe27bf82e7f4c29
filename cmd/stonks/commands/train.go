package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/trainer"
)

// trainCmd fits one model in-process. The generated training artifacts
// invoke this command, so a scheduler launch and a manual run share the
// same path.
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit and save a model for one symbol",
	Long: `Fetches history for a (symbol, interval) pair, fits a fresh model
and atomically replaces the stored artifact.

Example:
  go run ./cmd/stonks train --symbol AAPL --interval 1h`,
	RunE: runTrain,
}

var (
	trainSymbol   string
	trainInterval string
)

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainSymbol, "symbol", "", "ticker symbol (required)")
	trainCmd.Flags().StringVar(&trainInterval, "interval", "1h", "price series interval (1m|1h|1d|1mo)")
	trainCmd.MarkFlagRequired("symbol")
}

func runTrain(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer c.close()

	t := trainer.NewTrainer(c.cache, c.store, c.cfg.Forecast.SeqLength, c.log)

	model, err := t.Train(cmd.Context(), trainSymbol, market.Interval(trainInterval))
	if err != nil {
		return fmt.Errorf("train %s %s: %w", trainSymbol, trainInterval, err)
	}

	fmt.Printf("Model saved: %s\n", c.store.Path(model.Symbol, market.Interval(model.Interval)))
	return nil
}
