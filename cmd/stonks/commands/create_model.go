package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/trainer"
)

// createModelCmd generates the executable training artifacts for a new
// symbol so the schedulers pick it up.
var createModelCmd = &cobra.Command{
	Use:   "create-model <symbol>",
	Short: "Generate training artifacts for a symbol",
	Long: `Generates one executable training artifact per interval under the
training-scripts directory. The schedulers launch these artifacts; the
retrain loop runs all of them, the refit loop only the 1m ones.

Example:
  go run ./cmd/stonks create-model AAPL
  go run ./cmd/stonks create-model AAPL --intervals 1m,1h --run`,
	Args: cobra.ExactArgs(1),
	RunE: runCreateModel,
}

var (
	createIntervals []string
	createRunNow    bool
)

func init() {
	rootCmd.AddCommand(createModelCmd)

	createModelCmd.Flags().StringSliceVar(&createIntervals, "intervals", nil, "intervals to train (default: all forecastable)")
	createModelCmd.Flags().BoolVar(&createRunNow, "run", false, "run the generated artifacts immediately")
}

func runCreateModel(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer c.close()

	symbol := args[0]

	intervals := make([]market.Interval, 0, len(createIntervals))
	for _, raw := range createIntervals {
		interval := market.Interval(raw)
		if _, _, err := market.Resolve(market.OpPredict, interval, ""); err != nil {
			return err
		}
		intervals = append(intervals, interval)
	}
	if len(intervals) == 0 {
		intervals = market.SupportedIntervals(market.OpPredict)
	}

	// An unknown ticker gets no artifacts.
	if _, err := c.cache.Get(cmd.Context(), symbol, "5d", market.Interval1d); err != nil {
		return fmt.Errorf("symbol %s: %w", symbol, err)
	}

	binary, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	written, err := trainer.WriteArtifacts(c.cfg.Scheduler.TrainScriptsDir, binary, symbol, intervals)
	if err != nil {
		return err
	}

	for _, path := range written {
		fmt.Printf("Wrote %s\n", path)
	}

	if createRunNow {
		runner := trainer.NewRunner(c.cfg.Scheduler.TrainScriptsDir, c.cfg.Scheduler.TrainMaxConcurrent, c.log)
		runner.RunScripts(context.Background(), written)
		runner.Wait()
	}

	return nil
}
