package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// marketStateCmd prints whether the configured exchange is open.
var marketStateCmd = &cobra.Command{
	Use:   "market-state",
	Short: "Show the current market state",
	Long: `Prints whether the configured exchange is currently open or closed.

Example:
  go run ./cmd/stonks market-state`,
	RunE: runMarketState,
}

func init() {
	rootCmd.AddCommand(marketStateCmd)
}

func runMarketState(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer c.close()

	now := time.Now()
	state := "CLOSED"
	if c.clock.IsOpen(now) {
		state = "OPEN"
	}

	fmt.Printf("%s (%s, close hour %d)\n", state, c.cfg.Market.Timezone, c.cfg.Market.CloseHour)
	return nil
}
