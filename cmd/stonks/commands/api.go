package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stonksapi/backend/internal/api"
	"github.com/stonksapi/backend/internal/api/handlers"
	"github.com/stonksapi/backend/internal/forecast"
	"github.com/stonksapi/backend/internal/history"
	"github.com/stonksapi/backend/internal/overview"
	"github.com/stonksapi/backend/internal/scheduler"
	"github.com/stonksapi/backend/internal/scheduler/jobs"
	"github.com/stonksapi/backend/internal/trainer"
	"github.com/stonksapi/backend/pkg/database"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server together with both training schedulers.

Endpoints:
  GET  /health                        - Health check
  GET  /api/predict/{symbol}          - Price forecast
  GET  /api/past-values/{symbol}      - Recent closing prices
  GET  /api/historical-data/{symbol}  - OHLC history
  GET  /api/stock-overview            - Tracked symbols overview
  GET  /api/market/state              - Market open/closed state
  GET  /api/market/stream             - Market state websocket
  POST /api/models/{symbol}           - Generate and run training artifacts
  GET  /api/scheduler/jobs            - Scheduler job statistics

Example:
  go run ./cmd/stonks api
  go run ./cmd/stonks api --port 8080 --no-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	noScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
	apiCmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "serve without the training schedulers")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer c.close()

	if apiPort != "" {
		c.cfg.Port = apiPort
	}

	c.log.WithFields(map[string]interface{}{
		"port": c.cfg.Port,
		"env":  c.cfg.Env,
	}).Info("Initializing API server")

	// Forecast history persistence is optional; without a database the
	// engine simply serves without recording.
	var historyWriter forecast.HistoryWriter
	if c.cfg.Database.URL != "" {
		db, err := database.New(c.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := forecast.NewRepository(db.Pool)
		if err := repo.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		historyWriter = repo

		c.log.Info("Forecast history persistence enabled")
	}

	engine := forecast.NewEngine(c.cache, c.store, c.cfg.Forecast.SeqLength, historyWriter, c.log)
	historySvc := history.NewService(c.cache, c.yahoo, c.log)
	overviewSvc := overview.NewService(c.store, c.cache, c.yahoo, c.log)
	runner := trainer.NewRunner(c.cfg.Scheduler.TrainScriptsDir, c.cfg.Scheduler.TrainMaxConcurrent, c.log)

	// The generated artifacts call back into this binary.
	binary, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	var sched *scheduler.Scheduler
	if !noScheduler {
		sched = scheduler.New(c.log)
		if err := sched.AddJob(jobs.NewRetrainJob(c.clock, runner, c.cfg.Scheduler.RetrainEvery, c.log)); err != nil {
			return err
		}
		if err := sched.AddJob(jobs.NewRefitJob(c.clock, runner, c.cfg.Scheduler.RefitEvery, c.log)); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	h := api.Handlers{
		Forecast: handlers.NewForecastHandler(engine, c.log),
		History:  handlers.NewHistoryHandler(historySvc, c.log),
		Overview: handlers.NewOverviewHandler(overviewSvc, c.log),
		Market:   handlers.NewMarketHandler(c.clock, c.log),
		Train:    handlers.NewTrainHandler(c.cfg.Scheduler.TrainScriptsDir, binary, runner, c.cache, c.log),
	}
	if sched != nil {
		h.Scheduler = handlers.NewSchedulerHandler(sched, c.log)
	}

	router := api.NewRouter(h, c.log)
	server := api.New(c.cfg, c.log, router)

	go func() {
		if err := server.Start(); err != nil {
			c.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	c.log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", c.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	c.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	c.log.Info("Server stopped")
	return nil
}
