package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stonksapi/backend/internal/scheduler"
	"github.com/stonksapi/backend/internal/scheduler/jobs"
	"github.com/stonksapi/backend/internal/trainer"
)

// schedulerCmd groups the training-scheduler commands.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Training scheduler commands",
	Long: `Controls the two training loops:

- retrain: launches the full training batch once per market closure
- refit:   relaunches the minute-interval artifacts while the market
           is open

Example:
  go run ./cmd/stonks scheduler start
  go run ./cmd/stonks scheduler list
  go run ./cmd/stonks scheduler run retrain`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run both training loops until interrupted",
	RunE:  runSchedulerStart,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the jobs and their schedules",
	RunE:  runSchedulerList,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run <job>",
	Short: "Execute one job tick immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildJobs(c *core) (*trainer.Runner, []scheduler.Job) {
	runner := trainer.NewRunner(c.cfg.Scheduler.TrainScriptsDir, c.cfg.Scheduler.TrainMaxConcurrent, c.log)

	return runner, []scheduler.Job{
		jobs.NewRetrainJob(c.clock, runner, c.cfg.Scheduler.RetrainEvery, c.log),
		jobs.NewRefitJob(c.clock, runner, c.cfg.Scheduler.RefitEvery, c.log),
	}
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer c.close()

	runner, jobList := buildJobs(c)

	sched := scheduler.New(c.log)
	for _, job := range jobList {
		if err := sched.AddJob(job); err != nil {
			return err
		}
	}

	sched.Start()

	fmt.Printf("Scheduler running: retrain every %s, refit every %s\n",
		c.cfg.Scheduler.RetrainEvery, c.cfg.Scheduler.RefitEvery)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	runner.Wait()

	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer c.close()

	_, jobList := buildJobs(c)
	for _, job := range jobList {
		fmt.Printf("%-10s %s\n", job.Name(), job.Schedule())
	}

	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	c, err := buildCore()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer c.close()

	runner, jobList := buildJobs(c)
	for _, job := range jobList {
		if job.Name() != args[0] {
			continue
		}

		if err := job.Run(cmd.Context()); err != nil {
			return err
		}
		runner.Wait()

		fmt.Printf("Job %s completed\n", job.Name())
		return nil
	}

	return fmt.Errorf("unknown job %q (available: retrain, refit)", args[0])
}
