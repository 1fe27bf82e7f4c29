package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/pkg/logger"
)

// RefitJob keeps the fastest-cadence models fresh during the trading
// session. Every tick that finds the market open launches the
// minute-interval artifacts; closed ticks do nothing, the nightly
// batch owns that window.
type RefitJob struct {
	clock    *market.Clock
	launcher Launcher
	every    time.Duration
	logger   *logger.Logger

	now func() time.Time
}

// NewRefitJob creates the open-session refit job.
func NewRefitJob(clock *market.Clock, launcher Launcher, every time.Duration, log *logger.Logger) *RefitJob {
	return &RefitJob{
		clock:    clock,
		launcher: launcher,
		every:    every,
		logger:   log.WithField("job", "refit"),
		now:      time.Now,
	}
}

// Name implements scheduler.Job.
func (j *RefitJob) Name() string { return "refit" }

// Schedule implements scheduler.Job.
func (j *RefitJob) Schedule() string { return fmt.Sprintf("@every %s", j.every) }

// Run launches the minute-interval artifacts when the market is open.
func (j *RefitJob) Run(ctx context.Context) error {
	if j.clock.IsClosed(j.now()) {
		j.logger.Debug("Market closed, skipping refit")
		return nil
	}

	j.logger.Info("Market open, refitting minute-interval models")
	if err := j.launcher.RunTagged(ctx, string(market.RefitInterval)); err != nil {
		return fmt.Errorf("launch refit batch: %w", err)
	}

	return nil
}
