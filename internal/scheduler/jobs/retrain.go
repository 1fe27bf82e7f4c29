package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/pkg/logger"
)

// Launcher starts training runs. The scheduler jobs only decide WHEN
// to train; the launcher owns how.
type Launcher interface {
	// RunAll launches every discovered training artifact.
	RunAll(ctx context.Context) error

	// RunTagged launches only the artifacts tagged with the given
	// interval, e.g. "1m".
	RunTagged(ctx context.Context, tag string) error
}

// RetrainJob launches the full training batch once per market closure.
// The tick fires continuously, so a latch remembers whether this
// closure has already been trained for; the latch resets as soon as a
// tick observes the market open again.
type RetrainJob struct {
	clock    *market.Clock
	launcher Launcher
	every    time.Duration
	logger   *logger.Logger

	mu      sync.Mutex
	latched bool

	now func() time.Time
}

// NewRetrainJob creates the once-per-closure retrain job.
func NewRetrainJob(clock *market.Clock, launcher Launcher, every time.Duration, log *logger.Logger) *RetrainJob {
	return &RetrainJob{
		clock:    clock,
		launcher: launcher,
		every:    every,
		logger:   log.WithField("job", "retrain"),
		now:      time.Now,
	}
}

// Name implements scheduler.Job.
func (j *RetrainJob) Name() string { return "retrain" }

// Schedule implements scheduler.Job.
func (j *RetrainJob) Schedule() string { return fmt.Sprintf("@every %s", j.every) }

// Run checks the market clock and launches the batch at most once per
// closure. A tick that finds the market open only resets the latch.
func (j *RetrainJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.clock.IsOpen(j.now()) {
		if j.latched {
			j.logger.Debug("Market reopened, retrain latch reset")
		}
		j.latched = false
		return nil
	}

	if j.latched {
		j.logger.Debug("Market still closed, batch already launched")
		return nil
	}

	j.logger.Info("Market closed, launching training batch")
	if err := j.launcher.RunAll(ctx); err != nil {
		// The latch is set even on a failed launch; the next closure
		// gets a fresh attempt, not this one.
		j.latched = true
		return fmt.Errorf("launch training batch: %w", err)
	}

	j.latched = true
	return nil
}
