package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/pkg/config"
	"github.com/stonksapi/backend/pkg/logger"
)

type fakeLauncher struct {
	allRuns    int
	taggedRuns []string
	err        error
}

func (f *fakeLauncher) RunAll(ctx context.Context) error {
	f.allRuns++
	return f.err
}

func (f *fakeLauncher) RunTagged(ctx context.Context, tag string) error {
	f.taggedRuns = append(f.taggedRuns, tag)
	return f.err
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func nyClock(t *testing.T) *market.Clock {
	t.Helper()
	clock, err := market.NewClock("America/New_York", 16)
	require.NoError(t, err)
	return clock
}

// Fixed instants in UTC. 2026-08-21 is a Friday; 20:00 UTC is 16:00 in
// New York (EDT), 14:00 UTC is 10:00.
var (
	fridayOpen   = time.Date(2026, 8, 21, 14, 0, 0, 0, time.UTC)
	fridayClosed = time.Date(2026, 8, 21, 21, 0, 0, 0, time.UTC)
	saturday     = time.Date(2026, 8, 22, 15, 0, 0, 0, time.UTC)
	mondayOpen   = time.Date(2026, 8, 24, 14, 0, 0, 0, time.UTC)
)

func TestRetrainJob_LaunchesOncePerClosure(t *testing.T) {
	launcher := &fakeLauncher{}
	job := NewRetrainJob(nyClock(t), launcher, 30*time.Minute, testLogger())

	instant := fridayClosed
	job.now = func() time.Time { return instant }

	// Many consecutive closed ticks launch the batch exactly once.
	for i := 0; i < 10; i++ {
		require.NoError(t, job.Run(context.Background()))
		instant = instant.Add(30 * time.Minute)
	}
	assert.Equal(t, 1, launcher.allRuns)

	// The weekend keeps the same closure latched.
	instant = saturday
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, launcher.allRuns)

	// Monday's open tick resets the latch without launching.
	instant = mondayOpen
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, launcher.allRuns)

	// Monday's close launches again.
	instant = mondayOpen.Add(7 * time.Hour)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 2, launcher.allRuns)
}

func TestRetrainJob_OpenMarketDoesNothing(t *testing.T) {
	launcher := &fakeLauncher{}
	job := NewRetrainJob(nyClock(t), launcher, 30*time.Minute, testLogger())
	job.now = func() time.Time { return fridayOpen }

	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, launcher.allRuns)
}

func TestRetrainJob_FailedLaunchStillLatches(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("exec failed")}
	job := NewRetrainJob(nyClock(t), launcher, 30*time.Minute, testLogger())
	job.now = func() time.Time { return fridayClosed }

	assert.Error(t, job.Run(context.Background()))
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, launcher.allRuns, "a failed launch must not be retried within the same closure")
}

func TestRefitJob_RunsOnlyWhileOpen(t *testing.T) {
	launcher := &fakeLauncher{}
	job := NewRefitJob(nyClock(t), launcher, 15*time.Minute, testLogger())

	job.now = func() time.Time { return fridayOpen }
	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	job.now = func() time.Time { return fridayClosed }
	require.NoError(t, job.Run(context.Background()))

	job.now = func() time.Time { return saturday }
	require.NoError(t, job.Run(context.Background()))

	// Two open ticks, two launches; closed ticks launch nothing.
	assert.Equal(t, []string{"1m", "1m"}, launcher.taggedRuns)
}

func TestJobSchedules(t *testing.T) {
	clock := nyClock(t)
	retrain := NewRetrainJob(clock, &fakeLauncher{}, 30*time.Minute, testLogger())
	refit := NewRefitJob(clock, &fakeLauncher{}, 15*time.Minute, testLogger())

	assert.Equal(t, "retrain", retrain.Name())
	assert.Equal(t, "@every 30m0s", retrain.Schedule())
	assert.Equal(t, "refit", refit.Name())
	assert.Equal(t, "@every 15m0s", refit.Schedule())
}
