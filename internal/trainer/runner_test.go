package trainer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonksapi/backend/internal/market"
)

// writeScript drops an executable artifact that records its run by
// touching a marker file next to itself.
func writeScript(t *testing.T, dir, symbol, name string) string {
	t.Helper()

	symbolDir := filepath.Join(dir, symbol)
	require.NoError(t, os.MkdirAll(symbolDir, 0o755))

	marker := filepath.Join(symbolDir, name+".ran")
	body := "#!/bin/sh\ntouch \"" + marker + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(symbolDir, name), []byte(body), 0o755))

	return marker
}

func TestRunner_Discover(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "AAPL", "1h_AAPL.sh")
	writeScript(t, dir, "AAPL", "1m_AAPL.sh")
	writeScript(t, dir, "TSLA", "1d_TSLA.sh")

	// Non-executables are not training artifacts.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL", "notes.txt"), []byte("x"), 0o644))

	runner := NewRunner(dir, 2, testLogger())
	scripts, err := runner.Discover()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "AAPL", "1h_AAPL.sh"),
		filepath.Join(dir, "AAPL", "1m_AAPL.sh"),
		filepath.Join(dir, "TSLA", "1d_TSLA.sh"),
	}, scripts)
}

func TestRunner_DiscoverMissingDir(t *testing.T) {
	runner := NewRunner(filepath.Join(t.TempDir(), "nope"), 2, testLogger())

	scripts, err := runner.Discover()
	require.NoError(t, err)
	assert.Empty(t, scripts)
}

func TestRunner_RunAll(t *testing.T) {
	dir := t.TempDir()
	m1 := writeScript(t, dir, "AAPL", "1h_AAPL.sh")
	m2 := writeScript(t, dir, "TSLA", "1m_TSLA.sh")

	runner := NewRunner(dir, 2, testLogger())
	require.NoError(t, runner.RunAll(context.Background()))
	runner.Wait()

	assert.FileExists(t, m1)
	assert.FileExists(t, m2)
}

func TestRunner_RunTaggedFiltersByInterval(t *testing.T) {
	dir := t.TempDir()
	hourly := writeScript(t, dir, "AAPL", "1h_AAPL.sh")
	minute := writeScript(t, dir, "AAPL", "1m_AAPL.sh")

	runner := NewRunner(dir, 2, testLogger())
	require.NoError(t, runner.RunTagged(context.Background(), "1m"))
	runner.Wait()

	assert.FileExists(t, minute)
	assert.NoFileExists(t, hourly)
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()

	written, err := WriteArtifacts(dir, "/usr/local/bin/stonks", "AAPL",
		[]market.Interval{market.Interval1m, market.Interval1h})
	require.NoError(t, err)
	require.Len(t, written, 2)

	assert.Equal(t, filepath.Join(dir, "AAPL", "1m_AAPL.sh"), written[0])

	info, err := os.Stat(written[0])
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111, "artifact must be executable")

	body, err := os.ReadFile(written[1])
	require.NoError(t, err)
	assert.Contains(t, string(body), "train --symbol AAPL --interval 1h")

	// A second generation for the same symbol is refused.
	_, err = WriteArtifacts(dir, "/usr/local/bin/stonks", "AAPL", []market.Interval{market.Interval1d})
	assert.Error(t, err)
}
