package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/pkg/config"
	"github.com/stonksapi/backend/pkg/logger"
)

type fakeProvider struct {
	calls  int
	series Series
	err    error
}

func (f *fakeProvider) FetchSeries(ctx context.Context, symbol, period string, interval market.Interval) (Series, error) {
	f.calls++
	return f.series, f.err
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func sampleSeries(n int) Series {
	base := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	s := make(Series, n)
	for i := range s {
		s[i] = Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Close:     100 + float64(i),
		}
	}
	return s
}

func TestSeriesCache_HitWithinTTL(t *testing.T) {
	provider := &fakeProvider{series: sampleSeries(5)}
	cache := NewSeriesCache(provider, 10*time.Minute, nil, testLogger())

	ctx := context.Background()

	first, err := cache.Get(ctx, "AAPL", "2y", market.Interval1h)
	require.NoError(t, err)

	second, err := cache.Get(ctx, "AAPL", "2y", market.Interval1h)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls, "second lookup within TTL must not hit upstream")
	assert.Equal(t, first, second)
}

func TestSeriesCache_RefetchAfterExpiry(t *testing.T) {
	provider := &fakeProvider{series: sampleSeries(5)}
	cache := NewSeriesCache(provider, 10*time.Minute, nil, testLogger())

	current := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	ctx := context.Background()

	_, err := cache.Get(ctx, "AAPL", "2y", market.Interval1h)
	require.NoError(t, err)

	current = current.Add(11 * time.Minute)

	_, err = cache.Get(ctx, "AAPL", "2y", market.Interval1h)
	require.NoError(t, err)

	assert.Equal(t, 2, provider.calls, "expired entry must trigger a second fetch")
	assert.Equal(t, 1, cache.Len(), "fresh fetch replaces, not appends")
}

func TestSeriesCache_KeysAreIndependent(t *testing.T) {
	provider := &fakeProvider{series: sampleSeries(3)}
	cache := NewSeriesCache(provider, 10*time.Minute, nil, testLogger())

	ctx := context.Background()

	_, err := cache.Get(ctx, "AAPL", "2y", market.Interval1h)
	require.NoError(t, err)
	_, err = cache.Get(ctx, "AAPL", "5y", market.Interval1d)
	require.NoError(t, err)
	_, err = cache.Get(ctx, "TSLA", "2y", market.Interval1h)
	require.NoError(t, err)

	assert.Equal(t, 3, provider.calls)
	assert.Equal(t, 3, cache.Len())
}

func TestSeriesCache_EmptySeriesNotCached(t *testing.T) {
	provider := &fakeProvider{series: Series{}}
	cache := NewSeriesCache(provider, 10*time.Minute, nil, testLogger())

	ctx := context.Background()

	_, err := cache.Get(ctx, "NOPE", "2y", market.Interval1h)
	assert.ErrorIs(t, err, ErrNoData)

	// The negative result must not poison the next request.
	provider.series = sampleSeries(2)
	series, err := cache.Get(ctx, "NOPE", "2y", market.Interval1h)
	require.NoError(t, err)
	assert.Len(t, series, 2)
	assert.Equal(t, 2, provider.calls)
}

func TestSeries_Helpers(t *testing.T) {
	s := sampleSeries(5)

	assert.Equal(t, []float64{100, 101, 102, 103, 104}, s.Closes())
	assert.Equal(t, s[4].Timestamp, s.LastTimestamp())
	assert.Len(t, s.Tail(2), 2)
	assert.Len(t, s.Tail(10), 5)
	assert.True(t, Series{}.LastTimestamp().IsZero())
}
