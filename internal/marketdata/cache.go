package marketdata

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/pkg/logger"
	"github.com/stonksapi/backend/pkg/redis"
)

// ErrNoData is returned when the upstream source has no rows for a
// symbol. It is never cached, so a transient upstream gap clears as
// soon as the source recovers.
var ErrNoData = errors.New("no data found for the specified stock")

type cacheKey struct {
	symbol   string
	period   string
	interval market.Interval
}

type cacheEntry struct {
	series    Series
	expiresAt time.Time
}

// SeriesCache is a time-bounded cache in front of the upstream
// provider. One live entry per (symbol, period, interval); a fresh
// fetch replaces the previous entry. Concurrent misses on the same key
// may each fetch; the last writer wins, which matches the freshness
// contract since both fetched inside the TTL window.
type SeriesCache struct {
	provider Provider
	ttl      time.Duration
	logger   *logger.Logger
	second   *redis.Cache // optional second level, may be nil

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry

	now func() time.Time
}

// NewSeriesCache creates a series cache with a fixed TTL. second may
// be nil (or disabled) to run memory-only.
func NewSeriesCache(provider Provider, ttl time.Duration, second *redis.Cache, log *logger.Logger) *SeriesCache {
	return &SeriesCache{
		provider: provider,
		ttl:      ttl,
		logger:   log.WithField("component", "series_cache"),
		second:   second,
		entries:  make(map[cacheKey]cacheEntry),
		now:      time.Now,
	}
}

// Get returns the cached series for the key, fetching from upstream on
// a miss or after expiry.
func (c *SeriesCache) Get(ctx context.Context, symbol, period string, interval market.Interval) (Series, error) {
	key := cacheKey{symbol: symbol, period: period, interval: interval}

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.series, nil
	}
	c.mu.Unlock()

	if c.second != nil {
		var series Series
		found, err := c.second.Get(ctx, redis.SeriesKey(symbol, period, string(interval)), &series)
		if err != nil {
			c.logger.WithError(err).Warn("Second-level cache read failed")
		}
		if found && len(series) > 0 {
			c.store(key, series)
			return series, nil
		}
	}

	series, err := c.provider.FetchSeries(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}

	if len(series) == 0 {
		return nil, ErrNoData
	}

	c.store(key, series)

	if c.second != nil {
		if err := c.second.Set(ctx, redis.SeriesKey(symbol, period, string(interval)), series, c.ttl); err != nil {
			c.logger.WithError(err).Warn("Second-level cache write failed")
		}
	}

	return series, nil
}

func (c *SeriesCache) store(key cacheKey, series Series) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{
		series:    series,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Len returns the number of live entries, expired ones included until
// their next lookup replaces them.
func (c *SeriesCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
