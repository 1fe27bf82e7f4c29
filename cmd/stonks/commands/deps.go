package commands

import (
	"github.com/stonksapi/backend/internal/forecast"
	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/internal/marketdata/yahoo"
	"github.com/stonksapi/backend/pkg/config"
	"github.com/stonksapi/backend/pkg/httputil"
	"github.com/stonksapi/backend/pkg/logger"
	"github.com/stonksapi/backend/pkg/redis"
)

// core is the dependency set shared by every command: config, logging,
// the cached market-data pipeline and the model store.
type core struct {
	cfg   *config.Config
	log   *logger.Logger
	yahoo *yahoo.Client
	cache *marketdata.SeriesCache
	store *forecast.Store
	clock *market.Clock
	redis *redis.Client
}

// buildCore wires the shared stack. Redis stays a no-op unless enabled.
func buildCore() (*core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, err
	}

	httpClient := httputil.New(log).WithRateLimit(5, 10)
	yahooClient := yahoo.NewClient(httpClient, log)

	var second *redis.Cache
	if redisClient.Enabled() {
		second = redis.NewCache(redisClient, "stonks")
	}

	cache := marketdata.NewSeriesCache(yahooClient, cfg.Forecast.CacheTTL, second, log)
	store := forecast.NewStore(cfg.Forecast.ModelsDir)

	clock, err := market.NewClock(cfg.Market.Timezone, cfg.Market.CloseHour)
	if err != nil {
		return nil, err
	}

	return &core{
		cfg:   cfg,
		log:   log,
		yahoo: yahooClient,
		cache: cache,
		store: store,
		clock: clock,
		redis: redisClient,
	}, nil
}

// close releases the shared connections.
func (c *core) close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
