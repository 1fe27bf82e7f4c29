package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "America/New_York", cfg.Market.Timezone)
	assert.Equal(t, 16, cfg.Market.CloseHour)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.RetrainEvery)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.RefitEvery)
	assert.Equal(t, 10*time.Minute, cfg.Forecast.CacheTTL)
	assert.Equal(t, 20, cfg.Forecast.SeqLength)
	assert.Equal(t, "models", cfg.Forecast.ModelsDir)
	assert.Equal(t, "create_models", cfg.Scheduler.TrainScriptsDir)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("MARKET_CLOSE_HOUR", "17")
	t.Setenv("RETRAIN_EVERY", "1h")
	t.Setenv("SEQ_LENGTH", "32")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.Port)
	assert.Equal(t, 17, cfg.Market.CloseHour)
	assert.Equal(t, time.Hour, cfg.Scheduler.RetrainEvery)
	assert.Equal(t, 32, cfg.Forecast.SeqLength)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad env", "ENV", "sandbox"},
		{"bad timezone", "MARKET_TIMEZONE", "Mars/Olympus"},
		{"close hour too large", "MARKET_CLOSE_HOUR", "24"},
		{"zero seq length", "SEQ_LENGTH", "0"},
		{"zero train concurrency", "TRAIN_MAX_CONCURRENT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvAsDuration_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Forecast.CacheTTL)
}
