package trainer

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonksapi/backend/internal/forecast"
	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/pkg/config"
	"github.com/stonksapi/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

// oscillating produces a deterministic, well-conditioned sequence in
// roughly [0, 1].
func oscillating(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 + 0.3*math.Sin(float64(i)) + 0.15*math.Cos(2.7*float64(i))
	}
	return out
}

func TestFitLinear_RecoversExactMap(t *testing.T) {
	// x[i+1] = 0.5*x[i] + 0.25, seeded away from the fixed point so the
	// rows stay distinct. The data is exactly linear, so least squares
	// must recover the generating coefficients.
	series := make([]float64, 10)
	for i := 1; i < len(series); i++ {
		series[i] = 0.5*series[i-1] + 0.25
	}

	weights, bias, err := FitLinear(series, 1)
	require.NoError(t, err)

	require.Len(t, weights, 1)
	assert.InDelta(t, 0.5, weights[0], 1e-8)
	assert.InDelta(t, 0.25, bias, 1e-8)
}

func TestFitLinear_NoWorseThanNaiveForecast(t *testing.T) {
	series := oscillating(60)
	seq := 3

	weights, bias, err := FitLinear(series, seq)
	require.NoError(t, err)
	require.Len(t, weights, seq)

	// Repeat-last-value is itself a linear map over the window, so the
	// least-squares fit can never have a higher training error.
	var fitSSE, naiveSSE float64
	for i := seq; i < len(series); i++ {
		pred := bias
		for j, w := range weights {
			pred += w * series[i-seq+j]
		}
		fitSSE += (series[i] - pred) * (series[i] - pred)
		naiveSSE += (series[i] - series[i-1]) * (series[i] - series[i-1])
	}

	assert.LessOrEqual(t, fitSSE, naiveSSE+1e-9)
}

func TestFitLinear_InsufficientData(t *testing.T) {
	_, _, err := FitLinear([]float64{0.1, 0.2, 0.3}, 3)
	assert.Error(t, err)
}

type fixedSource struct {
	series marketdata.Series
}

func (f *fixedSource) Get(ctx context.Context, symbol, period string, interval market.Interval) (marketdata.Series, error) {
	return f.series, nil
}

func TestTrainer_TrainWritesArtifact(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	closes := oscillating(80)
	series := make(marketdata.Series, len(closes))
	for i, c := range closes {
		series[i] = marketdata.Candle{Timestamp: base.Add(time.Duration(i) * time.Hour), Close: 100 + 50*c}
	}

	store := forecast.NewStore(t.TempDir())
	trainer := NewTrainer(&fixedSource{series: series}, store, 5, testLogger())

	model, err := trainer.Train(context.Background(), "AAPL", market.Interval1h)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", model.Symbol)
	assert.Equal(t, "1h", model.Interval)
	assert.Len(t, model.Weights, 5)
	assert.True(t, store.Exists("AAPL", market.Interval1h))

	loaded, err := store.Load("AAPL", market.Interval1h)
	require.NoError(t, err)

	// The persisted artifact predicts identically to the fresh fit.
	window := []float64{0.2, 0.4, 0.6, 0.5, 0.3}
	fromDisk, err := loaded.Predict(window)
	require.NoError(t, err)
	fromFit, err := model.Predict(window)
	require.NoError(t, err)
	assert.InDelta(t, fromFit, fromDisk, 1e-12)
}
