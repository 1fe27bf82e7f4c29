package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/pkg/logger"
)

// SeriesSource yields the (possibly cached) price series the engine
// forecasts from.
type SeriesSource interface {
	Get(ctx context.Context, symbol, period string, interval market.Interval) (marketdata.Series, error)
}

// ModelSource resolves trained model artifacts.
type ModelSource interface {
	Exists(symbol string, interval market.Interval) bool
	Load(symbol string, interval market.Interval) (Model, error)
}

// HistoryWriter persists served forecasts for later accuracy review.
type HistoryWriter interface {
	SaveForecast(ctx context.Context, f *Forecast) error
}

// Forecast is one served prediction sequence. Prices and Timestamps
// are parallel slices of the requested duration.
type Forecast struct {
	Symbol      string          `json:"symbol"`
	Interval    market.Interval `json:"interval"`
	Prices      []float64       `json:"prices"`
	Timestamps  []time.Time     `json:"timestamps"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Engine turns a short history window into a multi-step-ahead
// prediction sequence by feeding each predicted point back into the
// model's input window.
type Engine struct {
	series    SeriesSource
	models    ModelSource
	seqLength int
	history   HistoryWriter // optional, may be nil
	logger    *logger.Logger
}

// NewEngine creates a forecast engine. history may be nil to disable
// persistence of served forecasts.
func NewEngine(series SeriesSource, models ModelSource, seqLength int, history HistoryWriter, log *logger.Logger) *Engine {
	return &Engine{
		series:    series,
		models:    models,
		seqLength: seqLength,
		history:   history,
		logger:    log.WithField("component", "forecast.engine"),
	}
}

// Forecast produces duration future points for (symbol, interval).
// duration is the raw request value; empty means the interval default.
func (e *Engine) Forecast(ctx context.Context, symbol string, interval market.Interval, duration string) (*Forecast, error) {
	steps, sourcePeriod, err := market.Resolve(market.OpPredict, interval, duration)
	if err != nil {
		return nil, err
	}

	series, err := e.series.Get(ctx, symbol, sourcePeriod, interval)
	if err != nil {
		return nil, err
	}

	closes := series.Closes()
	if len(closes) < e.seqLength {
		return nil, fmt.Errorf("%w: %d points fetched, %d needed for the input window",
			marketdata.ErrNoData, len(closes), e.seqLength)
	}

	// The scaler is fitted on the full fetched series for every call;
	// the same instance inverts the predictions below.
	scaler := NewMinMaxScaler()
	scaled, err := scaler.FitTransform(closes)
	if err != nil {
		return nil, err
	}

	window := make([]float64, e.seqLength)
	copy(window, scaled[len(scaled)-e.seqLength:])

	if !e.models.Exists(symbol, interval) {
		return nil, ErrModelNotFound
	}

	model, err := e.models.Load(symbol, interval)
	if err != nil {
		return nil, err
	}

	// Autoregressive loop: each prediction is appended to the window
	// and the oldest point dropped, so step i+1 sees the engine's own
	// prior outputs rather than ground truth.
	predictions := make([]float64, 0, steps)
	for i := 0; i < steps; i++ {
		next, err := model.Predict(window)
		if err != nil {
			return nil, fmt.Errorf("predict step %d: %w", i+1, err)
		}

		predictions = append(predictions, next)
		window = append(window[1:], next)
	}

	timestamps, err := market.NextTimestamps(interval, series.LastTimestamp(), steps)
	if err != nil {
		return nil, err
	}

	prices, err := scaler.InverseTransform(predictions)
	if err != nil {
		return nil, err
	}

	result := &Forecast{
		Symbol:      symbol,
		Interval:    interval,
		Prices:      prices,
		Timestamps:  timestamps,
		GeneratedAt: time.Now().UTC(),
	}

	if e.history != nil {
		if err := e.history.SaveForecast(ctx, result); err != nil {
			e.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to persist forecast")
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"interval": string(interval),
		"steps":    steps,
	}).Debug("Forecast generated")

	return result, nil
}
