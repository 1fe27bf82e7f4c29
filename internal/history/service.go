package history

import (
	"context"
	"errors"
	"time"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/pkg/logger"
)

// SeriesSource yields cached price series, same contract as the
// forecast engine's source.
type SeriesSource interface {
	Get(ctx context.Context, symbol, period string, interval market.Interval) (marketdata.Series, error)
}

// DebutSource resolves a symbol's first trading day, used to widen the
// fetch window when a bounded historical request comes back empty.
type DebutSource interface {
	FirstTradeDate(ctx context.Context, symbol string) (time.Time, error)
}

// Service serves the historical/recent read paths.
type Service struct {
	source SeriesSource
	debuts DebutSource
	logger *logger.Logger
}

// NewService creates a history service. debuts may be nil to disable
// the debut-date retry.
func NewService(source SeriesSource, debuts DebutSource, log *logger.Logger) *Service {
	return &Service{
		source: source,
		debuts: debuts,
		logger: log.WithField("component", "history"),
	}
}

// PastValues is the recent-closes read result.
type PastValues struct {
	Prices     []float64   `json:"prices"`
	Timestamps []time.Time `json:"timestamps"`
}

// GetPastValues returns the last duration closing prices for a symbol.
func (s *Service) GetPastValues(ctx context.Context, symbol string, interval market.Interval, duration string) (*PastValues, error) {
	n, period, err := market.Resolve(market.OpPastValues, interval, duration)
	if err != nil {
		return nil, err
	}

	series, err := s.source.Get(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}

	tail := series.Tail(n)
	return &PastValues{
		Prices:     tail.Closes(),
		Timestamps: timestampsOf(tail),
	}, nil
}

// GetHistoricalData returns the last duration OHLC candles for a
// symbol. When the tabled fetch window yields nothing for a listed
// symbol, the request is retried over the symbol's full listing
// history.
func (s *Service) GetHistoricalData(ctx context.Context, symbol string, interval market.Interval, duration string) ([]marketdata.Candle, error) {
	n, period, err := market.Resolve(market.OpHistoricalData, interval, duration)
	if err != nil {
		return nil, err
	}

	series, err := s.source.Get(ctx, symbol, period, interval)
	if errors.Is(err, marketdata.ErrNoData) && period != "max" && s.debuts != nil {
		debut, derr := s.debuts.FirstTradeDate(ctx, symbol)
		if derr != nil {
			return nil, err
		}

		s.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"debut":  debut.Format("2006-01-02"),
			"period": period,
		}).Info("Empty window, retrying from first trade date")

		series, err = s.source.Get(ctx, symbol, "max", interval)
	}
	if err != nil {
		return nil, err
	}

	return series.Tail(n), nil
}

func timestampsOf(series marketdata.Series) []time.Time {
	out := make([]time.Time, len(series))
	for i, c := range series {
		out[i] = c.Timestamp
	}
	return out
}
