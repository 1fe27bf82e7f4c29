package marketdata

import (
	"context"
	"time"

	"github.com/stonksapi/backend/internal/market"
)

// Candle is one OHLC bar of a price series.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// Series is an ordered price series with strictly increasing
// timestamps. Transformations return new slices; a Series handed out
// by the cache is never mutated in place.
type Series []Candle

// Closes returns the closing prices as a new slice.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// LastTimestamp returns the timestamp of the most recent candle.
// The zero time is returned for an empty series.
func (s Series) LastTimestamp() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Timestamp
}

// Tail returns the last n candles (all of them when n exceeds the length).
func (s Series) Tail(n int) Series {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Provider fetches price series from the upstream market-data source.
type Provider interface {
	FetchSeries(ctx context.Context, symbol, period string, interval market.Interval) (Series, error)
}
