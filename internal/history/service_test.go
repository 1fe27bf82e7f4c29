package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/pkg/config"
	"github.com/stonksapi/backend/pkg/logger"
)

type fakeSource struct {
	byPeriod map[string]marketdata.Series
	err      error
	calls    []string
}

func (f *fakeSource) Get(ctx context.Context, symbol, period string, interval market.Interval) (marketdata.Series, error) {
	f.calls = append(f.calls, period)
	if series, ok := f.byPeriod[period]; ok {
		return series, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return nil, marketdata.ErrNoData
}

type fakeDebuts struct {
	debut time.Time
	err   error
}

func (f *fakeDebuts) FirstTradeDate(ctx context.Context, symbol string) (time.Time, error) {
	return f.debut, f.err
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func dailySeries(n int) marketdata.Series {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	s := make(marketdata.Series, n)
	for i := range s {
		s[i] = marketdata.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      99 + float64(i),
			High:      101 + float64(i),
			Low:       98 + float64(i),
			Close:     100 + float64(i),
		}
	}
	return s
}

func TestService_GetPastValues(t *testing.T) {
	series := dailySeries(200)
	source := &fakeSource{byPeriod: map[string]marketdata.Series{"1mo": series[:40], "5d": series[:40]}}
	svc := NewService(source, nil, testLogger())

	// 1h past-values resolves to the "1mo" source window.
	got, err := svc.GetPastValues(context.Background(), "AAPL", market.Interval1h, "10")
	require.NoError(t, err)

	require.Len(t, got.Prices, 10)
	require.Len(t, got.Timestamps, 10)
	assert.Equal(t, series[39].Close, got.Prices[9])
	assert.Equal(t, series[30].Close, got.Prices[0])
	assert.Equal(t, series[39].Timestamp, got.Timestamps[9])
}

func TestService_GetPastValues_DefaultDuration(t *testing.T) {
	source := &fakeSource{byPeriod: map[string]marketdata.Series{"1mo": dailySeries(120)}}
	svc := NewService(source, nil, testLogger())

	got, err := svc.GetPastValues(context.Background(), "AAPL", market.Interval1h, "")
	require.NoError(t, err)
	assert.Len(t, got.Prices, 24)
}

func TestService_GetPastValues_Errors(t *testing.T) {
	source := &fakeSource{byPeriod: map[string]marketdata.Series{"1mo": dailySeries(10)}}
	svc := NewService(source, nil, testLogger())

	_, err := svc.GetPastValues(context.Background(), "AAPL", market.Interval("2h"), "")
	assert.ErrorIs(t, err, market.ErrInvalidInterval)

	_, err = svc.GetPastValues(context.Background(), "AAPL", market.Interval1h, "later")
	assert.ErrorIs(t, err, market.ErrNonIntegerDuration)

	_, err = svc.GetPastValues(context.Background(), "AAPL", market.Interval1h, "0")
	assert.ErrorIs(t, err, market.ErrDurationOutOfRange)
}

func TestService_GetHistoricalData(t *testing.T) {
	series := dailySeries(60)
	source := &fakeSource{byPeriod: map[string]marketdata.Series{"5y": series}}
	svc := NewService(source, nil, testLogger())

	got, err := svc.GetHistoricalData(context.Background(), "AAPL", market.Interval1d, "30")
	require.NoError(t, err)

	require.Len(t, got, 30)
	assert.Equal(t, series[59], got[29])
	assert.Equal(t, series[30], got[0])
}

func TestService_GetHistoricalData_DebutRetry(t *testing.T) {
	// The tabled window is empty for a recent listing; the service
	// widens to the full listing history.
	series := dailySeries(8)
	source := &fakeSource{byPeriod: map[string]marketdata.Series{"max": series}}
	debuts := &fakeDebuts{debut: series[0].Timestamp}
	svc := NewService(source, debuts, testLogger())

	got, err := svc.GetHistoricalData(context.Background(), "NEWCO", market.Interval1d, "30")
	require.NoError(t, err)

	assert.Equal(t, []string{"5y", "max"}, source.calls)
	assert.Len(t, got, 8)
}

func TestService_GetHistoricalData_NoRetryWithoutDebut(t *testing.T) {
	source := &fakeSource{}
	svc := NewService(source, &fakeDebuts{err: errors.New("lookup failed")}, testLogger())

	_, err := svc.GetHistoricalData(context.Background(), "GHOST", market.Interval1d, "30")
	assert.ErrorIs(t, err, marketdata.ErrNoData)
	assert.Equal(t, []string{"5y"}, source.calls)
}
