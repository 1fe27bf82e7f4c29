package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/pkg/httputil"
	"github.com/stonksapi/backend/pkg/logger"
)

const chartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Client fetches price series from the Yahoo Finance chart API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("component", "yahoo"),
		baseURL:    chartBaseURL,
	}
}

// chartResponse mirrors the subset of the chart API payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol         string `json:"symbol"`
				FirstTradeDate int64  `json:"firstTradeDate"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchSeries downloads an OHLC series for symbol over the given
// period ("5d", "2y", "max", ...) at the given interval. Rows with
// missing quotes are dropped; an empty series is returned as-is and
// the caller decides whether that is an error.
func (c *Client) FetchSeries(ctx context.Context, symbol, period string, interval market.Interval) (marketdata.Series, error) {
	endpoint := fmt.Sprintf("%s/%s?range=%s&interval=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(period), url.QueryEscape(string(interval)))

	var payload chartResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s (%s)",
			symbol, payload.Chart.Error.Description, payload.Chart.Error.Code)
	}

	if len(payload.Chart.Result) == 0 {
		return marketdata.Series{}, nil
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return marketdata.Series{}, nil
	}

	quote := result.Indicators.Quote[0]
	series := make(marketdata.Series, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}

		candle := marketdata.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			candle.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			candle.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			candle.Low = *quote.Low[i]
		}

		series = append(series, candle)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"period":   period,
		"interval": string(interval),
		"count":    len(series),
	}).Debug("Fetched series")

	return series, nil
}

// FirstTradeDate returns the symbol's first trading day from the chart
// metadata, used as a retry window when a duration-bounded historical
// request comes back empty.
func (c *Client) FirstTradeDate(ctx context.Context, symbol string) (time.Time, error) {
	endpoint := fmt.Sprintf("%s/%s?range=1d&interval=1d", c.baseURL, url.PathEscape(symbol))

	var payload chartResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &payload); err != nil {
		return time.Time{}, fmt.Errorf("fetch meta for %s: %w", symbol, err)
	}

	if len(payload.Chart.Result) == 0 || payload.Chart.Result[0].Meta.FirstTradeDate == 0 {
		return time.Time{}, fmt.Errorf("no first trade date for %s", symbol)
	}

	return time.Unix(payload.Chart.Result[0].Meta.FirstTradeDate, 0).UTC(), nil
}
