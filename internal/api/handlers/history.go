package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stonksapi/backend/internal/history"
	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/pkg/logger"
)

// HistoryReader serves the recent-closes and OHLC read paths.
type HistoryReader interface {
	GetPastValues(ctx context.Context, symbol string, interval market.Interval, duration string) (*history.PastValues, error)
	GetHistoricalData(ctx context.Context, symbol string, interval market.Interval, duration string) ([]marketdata.Candle, error)
}

// HistoryHandler handles the historical read endpoints.
type HistoryHandler struct {
	service HistoryReader
	logger  *logger.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(service HistoryReader, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{service: service, logger: log}
}

// PastValues returns the last N closing prices for a symbol.
// GET /api/past-values/{symbol}?interval=1h&duration=24
func (h *HistoryHandler) PastValues(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	interval := market.Interval(queryDefault(r, "interval", string(market.Interval1h)))
	duration := r.URL.Query().Get("duration")

	values, err := h.service.GetPastValues(r.Context(), symbol, interval, duration)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Past values lookup failed")
		respondServiceError(w, err)
		return
	}

	respondSuccess(w, "Past values retrieved", values)
}

// HistoricalData returns the last N OHLC candles for a symbol.
// GET /api/historical-data/{symbol}?interval=1d&duration=30
func (h *HistoryHandler) HistoricalData(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	interval := market.Interval(queryDefault(r, "interval", string(market.Interval1d)))
	duration := r.URL.Query().Get("duration")

	candles, err := h.service.GetHistoricalData(r.Context(), symbol, interval, duration)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Historical data lookup failed")
		respondServiceError(w, err)
		return
	}

	respondSuccess(w, "Historical data retrieved", candles)
}
