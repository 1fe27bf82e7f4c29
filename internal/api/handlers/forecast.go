package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stonksapi/backend/internal/forecast"
	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/pkg/logger"
)

// Forecaster produces prediction sequences.
type Forecaster interface {
	Forecast(ctx context.Context, symbol string, interval market.Interval, duration string) (*forecast.Forecast, error)
}

// ForecastHandler handles the prediction endpoint.
type ForecastHandler struct {
	engine Forecaster
	logger *logger.Logger
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(engine Forecaster, log *logger.Logger) *ForecastHandler {
	return &ForecastHandler{engine: engine, logger: log}
}

// Predict returns future price points for a symbol.
// GET /api/predict/{symbol}?interval=1h&duration=5
func (h *ForecastHandler) Predict(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	interval := market.Interval(queryDefault(r, "interval", string(market.Interval1h)))
	duration := r.URL.Query().Get("duration")

	fc, err := h.engine.Forecast(r.Context(), symbol, interval, duration)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Prediction failed")
		respondServiceError(w, err)
		return
	}

	respondSuccess(w, "Prediction generated", fc)
}

func queryDefault(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}
