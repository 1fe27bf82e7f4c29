package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/internal/trainer"
	"github.com/stonksapi/backend/pkg/logger"
)

// ScriptRunner launches freshly generated training artifacts.
type ScriptRunner interface {
	RunScripts(ctx context.Context, scripts []string)
}

// SeriesChecker verifies a symbol has upstream data before artifacts
// are generated for it.
type SeriesChecker interface {
	Get(ctx context.Context, symbol, period string, interval market.Interval) (marketdata.Series, error)
}

// TrainHandler handles model creation requests.
type TrainHandler struct {
	scriptsDir string
	binary     string
	runner     ScriptRunner
	series     SeriesChecker
	logger     *logger.Logger
}

// NewTrainHandler creates a new train handler. binary is the CLI
// executable the generated artifacts invoke.
func NewTrainHandler(scriptsDir, binary string, runner ScriptRunner, series SeriesChecker, log *logger.Logger) *TrainHandler {
	return &TrainHandler{
		scriptsDir: scriptsDir,
		binary:     binary,
		runner:     runner,
		series:     series,
		logger:     log,
	}
}

// CreateModelRequest selects which cadences to generate artifacts for.
type CreateModelRequest struct {
	Intervals []string `json:"intervals"`
}

// CreateModel generates the training artifacts for a symbol and kicks
// off their first run.
// POST /api/models/{symbol}
func (h *TrainHandler) CreateModel(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	var req CreateModelRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	intervals := make([]market.Interval, 0, len(req.Intervals))
	for _, raw := range req.Intervals {
		interval := market.Interval(raw)
		if _, _, err := market.Resolve(market.OpPredict, interval, ""); err != nil {
			respondServiceError(w, err)
			return
		}
		intervals = append(intervals, interval)
	}
	if len(intervals) == 0 {
		intervals = market.SupportedIntervals(market.OpPredict)
	}

	// An unknown ticker gets no artifacts.
	if _, err := h.series.Get(r.Context(), symbol, "5d", market.Interval1d); err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Symbol check failed")
		respondServiceError(w, err)
		return
	}

	written, err := trainer.WriteArtifacts(h.scriptsDir, h.binary, symbol, intervals)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Artifact generation failed")
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	// Training outlives the request; do not tie it to r.Context().
	h.runner.RunScripts(context.Background(), written)

	h.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"artifacts": len(written),
	}).Info("Model creation started")

	respondSuccess(w, "Model training started", map[string]interface{}{
		"symbol":    symbol,
		"artifacts": written,
	})
}
