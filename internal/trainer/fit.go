package trainer

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/stonksapi/backend/internal/forecast"
	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
	"github.com/stonksapi/backend/pkg/logger"
)

// SeriesSource yields the price series models are fitted on.
type SeriesSource interface {
	Get(ctx context.Context, symbol, period string, interval market.Interval) (marketdata.Series, error)
}

// FitLinear fits an autoregressive linear map over sliding windows of
// the scaled series by least squares. It returns the window weights
// and the intercept.
func FitLinear(scaled []float64, seqLength int) ([]float64, float64, error) {
	rows := len(scaled) - seqLength
	cols := seqLength + 1 // window weights plus intercept

	if rows < cols {
		return nil, 0, fmt.Errorf("need at least %d points to fit a window of %d, got %d",
			2*seqLength+1, seqLength, len(scaled))
	}

	// Each row is one window with a trailing 1 for the intercept; the
	// target is the point right after the window.
	x := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < seqLength; j++ {
			x.Set(i, j, scaled[i+j])
		}
		x.Set(i, seqLength, 1)
		y.SetVec(i, scaled[i+seqLength])
	}

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, 0, fmt.Errorf("least squares solve: %w", err)
	}

	weights := make([]float64, seqLength)
	for j := range weights {
		weights[j] = beta.AtVec(j)
	}

	return weights, beta.AtVec(seqLength), nil
}

// Trainer fits and persists model artifacts in-process. The generated
// training scripts call back into this through the CLI.
type Trainer struct {
	source    SeriesSource
	store     *forecast.Store
	seqLength int
	logger    *logger.Logger
}

// NewTrainer creates a trainer writing artifacts through store.
func NewTrainer(source SeriesSource, store *forecast.Store, seqLength int, log *logger.Logger) *Trainer {
	return &Trainer{
		source:    source,
		store:     store,
		seqLength: seqLength,
		logger:    log.WithField("component", "trainer"),
	}
}

// Train fetches history for (symbol, interval), fits a fresh model and
// atomically replaces the stored artifact.
func (t *Trainer) Train(ctx context.Context, symbol string, interval market.Interval) (*forecast.LinearModel, error) {
	// The training window matches what the forecast path fetches.
	_, sourcePeriod, err := market.Resolve(market.OpPredict, interval, "")
	if err != nil {
		return nil, err
	}

	series, err := t.source.Get(ctx, symbol, sourcePeriod, interval)
	if err != nil {
		return nil, err
	}

	scaler := forecast.NewMinMaxScaler()
	scaled, err := scaler.FitTransform(series.Closes())
	if err != nil {
		return nil, err
	}

	weights, bias, err := FitLinear(scaled, t.seqLength)
	if err != nil {
		return nil, err
	}

	model := &forecast.LinearModel{
		Symbol:    symbol,
		Interval:  string(interval),
		SeqLength: t.seqLength,
		Weights:   weights,
		Bias:      bias,
		TrainedAt: time.Now().UTC(),
	}

	if err := t.store.Save(symbol, interval, model); err != nil {
		return nil, err
	}

	t.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"interval": string(interval),
		"points":   len(scaled),
	}).Info("Model artifact replaced")

	return model, nil
}
