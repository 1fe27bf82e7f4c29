package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
)

type fakeRunner struct {
	launched []string
}

func (f *fakeRunner) RunScripts(ctx context.Context, scripts []string) {
	f.launched = append(f.launched, scripts...)
}

type fakeSeriesChecker struct {
	err error
}

func (f *fakeSeriesChecker) Get(ctx context.Context, symbol, period string, interval market.Interval) (marketdata.Series, error) {
	if f.err != nil {
		return nil, f.err
	}
	return marketdata.Series{{Close: 100}}, nil
}

func postCreateModel(t *testing.T, h *TrainHandler, target, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	r := mux.NewRouter()
	r.HandleFunc("/api/models/{symbol}", h.CreateModel).Methods("POST")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.ServeHTTP(rec, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestTrainHandler_CreateModel(t *testing.T) {
	runner := &fakeRunner{}
	h := NewTrainHandler(t.TempDir(), "/usr/local/bin/stonks", runner, &fakeSeriesChecker{}, testLogger())

	rec, env := postCreateModel(t, h, "/api/models/aapl", `{"intervals": ["1m", "1h"]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.Len(t, runner.launched, 2)
	assert.Contains(t, runner.launched[0], "1m_AAPL.sh")
}

func TestTrainHandler_CreateModel_UnknownSymbol(t *testing.T) {
	h := NewTrainHandler(t.TempDir(), "/usr/local/bin/stonks", &fakeRunner{},
		&fakeSeriesChecker{err: marketdata.ErrNoData}, testLogger())

	rec, env := postCreateModel(t, h, "/api/models/GHOST", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestTrainHandler_CreateModel_Conflict(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	h := NewTrainHandler(dir, "/usr/local/bin/stonks", runner, &fakeSeriesChecker{}, testLogger())

	rec, _ := postCreateModel(t, h, "/api/models/AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := postCreateModel(t, h, "/api/models/AAPL", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
}

func TestTrainHandler_CreateModel_InvalidInterval(t *testing.T) {
	h := NewTrainHandler(t.TempDir(), "/usr/local/bin/stonks", &fakeRunner{}, &fakeSeriesChecker{}, testLogger())

	rec, env := postCreateModel(t, h, "/api/models/AAPL", `{"intervals": ["2w"]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}
