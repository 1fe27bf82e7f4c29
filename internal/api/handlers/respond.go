package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stonksapi/backend/internal/forecast"
	"github.com/stonksapi/backend/internal/market"
	"github.com/stonksapi/backend/internal/marketdata"
)

// Envelope is the uniform response body of every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondSuccess(w http.ResponseWriter, message string, data interface{}) {
	respondJSON(w, http.StatusOK, Envelope{
		Success: true,
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Envelope{
		Success: false,
		Status:  status,
		Message: message,
	})
}

// respondServiceError maps a domain error onto its HTTP status. The
// error's own message is the response message; internals get a generic
// one so upstream details never leak.
func respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, forecast.ErrModelLoad) {
		message = "Internal server error"
	}
	respondError(w, status, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrInvalidInterval),
		errors.Is(err, market.ErrDurationOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrNonIntegerDuration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, marketdata.ErrNoData),
		errors.Is(err, forecast.ErrModelNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
