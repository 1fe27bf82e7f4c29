package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/stonksapi/backend/internal/api/handlers"
	"github.com/stonksapi/backend/pkg/logger"
)

// Handlers bundles the endpoint handlers the router mounts. Optional
// surfaces may be nil and their routes are simply not registered.
type Handlers struct {
	Forecast  *handlers.ForecastHandler
	History   *handlers.HistoryHandler
	Overview  *handlers.OverviewHandler
	Market    *handlers.MarketHandler
	Train     *handlers.TrainHandler
	Scheduler *handlers.SchedulerHandler
}

// NewRouter creates and configures the HTTP router.
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/predict/{symbol}", h.Forecast.Predict).Methods("GET")
	api.HandleFunc("/past-values/{symbol}", h.History.PastValues).Methods("GET")
	api.HandleFunc("/historical-data/{symbol}", h.History.HistoricalData).Methods("GET")
	api.HandleFunc("/stock-overview", h.Overview.Overview).Methods("GET")
	api.HandleFunc("/market/state", h.Market.State).Methods("GET")
	api.HandleFunc("/market/stream", h.Market.Stream).Methods("GET")

	if h.Train != nil {
		api.HandleFunc("/models/{symbol}", h.Train.CreateModel).Methods("POST")
	}
	if h.Scheduler != nil {
		api.HandleFunc("/scheduler/jobs", h.Scheduler.Jobs).Methods("GET")
		api.HandleFunc("/scheduler/jobs/{name}/run", h.Scheduler.RunJob).Methods("POST")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "stonks-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
