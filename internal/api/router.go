package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/minsuk/revpulse/internal/api/handlers"
	"github.com/minsuk/revpulse/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	metrics *handlers.MetricsHandler,
	matrix *handlers.MatrixHandler,
	billing *handlers.BillingHandler,
	hub *Hub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API
	api := r.PathPrefix("/api").Subrouter()

	// Metrics endpoints
	api.HandleFunc("/metrics/monthly", metrics.GetMonthly).Methods("GET")
	api.HandleFunc("/metrics/customers", metrics.GetCustomers).Methods("GET")
	api.HandleFunc("/metrics/cohorts", metrics.GetCohorts).Methods("GET")
	api.HandleFunc("/matrix/issues", metrics.GetIssues).Methods("GET")
	api.HandleFunc("/reports/latest", metrics.GetLatestSnapshot).Methods("GET")

	// Matrix management
	api.HandleFunc("/matrix/upload", matrix.Upload).Methods("POST")
	api.HandleFunc("/billing/sync", billing.Sync).Methods("POST")

	// Refresh event stream
	api.HandleFunc("/stream", hub.HandleStream).Methods("GET")

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
		"service": "revpulse-api",
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
