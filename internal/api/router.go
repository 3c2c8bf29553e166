package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/service"
	"github.com/meteora/weather-history/internal/stats"
)

// NewRouter creates a new HTTP router. A nil gatherer disables /metrics.
func NewRouter(
	service service.ServiceInterface,
	statsCollector *stats.Collector,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *mux.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(service, logger)

	router := mux.NewRouter()
	router.Use(accessLog(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/geo/resolve", handler.ResolveLocation).Methods("POST")
	v1.HandleFunc("/geo/reverse", handler.ReverseLocation).Methods("POST")
	v1.HandleFunc("/weather/fetch", handler.FetchWeather).Methods("POST")
	v1.HandleFunc("/requests", handler.ListRequests).Methods("GET")
	v1.HandleFunc("/requests", handler.CreateRequest).Methods("POST")
	v1.HandleFunc("/requests/{id}", handler.GetRequest).Methods("GET")
	v1.HandleFunc("/requests/{id}", handler.UpdateRequest).Methods("PATCH")
	v1.HandleFunc("/requests/{id}", handler.DeleteRequest).Methods("DELETE")
	v1.HandleFunc("/export", handler.ExportRequests).Methods("GET")
	if statsCollector != nil {
		statsHandler := NewStatsHandler(statsCollector, logger)
		v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")
	}

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
