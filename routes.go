package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// setupRouter configures all routes and middleware.
func setupRouter(a *app) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reports", ListReportsHandler(a.service)).Methods("GET")
	api.HandleFunc("/reports/generate/{eventID:[0-9]+}", GenerateReportHandler(a.service)).Methods("POST")
	api.HandleFunc("/reports/batch", BatchReportsHandler(a.service)).Methods("POST")
	api.HandleFunc("/reports/{id:[0-9]+}/download", DownloadReportHandler(a.service)).Methods("GET")
	api.HandleFunc("/config", GetConfigHandler()).Methods("GET")
	api.HandleFunc("/config", SaveConfigHandler()).Methods("POST")

	checks := map[string]healthChecker{"database": dbPinger{a.db}}
	if a.archive != nil {
		checks["archive"] = a.archive
	}
	r.HandleFunc("/health", HealthHandler(checks)).Methods("GET")
	r.Handle("/metrics", a.recorder.Handler()).Methods("GET")

	log.Info().Msg("Routes configured successfully")
	return r
}

type dbPinger struct {
	db interface{ PingContext(context.Context) error }
}

func (p dbPinger) HealthCheck(ctx context.Context) error { return p.db.PingContext(ctx) }

// loggingMiddleware logs all HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration_ms", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP request")
	})
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Panic recovered")

				writeJSONError(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
