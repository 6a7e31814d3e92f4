// Package api serves the analytics engine over HTTP for dashboard clients.
// It exposes the same computations as the stdio tool server, keyed by query
// parameters instead of tool arguments.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"civic-insight/internal/config"
	"civic-insight/internal/explain"
	"civic-insight/internal/store"
)

// Server is the HTTP analytics server.
type Server struct {
	cfg     *config.AppConfig
	store   store.RecordStore
	explain *explain.Client
}

// NewServer creates an HTTP server bound to a record store.
func NewServer(cfg *config.AppConfig, st store.RecordStore) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		explain: explain.NewClient(cfg.ExplainURL, cfg.ExplainTimeout),
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/sources", s.handleSources)

	r.Route("/api/analytics", func(r chi.Router) {
		r.Get("/overview", s.handleOverview)
		r.Get("/pain-matrix", s.handlePainMatrix)
		r.Get("/scorecard", s.handleScorecard)
		r.Get("/full-report", s.handleFullReport)
	})

	r.Route("/api/predictive", func(r chi.Router) {
		r.Get("/rising-subtopics", s.handleRisingSubtopics)
		r.Get("/ward-risk", s.handleWardRisk)
		r.Get("/chronic-issues", s.handleChronicIssues)
		r.Post("/explain", s.handleExplain)
	})

	return r
}

// Start runs the server until the context is canceled, then drains in-flight
// requests for up to 10 seconds.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		id, _ := r.Context().Value(requestIDKey).(string)
		log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
