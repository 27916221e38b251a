// Package server exposes the question-answering system over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/moiesk/courserag/internal/model"
	"github.com/moiesk/courserag/internal/rag"
)

// QuerySystem is the rag facade surface the HTTP layer depends on.
type QuerySystem interface {
	Query(ctx context.Context, sessionID, question string) (rag.Answer, error)
	NewSession() string
	ClearSession(sessionID string)
	CourseAnalytics(ctx context.Context) (rag.Analytics, error)
}

type Server struct {
	sys     QuerySystem
	metrics *Metrics
	log     zerolog.Logger
}

func New(sys QuerySystem, metrics *Metrics, logger zerolog.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{sys: sys, metrics: metrics, log: logger}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/courses", s.handleCourses)
	mux.HandleFunc("POST /api/sessions/clear", s.handleClearSession)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	return s.logRequests(mux)
}

// Serve blocks handling HTTP on the listener. Cancel ctx to initiate graceful
// shutdown; in-flight requests are allowed to drain.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      150 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type queryResponse struct {
	Answer    string         `json:"answer"`
	Sources   []model.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.sys.NewSession()
	}

	start := time.Now()
	answer, err := s.sys.Query(r.Context(), sessionID, req.Query)
	s.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.QueriesTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("session", sessionID).Msg("query failed")
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.metrics.QueriesTotal.WithLabelValues("ok").Inc()
	s.metrics.ToolDispatchesTotal.Add(float64(answer.ToolCalls))

	sources := answer.Sources
	if sources == nil {
		sources = []model.Source{}
	}
	s.writeJSON(w, http.StatusOK, queryResponse{Answer: answer.Text, Sources: sources, SessionID: sessionID})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	stats, err := s.sys.CourseAnalytics(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("course analytics failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if stats.CourseTitles == nil {
		stats.CourseTitles = []string{}
	}
	s.writeJSON(w, http.StatusOK, stats)
}

type clearSessionRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	var req clearSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	s.sys.ClearSession(req.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("response write failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
