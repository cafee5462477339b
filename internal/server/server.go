// Package server exposes the study pipeline over HTTP: session lifecycle,
// pipeline runs (plain and websocket-streamed), quiz grading, roadmap
// generation, history and the subject catalog.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/onyx-team/studymate/internal/ai"
	"github.com/onyx-team/studymate/internal/curriculum"
	"github.com/onyx-team/studymate/internal/study"
)

// Server holds the handler dependencies.
type Server struct {
	store    study.SessionStore
	pipeline *study.Pipeline
	catalog  *curriculum.Catalog
	history  study.HistoryLogger
	usage    *ai.InMemoryUsage
	logger   *slog.Logger
	ready    []readinessCheck
}

type readinessCheck struct {
	name  string
	check func(context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHistoryLogger sets the external run logger.
func WithHistoryLogger(logger study.HistoryLogger) Option {
	return func(s *Server) {
		s.history = logger
	}
}

// WithUsage exposes per-engine token totals on /v1/usage.
func WithUsage(usage *ai.InMemoryUsage) Option {
	return func(s *Server) {
		s.usage = usage
	}
}

// WithReadinessCheck adds a dependency probe to /readyz.
func WithReadinessCheck(name string, check func(context.Context) error) Option {
	return func(s *Server) {
		s.ready = append(s.ready, readinessCheck{name: name, check: check})
	}
}

// New creates a Server.
func New(store study.SessionStore, pipeline *study.Pipeline, catalog *curriculum.Catalog, opts ...Option) *Server {
	s := &Server{
		store:    store,
		pipeline: pipeline,
		catalog:  catalog,
		history:  study.NopHistoryLogger{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /v1/sessions/{id}/study", s.handleStudy)
	mux.HandleFunc("GET /v1/sessions/{id}/study/ws", s.handleStudyWS)
	mux.HandleFunc("POST /v1/sessions/{id}/quiz/answers", s.handleQuizAnswer)
	mux.HandleFunc("POST /v1/sessions/{id}/quiz/submit", s.handleQuizSubmit)
	mux.HandleFunc("POST /v1/sessions/{id}/quiz/retake", s.handleQuizRetake)
	mux.HandleFunc("POST /v1/sessions/{id}/roadmap", s.handleRoadmap)
	mux.HandleFunc("GET /v1/sessions/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /v1/sessions/{id}/history/export", s.handleHistoryExport)
	mux.HandleFunc("GET /v1/subjects", s.handleSubjects)
	mux.HandleFunc("GET /v1/usage", s.handleUsage)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, rc := range s.ready {
		if err := rc.check(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "check", rc.name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"check":  rc.name,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSubjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"subjects": s.catalog.Subjects()})
}

func (s *Server) handleUsage(w http.ResponseWriter, _ *http.Request) {
	totals := map[string]int64{}
	if s.usage != nil {
		totals = s.usage.Totals()
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": totals})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes. A missing credential
// is the client's engine choice (422), an agent failure is an upstream
// problem (502), quiz state violations conflict with the current state (409).
func statusFor(err error) int {
	var credErr *ai.CredentialError
	var agentErr *study.AgentError
	switch {
	case errors.Is(err, study.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &credErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &agentErr):
		return http.StatusBadGateway
	case errors.Is(err, study.ErrQuizSubmitted),
		errors.Is(err, study.ErrQuizNotSubmitted),
		errors.Is(err, study.ErrNoSummary):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}
