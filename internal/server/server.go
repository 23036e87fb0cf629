// Package server exposes the learning-path API over HTTP: path creation with
// SSE and WebSocket progress streaming, path queries, assessments and
// schedule exports.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/studysync/studysync/internal/ai"
	"github.com/studysync/studysync/internal/generator"
	"github.com/studysync/studysync/internal/path"
	"github.com/studysync/studysync/internal/store"
)

// PathRunner executes one learning-path generation run, reporting progress
// through the bus.
type PathRunner interface {
	Run(ctx context.Context, req path.Request, bus *path.ProgressBus) (path.LearningPath, error)
}

// AssessmentGenerator produces proficiency questionnaire questions.
type AssessmentGenerator interface {
	GenerateProficiencyQuestions(ctx context.Context, topic string) []generator.ProficiencyQuestion
}

// GuideGenerator produces markdown study guides for modules.
type GuideGenerator interface {
	GenerateStudyGuide(ctx context.Context, moduleTitle string, subtopics []string) string
}

// Config holds the collaborators for a Server.
type Config struct {
	Store       store.PathStore
	Runner      PathRunner
	Assessments AssessmentGenerator
	Guides      GuideGenerator
	// Usage backs the token-usage stats endpoint. Optional.
	Usage *ai.UsageTracker
	// ReadyChecks are probed by /readyz; a failing check makes the
	// server report not ready.
	ReadyChecks map[string]func(context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	store       store.PathStore
	runner      PathRunner
	assessments AssessmentGenerator
	guides      GuideGenerator
	usage       *ai.UsageTracker
	readyChecks map[string]func(context.Context) error
}

// New creates a Server. Store and Runner are required; Assessments and
// Guides are optional and disable their endpoints when nil.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	return &Server{
		store:       cfg.Store,
		runner:      cfg.Runner,
		assessments: cfg.Assessments,
		guides:      cfg.Guides,
		usage:       cfg.Usage,
		readyChecks: cfg.ReadyChecks,
	}, nil
}

// Handler builds the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/learning-paths", s.handleCreatePath)
	mux.HandleFunc("GET /api/learning-paths/create/stream", s.handleCreatePathStream)
	mux.HandleFunc("GET /api/learning-paths/create/ws", s.handleCreatePathWS)
	mux.HandleFunc("GET /api/learning-paths", s.handleListPaths)
	mux.HandleFunc("GET /api/learning-paths/{id}", s.handleGetPath)
	mux.HandleFunc("GET /api/learning-paths/{id}/sessions", s.handleGetSessions)
	mux.HandleFunc("GET /api/learning-paths/{id}/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/learning-paths/{id}/modules/{moduleID}/guide", s.handleStudyGuide)

	mux.HandleFunc("POST /api/assessments/proficiency", s.handleProficiency)
	mux.HandleFunc("GET /api/assessments/quiz/{moduleID}", s.handleGetQuiz)
	mux.HandleFunc("POST /api/assessments/quiz/{moduleID}/submit", s.handleSubmitQuiz)

	mux.HandleFunc("POST /api/schedule/sessions/{sessionID}/complete", s.handleCompleteSession)
	mux.HandleFunc("GET /api/schedule/{id}/ics", s.handleExportICS)
	mux.HandleFunc("GET /api/schedule/{id}/xlsx", s.handleExportXLSX)

	mux.HandleFunc("GET /api/stats/usage", s.handleUsageStats)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	return mux
}

// handleUsageStats reports the AI token spend accumulated since startup.
func (s *Server) handleUsageStats(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		respondError(w, http.StatusServiceUnavailable, "usage tracking is not configured")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"total_tokens":   s.usage.Total(),
		"tokens_by_task": s.usage.Snapshot(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for name, check := range s.readyChecks {
		if err := check(r.Context()); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			respondJSON(w, http.StatusServiceUnavailable,
				map[string]string{"status": "not ready", "failed": name})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
