package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/studysync/studysync/internal/path"
)

// createPathRequest is the JSON body for synchronous path creation.
type createPathRequest struct {
	Topic               string                    `json:"topic"`
	CommitmentLevel     string                    `json:"commitment_level"`
	ProficiencyLevel    string                    `json:"proficiency_level"`
	StartDate           string                    `json:"start_date"`
	EndDate             string                    `json:"end_date"`
	PreferredTime       string                    `json:"preferred_time"`
	AssessmentResponses []path.AssessmentResponse `json:"assessment_responses"`
}

func (s *Server) handleCreatePath(w http.ResponseWriter, r *http.Request) {
	var body createPathRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req, err := body.toRequest()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// nil bus discards progress; the synchronous endpoint has nowhere to
	// stream it.
	lp, err := s.runner.Run(r.Context(), req, nil)
	if err != nil {
		slog.Error("learning path run failed", "topic", req.Topic, "error", err)
		respondError(w, http.StatusInternalServerError, "error creating learning path")
		return
	}

	id, err := s.store.CreatePath(lp)
	if err != nil {
		slog.Error("saving learning path", "topic", req.Topic, "error", err)
		respondError(w, http.StatusInternalServerError, "error saving learning path")
		return
	}
	lp.ID = id

	respondJSON(w, http.StatusCreated, lp)
}

func (r createPathRequest) toRequest() (path.Request, error) {
	if r.Topic == "" {
		return path.Request{}, fmt.Errorf("topic is required")
	}
	start, err := parseDate(r.StartDate)
	if err != nil {
		return path.Request{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return path.Request{}, fmt.Errorf("invalid end_date: %w", err)
	}
	return path.Request{
		Topic:               r.Topic,
		AssessmentResponses: r.AssessmentResponses,
		ProficiencyLevel:    r.ProficiencyLevel,
		CommitmentLevel:     r.CommitmentLevel,
		StartDate:           start,
		EndDate:             end,
		PreferredTime:       r.PreferredTime,
	}, nil
}

// requestFromQuery builds a run request from URL query parameters. The
// streaming endpoints use GET, so everything arrives in the query string and
// assessment responses come JSON-encoded.
func requestFromQuery(q url.Values) (path.Request, error) {
	body := createPathRequest{
		Topic:            q.Get("topic"),
		CommitmentLevel:  q.Get("commitment_level"),
		ProficiencyLevel: q.Get("proficiency_level"),
		StartDate:        q.Get("start_date"),
		EndDate:          q.Get("end_date"),
		PreferredTime:    q.Get("preferred_time"),
	}
	if raw := q.Get("assessment_responses"); raw != "" {
		// Malformed responses are ignored rather than rejected; the run
		// falls back to beginner classification.
		if err := json.Unmarshal([]byte(raw), &body.AssessmentResponses); err != nil {
			slog.Warn("ignoring malformed assessment_responses", "error", err)
		}
	}
	return body.toRequest()
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// runAndSave executes a generation run in the background and reports the
// outcome as a terminal bus event. The terminal event for a successful run
// carries the persisted learning_path_id.
func (s *Server) runAndSave(ctx context.Context, req path.Request, bus *path.ProgressBus) {
	lp, err := s.runner.Run(ctx, req, bus)
	if err != nil {
		slog.Error("learning path run failed", "topic", req.Topic, "error", err)
		bus.Error(fmt.Sprintf("Error creating learning path: %s", err), nil)
		return
	}

	id, err := s.store.CreatePath(lp)
	if err != nil {
		slog.Error("saving learning path", "topic", req.Topic, "error", err)
		bus.Error(fmt.Sprintf("Error saving learning path: %s", err), nil)
		return
	}

	bus.Complete("Learning path created successfully!",
		map[string]any{"learning_path_id": id})
}

func (s *Server) handleCreatePathStream(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// A dropped connection cancels the run through the request context.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	bus := path.NewProgressBus()
	defer bus.Close()
	go s.runAndSave(ctx, req, bus)

	rc := http.NewResponseController(w)
	for event := range bus.Stream(ctx) {
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("encoding progress event", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (s *Server) handleCreatePathWS(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// CloseRead surfaces client disconnects by cancelling the context.
	ctx, cancel := context.WithCancel(conn.CloseRead(r.Context()))
	defer cancel()

	bus := path.NewProgressBus()
	defer bus.Close()
	go s.runAndSave(ctx, req, bus)

	for event := range bus.Stream(ctx) {
		if err := wsjson.Write(ctx, conn, event); err != nil {
			return
		}
	}
	conn.Close(websocket.StatusNormalClosure, "done")
}

// pathSummary is the list-endpoint projection of a learning path.
type pathSummary struct {
	ID               string        `json:"id"`
	Topic            string        `json:"topic"`
	ProficiencyLevel string        `json:"proficiency_level"`
	CommitmentLevel  string        `json:"commitment_level"`
	Status           string        `json:"status"`
	Progress         path.Progress `json:"progress"`
}

func (s *Server) handleListPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := s.store.ListPaths()
	if err != nil {
		slog.Error("listing learning paths", "error", err)
		respondError(w, http.StatusInternalServerError, "error listing learning paths")
		return
	}

	summaries := make([]pathSummary, 0, len(paths))
	for _, lp := range paths {
		summaries = append(summaries, pathSummary{
			ID:               lp.ID,
			Topic:            lp.Topic,
			ProficiencyLevel: lp.UserProfile.ProficiencyLevel,
			CommitmentLevel:  lp.UserProfile.CommitmentLevel,
			Status:           lp.Status,
			Progress:         lp.Progress,
		})
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetPath(w http.ResponseWriter, r *http.Request) {
	lp, err := s.store.GetPath(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "learning path not found")
		return
	}
	respondJSON(w, http.StatusOK, lp)
}

func (s *Server) handleGetSessions(w http.ResponseWriter, r *http.Request) {
	lp, err := s.store.GetPath(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "learning path not found")
		return
	}
	respondJSON(w, http.StatusOK, lp.Schedule)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	lp, err := s.store.GetPath(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "learning path not found")
		return
	}
	subs, err := s.store.ListSubmissions(id)
	if err != nil {
		slog.Error("listing submissions", "path_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "error loading dashboard")
		return
	}

	respondJSON(w, http.StatusOK, buildDashboard(lp, subs))
}

// handleStudyGuide generates a markdown study guide for one module on
// demand.
func (s *Server) handleStudyGuide(w http.ResponseWriter, r *http.Request) {
	if s.guides == nil {
		respondError(w, http.StatusServiceUnavailable, "study guides are not configured")
		return
	}

	lp, err := s.store.GetPath(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "learning path not found")
		return
	}

	moduleID := r.PathValue("moduleID")
	var module *path.Module
	for i := range lp.Curriculum.Modules {
		if lp.Curriculum.Modules[i].ModuleID == moduleID {
			module = &lp.Curriculum.Modules[i]
			break
		}
	}
	if module == nil {
		respondError(w, http.StatusNotFound, "module not found")
		return
	}

	subtopics := make([]string, 0, len(module.Subtopics))
	for _, st := range module.Subtopics {
		subtopics = append(subtopics, st.Title)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"module_id":    module.ModuleID,
		"module_title": module.Title,
		"study_guide":  s.guides.GenerateStudyGuide(r.Context(), module.Title, subtopics),
	})
}
