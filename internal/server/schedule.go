package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/studysync/studysync/internal/calendar"
)

type completeSessionRequest struct {
	LearningPathID string `json:"learning_path_id"`
	Notes          string `json:"notes"`
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	var body completeSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.LearningPathID == "" {
		respondError(w, http.StatusBadRequest, "learning_path_id is required")
		return
	}

	lp, err := s.store.CompleteSession(body.LearningPathID, sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":    "Session marked as complete",
		"session_id": sessionID,
		"status":     lp.Status,
		"progress":   lp.Progress,
	})
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	lp, err := s.store.GetPath(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "learning path not found")
		return
	}

	ics := calendar.GenerateICS(lp.Schedule)

	w.Header().Set("Content-Type", "text/calendar")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s.ics", exportFilename(lp.Topic)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(ics)); err != nil {
		slog.Error("writing ics export", "error", err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	lp, err := s.store.GetPath(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "learning path not found")
		return
	}

	data, err := calendar.WriteScheduleXLSX(lp.Schedule)
	if err != nil {
		slog.Error("building xlsx export", "path_id", lp.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "error building schedule export")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s.xlsx", exportFilename(lp.Topic)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("writing xlsx export", "error", err)
	}
}

func exportFilename(topic string) string {
	return "studysync_" + strings.ReplaceAll(topic, " ", "_")
}
