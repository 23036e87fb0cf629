package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/studysync/studysync/internal/path"
	"github.com/studysync/studysync/internal/store"
)

type proficiencyRequest struct {
	Topic string `json:"topic"`
}

func (s *Server) handleProficiency(w http.ResponseWriter, r *http.Request) {
	if s.assessments == nil {
		respondError(w, http.StatusServiceUnavailable, "proficiency assessment is not configured")
		return
	}

	var body proficiencyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Topic == "" {
		respondError(w, http.StatusBadRequest, "topic is required")
		return
	}

	questions := s.assessments.GenerateProficiencyQuestions(r.Context(), body.Topic)
	respondJSON(w, http.StatusOK, map[string]any{
		"topic":     body.Topic,
		"questions": questions,
	})
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	moduleID := r.PathValue("moduleID")
	pathID := r.URL.Query().Get("learning_path_id")
	if pathID == "" {
		respondError(w, http.StatusBadRequest, "learning_path_id is required")
		return
	}

	lp, err := s.store.GetPath(pathID)
	if err != nil {
		respondError(w, http.StatusNotFound, "learning path not found")
		return
	}
	quiz, ok := findQuiz(lp, moduleID)
	if !ok {
		respondError(w, http.StatusNotFound, "quiz not found for this module")
		return
	}

	subs, err := s.store.ListSubmissions(pathID)
	if err != nil {
		slog.Error("listing submissions", "path_id", pathID, "error", err)
		respondError(w, http.StatusInternalServerError, "error loading quiz")
		return
	}
	completed := false
	var score *float64
	for _, sub := range subs {
		if sub.ModuleID == moduleID {
			completed = true
			v := sub.Score
			score = &v
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"module_id":       quiz.ModuleID,
		"module_title":    quiz.ModuleTitle,
		"questions":       quiz.Questions,
		"total_questions": quiz.TotalQuestions,
		"completed":       completed,
		"score":           score,
	})
}

type submitQuizRequest struct {
	LearningPathID string            `json:"learning_path_id"`
	Responses      map[string]string `json:"responses"`
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	moduleID := r.PathValue("moduleID")

	var body submitQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.LearningPathID == "" {
		respondError(w, http.StatusBadRequest, "learning_path_id is required")
		return
	}

	lp, err := s.store.GetPath(body.LearningPathID)
	if err != nil {
		respondError(w, http.StatusNotFound, "learning path not found")
		return
	}
	quiz, ok := findQuiz(lp, moduleID)
	if !ok {
		respondError(w, http.StatusNotFound, "quiz not found for this module")
		return
	}

	evaluation := path.EvaluateQuiz(quiz, body.Responses)

	subID, err := s.store.RecordSubmission(store.Submission{
		PathID:         body.LearningPathID,
		ModuleID:       moduleID,
		Score:          evaluation.Score,
		CorrectCount:   evaluation.CorrectCount,
		TotalQuestions: evaluation.TotalQuestions,
		Passed:         evaluation.Passed,
	})
	if err != nil {
		slog.Error("recording submission", "path_id", body.LearningPathID, "error", err)
		respondError(w, http.StatusInternalServerError, "error recording submission")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"submission_id":   subID,
		"module_id":       moduleID,
		"score":           evaluation.Score,
		"correct_count":   evaluation.CorrectCount,
		"total_questions": evaluation.TotalQuestions,
		"passed":          evaluation.Passed,
		"results":         evaluation.Results,
		"knowledge_gaps":  evaluation.KnowledgeGaps,
	})
}

func findQuiz(lp *path.LearningPath, moduleID string) (path.Quiz, bool) {
	for _, quiz := range lp.Assessments {
		if quiz.ModuleID == moduleID {
			return quiz, true
		}
	}
	return path.Quiz{}, false
}
