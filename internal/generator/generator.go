// Package generator builds curricula, quizzes and assessment questions
// through the AI gateway, validating every response against a JSON schema
// before trusting it.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/studysync/studysync/internal/ai"
	"github.com/studysync/studysync/internal/path"
)

// Completer is the slice of the AI router the generators need.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
}

// Generator produces learning content from LLM completions.
type Generator struct {
	completer Completer
}

// New creates a Generator backed by the given completer.
func New(completer Completer) (*Generator, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	return &Generator{completer: completer}, nil
}

// GenerateCurriculum asks the model for a module plan and decodes it. The
// response must pass schema validation; callers fall back on error.
func (g *Generator) GenerateCurriculum(ctx context.Context, topic, proficiencyLevel, commitmentLevel string, durationWeeks float64) (path.Curriculum, error) {
	resp, err := g.completer.Complete(ctx, ai.CompletionRequest{
		Task:      ai.TaskCurriculum,
		MaxTokens: 2000,
		Messages: []ai.Message{
			{Role: "user", Content: curriculumPrompt(topic, proficiencyLevel, commitmentLevel, durationWeeks)},
		},
	})
	if err != nil {
		return path.Curriculum{}, fmt.Errorf("curriculum completion: %w", err)
	}

	raw := ExtractJSON(resp.Content)
	if err := validateCurriculum(raw); err != nil {
		return path.Curriculum{}, fmt.Errorf("curriculum response: %w", err)
	}

	var curriculum path.Curriculum
	if err := json.Unmarshal([]byte(raw), &curriculum); err != nil {
		return path.Curriculum{}, fmt.Errorf("decoding curriculum: %w", err)
	}
	if curriculum.Topic == "" {
		curriculum.Topic = topic
	}
	slog.Info("curriculum generated", "topic", topic, "modules", len(curriculum.Modules))
	return curriculum, nil
}

// GenerateQuiz asks the model for multiple-choice questions for one module.
func (g *Generator) GenerateQuiz(ctx context.Context, moduleTitle string, subtopics []string, numQuestions int) ([]path.Question, error) {
	if numQuestions <= 0 {
		numQuestions = 5
	}
	resp, err := g.completer.Complete(ctx, ai.CompletionRequest{
		Task:      ai.TaskQuiz,
		MaxTokens: 1500,
		Messages: []ai.Message{
			{Role: "user", Content: quizPrompt(moduleTitle, subtopics, numQuestions)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("quiz completion: %w", err)
	}

	raw := ExtractJSON(resp.Content)
	if err := validateQuiz(raw); err != nil {
		return nil, fmt.Errorf("quiz response: %w", err)
	}

	var questions []path.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("decoding quiz: %w", err)
	}
	slog.Info("quiz generated", "module", moduleTitle, "questions", len(questions))
	return questions, nil
}

// ProficiencyQuestion is one adaptive question for the initial assessment.
type ProficiencyQuestion struct {
	Question   string   `json:"question"`
	Type       string   `json:"type"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
}

// GenerateProficiencyQuestions asks the model for assessment questions of
// increasing difficulty. Failures degrade to a single self-report question.
func (g *Generator) GenerateProficiencyQuestions(ctx context.Context, topic string) []ProficiencyQuestion {
	resp, err := g.completer.Complete(ctx, ai.CompletionRequest{
		Task:      ai.TaskProficiency,
		MaxTokens: 1200,
		Messages: []ai.Message{
			{Role: "user", Content: proficiencyPrompt(topic)},
		},
	})
	if err != nil {
		slog.Warn("proficiency question generation failed", "topic", topic, "error", err)
		return fallbackProficiencyQuestions(topic)
	}

	var questions []ProficiencyQuestion
	if err := json.Unmarshal([]byte(ExtractJSON(resp.Content)), &questions); err != nil || len(questions) == 0 {
		slog.Warn("proficiency response unusable", "topic", topic, "error", err)
		return fallbackProficiencyQuestions(topic)
	}
	return questions
}

// GenerateStudyGuide produces a short markdown study guide for a module.
func (g *Generator) GenerateStudyGuide(ctx context.Context, moduleTitle string, subtopics []string) string {
	resp, err := g.completer.Complete(ctx, ai.CompletionRequest{
		Task:      ai.TaskCurriculum,
		MaxTokens: 1000,
		Messages: []ai.Message{
			{Role: "user", Content: studyGuidePrompt(moduleTitle, subtopics)},
		},
	})
	if err != nil {
		slog.Warn("study guide generation failed", "module", moduleTitle, "error", err)
		return "# " + moduleTitle + "\n\nStudy guide generation failed. Please refer to module resources."
	}
	return resp.Content
}

func fallbackProficiencyQuestions(topic string) []ProficiencyQuestion {
	return []ProficiencyQuestion{{
		Question: "How familiar are you with " + topic + "?",
		Type:     "multiple_choice",
		Options: []string{
			"Never heard of it",
			"Heard of it but never used it",
			"Some basic experience",
			"Regular user with good understanding",
		},
		Difficulty: "beginner",
	}}
}

// ExtractJSON strips a fenced code block from a model response, returning
// the inner JSON. Responses without fences pass through unchanged.
func ExtractJSON(content string) string {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		rest := content[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(content)
}
