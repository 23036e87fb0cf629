// Package path implements the learning-path generation pipeline: profiling,
// curriculum, scheduling, resource discovery and assessments.
package path

import "time"

// Proficiency levels describing assumed starting knowledge.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Commitment levels describing weekly study intensity.
const (
	CommitmentLight     = "light"
	CommitmentModerate  = "moderate"
	CommitmentIntensive = "intensive"
)

// UserProfile describes the learner. Built once during the profiling stage
// and read-only afterwards.
type UserProfile struct {
	Topic                  string   `json:"topic"`
	ProficiencyLevel       string   `json:"proficiency_level"`
	CommitmentLevel        string   `json:"commitment_level"`
	WeeklyFreeHours        float64  `json:"weekly_free_hours"`
	SessionDurationMinutes int      `json:"session_duration_minutes"`
	PreferredTimes         []string `json:"preferred_times"`
	CalendarAnalyzed       bool     `json:"calendar_analyzed"`
}

// Subtopic is the smallest curriculum unit; each one becomes a session.
type Subtopic struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// Module groups related subtopics. Prerequisites may only reference
// earlier modules.
type Module struct {
	ModuleID           string     `json:"module_id"`
	Title              string     `json:"title"`
	DurationHours      float64    `json:"duration_hours"`
	LearningObjectives []string   `json:"learning_objectives"`
	Subtopics          []Subtopic `json:"subtopics"`
	Prerequisites      []string   `json:"prerequisites"`
}

// Curriculum is the module plan produced by the curriculum generator.
type Curriculum struct {
	Topic              string   `json:"topic"`
	TotalDurationWeeks float64  `json:"total_duration_weeks"`
	Modules            []Module `json:"modules"`
}

// TimeSlot is a candidate window a session can be scheduled into.
// End is always Start plus DurationMinutes.
type TimeSlot struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Resource is an external learning resource attached to a session.
type Resource struct {
	Type         string  `json:"type"` // "video" or "article"
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	Description  string  `json:"description,omitempty"`
	Duration     string  `json:"duration,omitempty"`
	Channel      string  `json:"channel,omitempty"`
	Source       string  `json:"source,omitempty"`
	Platform     string  `json:"platform,omitempty"`
	QualityScore float64 `json:"quality_score"`
	IsFallback   bool    `json:"is_fallback,omitempty"`
}

// Session is one scheduled study session, created from a subtopic (or from
// the module itself when it has none). Resources are filled in later by the
// resource stage.
type Session struct {
	SessionID          string     `json:"session_id"`
	ModuleID           string     `json:"module_id"`
	ModuleTitle        string     `json:"module_title"`
	SessionTopic       string     `json:"session_topic"`
	SessionDescription string     `json:"session_description"`
	LearningObjectives []string   `json:"learning_objectives"`
	ScheduledTime      time.Time  `json:"scheduled_time"`
	DurationMinutes    int        `json:"duration_minutes"`
	SessionNumber      int        `json:"session_number"`
	TotalSessions      int        `json:"total_sessions"`
	Resources          []Resource `json:"resources"`
	Completed          bool       `json:"completed"`
}

// Question is a single multiple-choice quiz question. Options always carries
// exactly the keys A-D.
type Question struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// Quiz is a per-module assessment.
type Quiz struct {
	ModuleID       string     `json:"module_id"`
	ModuleTitle    string     `json:"module_title"`
	AssessmentType string     `json:"assessment_type"`
	Questions      []Question `json:"questions"`
	TotalQuestions int        `json:"total_questions"`
}

// QuestionResult is the per-question detail of a quiz evaluation.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
}

// Evaluation is the graded outcome of one quiz submission. It is derived,
// never stored as a mutable entity.
type Evaluation struct {
	Score          float64          `json:"score"`
	CorrectCount   int              `json:"correct_count"`
	TotalQuestions int              `json:"total_questions"`
	Passed         bool             `json:"passed"`
	Results        []QuestionResult `json:"results"`
	KnowledgeGaps  []string         `json:"knowledge_gaps"`
}

// Progress tracks completion counters on a learning path.
type Progress struct {
	ModulesCompleted  int `json:"modules_completed"`
	SessionsCompleted int `json:"sessions_completed"`
	TotalModules      int `json:"total_modules"`
	TotalSessions     int `json:"total_sessions"`
}

// LearningPath is the aggregate produced by one orchestration run.
type LearningPath struct {
	ID          string      `json:"id,omitempty"`
	Topic       string      `json:"topic"`
	UserProfile UserProfile `json:"user_profile"`
	Curriculum  Curriculum  `json:"curriculum"`
	Schedule    []Session   `json:"schedule"`
	Assessments []Quiz      `json:"assessments"`
	Status      string      `json:"status"` // active, completed, paused
	Progress    Progress    `json:"progress"`
}
