package path

import "strings"

// AssessmentResponse is one answer from the proficiency questionnaire.
type AssessmentResponse struct {
	IsCorrect  bool   `json:"is_correct"`
	UserAnswer string `json:"user_answer,omitempty"`
}

// ProficiencyResult carries the classification outcome.
type ProficiencyResult struct {
	Level      string  `json:"proficiency_level"`
	Confidence float64 `json:"confidence_score"`
	Reasoning  string  `json:"reasoning"`
}

// ValidProficiency reports whether level is one of the three known tokens.
func ValidProficiency(level string) bool {
	return level == LevelBeginner || level == LevelIntermediate || level == LevelAdvanced
}

// ValidCommitment reports whether level is one of the three known tokens.
func ValidCommitment(level string) bool {
	return level == CommitmentLight || level == CommitmentModerate || level == CommitmentIntensive
}

// ClassifyProficiency scores questionnaire responses into a proficiency band.
// Each response contributes +1 when correct, +2 when the free-text answer
// self-reports advanced/expert knowledge and +1 for intermediate/some
// experience; the contributions are additive. The average maps to a band at
// the 1.5 and 0.5 thresholds. No responses means beginner at low confidence.
func ClassifyProficiency(topic string, responses []AssessmentResponse) ProficiencyResult {
	if len(responses) == 0 {
		return ProficiencyResult{
			Level:      LevelBeginner,
			Confidence: 0.3,
			Reasoning:  "No assessment data provided for " + topic + ". Defaulting to beginner level.",
		}
	}

	score := 0
	for _, r := range responses {
		if r.IsCorrect {
			score++
		}
		answer := strings.ToLower(r.UserAnswer)
		if strings.Contains(answer, "advanced") || strings.Contains(answer, "expert") {
			score += 2
		} else if strings.Contains(answer, "intermediate") || strings.Contains(answer, "some experience") {
			score++
		}
	}

	avg := float64(score) / float64(len(responses))
	confidence := avg / 2
	if confidence > 1.0 {
		confidence = 1.0
	}

	switch {
	case avg >= 1.5:
		return ProficiencyResult{
			Level:      LevelAdvanced,
			Confidence: confidence,
			Reasoning:  "Strong performance on " + topic + " assessment indicates advanced knowledge.",
		}
	case avg >= 0.5:
		return ProficiencyResult{
			Level:      LevelIntermediate,
			Confidence: confidence,
			Reasoning:  "Moderate performance on " + topic + " assessment indicates intermediate knowledge.",
		}
	default:
		return ProficiencyResult{
			Level:      LevelBeginner,
			Confidence: confidence,
			Reasoning:  "Assessment results suggest beginner-level knowledge of " + topic + ".",
		}
	}
}

// CommitmentPreset maps a commitment level to concrete scheduling parameters.
type CommitmentPreset struct {
	SessionsPerWeek        int     `json:"sessions_per_week"`
	SessionDurationMinutes int     `json:"session_duration_minutes"`
	WeeklyStudyHours       float64 `json:"weekly_study_hours"`
}

var commitmentPresets = map[string]CommitmentPreset{
	CommitmentLight:     {SessionsPerWeek: 2, SessionDurationMinutes: 30, WeeklyStudyHours: 2},
	CommitmentModerate:  {SessionsPerWeek: 3, SessionDurationMinutes: 45, WeeklyStudyHours: 5},
	CommitmentIntensive: {SessionsPerWeek: 5, SessionDurationMinutes: 60, WeeklyStudyHours: 10},
}

// PresetFor returns the scheduling preset for a commitment level,
// defaulting to moderate for unknown tokens.
func PresetFor(level string) CommitmentPreset {
	if p, ok := commitmentPresets[level]; ok {
		return p
	}
	return commitmentPresets[CommitmentModerate]
}

// ClassifyCommitment maps weekly free hours to a commitment band. An explicit
// valid preference always wins over the computed band.
func ClassifyCommitment(weeklyFreeHours float64, preference string) string {
	if ValidCommitment(preference) {
		return preference
	}
	switch {
	case weeklyFreeHours >= 15:
		return CommitmentIntensive
	case weeklyFreeHours >= 8:
		return CommitmentModerate
	default:
		return CommitmentLight
	}
}
