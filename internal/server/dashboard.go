package server

import (
	"math"
	"time"

	"github.com/studysync/studysync/internal/path"
	"github.com/studysync/studysync/internal/store"
)

// dashboard aggregates a learning path with its quiz history into the
// overview the frontend renders.
type dashboard struct {
	LearningPathID   string              `json:"learning_path_id"`
	Topic            string              `json:"topic"`
	Progress         dashboardProgress   `json:"progress"`
	Curriculum       path.Curriculum     `json:"curriculum"`
	QuizStatus       map[string]quizStat `json:"quiz_status"`
	UpcomingSessions []upcomingSession   `json:"upcoming_sessions"`
}

type dashboardProgress struct {
	CompletionPercentage float64 `json:"completion_percentage"`
	SessionsCompleted    int     `json:"sessions_completed"`
	TotalSessions        int     `json:"total_sessions"`
	AverageQuizScore     float64 `json:"average_quiz_score"`
	QuizzesTaken         int     `json:"quizzes_taken"`
}

type quizStat struct {
	Completed bool     `json:"completed"`
	Score     *float64 `json:"score"`
}

type upcomingSession struct {
	SessionID       string    `json:"session_id"`
	ModuleTitle     string    `json:"module_title"`
	SessionTopic    string    `json:"session_topic"`
	ScheduledTime   time.Time `json:"scheduled_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

const maxUpcomingSessions = 5

func buildDashboard(lp *path.LearningPath, subs []store.Submission) dashboard {
	// Latest submission per module decides that module's quiz status.
	latest := make(map[string]store.Submission)
	for _, sub := range subs {
		latest[sub.ModuleID] = sub
	}

	status := make(map[string]quizStat, len(lp.Assessments))
	scoreSum := 0.0
	taken := 0
	for _, quiz := range lp.Assessments {
		if sub, ok := latest[quiz.ModuleID]; ok {
			score := sub.Score
			status[quiz.ModuleID] = quizStat{Completed: true, Score: &score}
			scoreSum += score
			taken++
		} else {
			status[quiz.ModuleID] = quizStat{}
		}
	}

	avgScore := 0.0
	if taken > 0 {
		avgScore = math.Round(scoreSum/float64(taken)*100) / 100
	}

	completed := 0
	upcoming := make([]upcomingSession, 0, maxUpcomingSessions)
	for _, session := range lp.Schedule {
		if session.Completed {
			completed++
			continue
		}
		if len(upcoming) < maxUpcomingSessions {
			upcoming = append(upcoming, upcomingSession{
				SessionID:       session.SessionID,
				ModuleTitle:     session.ModuleTitle,
				SessionTopic:    session.SessionTopic,
				ScheduledTime:   session.ScheduledTime,
				DurationMinutes: session.DurationMinutes,
			})
		}
	}

	percentage := 0.0
	if len(lp.Schedule) > 0 {
		percentage = float64(completed) / float64(len(lp.Schedule)) * 100
	}

	return dashboard{
		LearningPathID: lp.ID,
		Topic:          lp.Topic,
		Progress: dashboardProgress{
			CompletionPercentage: percentage,
			SessionsCompleted:    completed,
			TotalSessions:        len(lp.Schedule),
			AverageQuizScore:     avgScore,
			QuizzesTaken:         taken,
		},
		Curriculum:       lp.Curriculum,
		QuizStatus:       status,
		UpcomingSessions: upcoming,
	}
}
