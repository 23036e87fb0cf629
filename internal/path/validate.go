package path

import (
	"fmt"
	"sort"
	"time"
)

// gaps longer than this between adjacent sessions are flagged.
const maxComfortableGap = 3 * 24 * time.Hour

// ValidationReport is the outcome of checking a schedule for conflicts.
// Warnings never affect validity.
type ValidationReport struct {
	Valid     bool          `json:"valid"`
	Conflicts []string      `json:"conflicts"`
	Warnings  []string      `json:"warnings"`
	Stats     ScheduleStats `json:"stats"`
}

// ScheduleStats summarizes a validated schedule.
type ScheduleStats struct {
	TotalSessions int `json:"total_sessions"`
	SpanDays      int `json:"span_days"`
}

// ValidateSchedule checks sessions for time overlaps and large gaps.
// Adjacent pairs (after sorting by scheduled time) whose ranges overlap are
// conflicts; gaps over three days are warnings. Sessions with a zero
// scheduled time degrade to a warning rather than failing the check.
func ValidateSchedule(sessions []Session) ValidationReport {
	report := ValidationReport{
		Valid:     true,
		Conflicts: []string{},
		Warnings:  []string{},
	}
	if len(sessions) == 0 {
		report.Warnings = append(report.Warnings, "No sessions to validate")
		return report
	}

	sorted := make([]Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScheduledTime.Before(sorted[j].ScheduledTime)
	})

	for i := 0; i < len(sorted)-1; i++ {
		current, next := sorted[i], sorted[i+1]
		if current.ScheduledTime.IsZero() || next.ScheduledTime.IsZero() {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Could not parse time for session %d", current.SessionNumber))
			continue
		}

		currentEnd := current.ScheduledTime.Add(time.Duration(current.DurationMinutes) * time.Minute)
		if currentEnd.After(next.ScheduledTime) {
			report.Conflicts = append(report.Conflicts,
				fmt.Sprintf("Sessions %d and %d overlap", current.SessionNumber, next.SessionNumber))
			continue
		}

		if gap := next.ScheduledTime.Sub(currentEnd); gap > maxComfortableGap {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Gap of %d days between sessions %d and %d",
					int(gap.Hours()/24), current.SessionNumber, next.SessionNumber))
		}
	}

	report.Valid = len(report.Conflicts) == 0
	report.Stats = ScheduleStats{
		TotalSessions: len(sessions),
		SpanDays:      spanDays(sorted),
	}
	return report
}

func spanDays(sorted []Session) int {
	first, last := sorted[0].ScheduledTime, sorted[len(sorted)-1].ScheduledTime
	if first.IsZero() || last.IsZero() {
		return 0
	}
	return int(last.Sub(first).Hours() / 24)
}
