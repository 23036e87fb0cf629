// Package calendar turns study schedules into calendar artifacts: iCalendar
// feeds, spreadsheet exports and availability analysis.
package calendar

import (
	"strings"
	"time"

	"github.com/studysync/studysync/internal/path"
)

const icsTimeLayout = "20060102T150405"

// GenerateICS renders sessions as an iCalendar document with a 30-minute
// display reminder on each event.
func GenerateICS(sessions []path.Session) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//StudySync//Learning Schedule//EN",
		"CALSCALE:GREGORIAN",
	}

	for _, session := range sessions {
		if session.ScheduledTime.IsZero() {
			continue
		}
		duration := session.DurationMinutes
		if duration <= 0 {
			duration = 30
		}
		end := session.ScheduledTime.Add(time.Duration(duration) * time.Minute)

		lines = append(lines,
			"BEGIN:VEVENT",
			"SUMMARY:"+escapeICS(session.ModuleTitle),
			"DTSTART:"+session.ScheduledTime.Format(icsTimeLayout),
			"DTEND:"+end.Format(icsTimeLayout),
			"DESCRIPTION:StudySync Learning Session",
			"BEGIN:VALARM",
			"TRIGGER:-PT30M",
			"DESCRIPTION:Study session starting in 30 minutes",
			"ACTION:DISPLAY",
			"END:VALARM",
			"END:VEVENT",
		)
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\n")
}

// escapeICS escapes text per RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
