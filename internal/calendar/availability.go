package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Event is one busy block on a learner's calendar.
type Event struct {
	Start time.Time
	End   time.Time
}

// EventSource lists calendar events in a time range. Implementations wrap
// whatever calendar backend the learner connected.
type EventSource interface {
	Events(ctx context.Context, from, to time.Time) ([]Event, error)
}

const (
	analysisWindowDays = 14
	// Waking hours considered schedulable each day (9am-9pm).
	availableHoursPerDay = 12
	// Assumed free hours per week when the calendar has no events.
	defaultFreeHours = 60.0
)

// Analyzer estimates weekly free study hours from recent calendar history.
type Analyzer struct {
	source EventSource
}

// NewAnalyzer creates an availability analyzer.
func NewAnalyzer(source EventSource) (*Analyzer, error) {
	if source == nil {
		return nil, fmt.Errorf("event source is required")
	}
	return &Analyzer{source: source}, nil
}

// WeeklyFreeHours looks at the past two weeks of events and estimates the
// average free hours per week within waking hours.
func (a *Analyzer) WeeklyFreeHours(ctx context.Context) (float64, error) {
	now := time.Now()
	events, err := a.source.Events(ctx, now.AddDate(0, 0, -analysisWindowDays), now)
	if err != nil {
		return 0, fmt.Errorf("listing calendar events: %w", err)
	}
	if len(events) == 0 {
		return defaultFreeHours, nil
	}

	var busyHours float64
	for _, e := range events {
		if e.End.After(e.Start) {
			busyHours += e.End.Sub(e.Start).Hours()
		}
	}

	avgBusyPerDay := busyHours / analysisWindowDays
	freePerDay := math.Max(0, availableHoursPerDay-avgBusyPerDay)
	weeklyFree := math.Round(freePerDay*7*10) / 10

	slog.Info("calendar availability analyzed",
		"events", len(events),
		"weekly_free_hours", weeklyFree,
	)
	return weeklyFree, nil
}
