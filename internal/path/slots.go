package path

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// ErrHorizonExceeded is returned when the allocator cannot place the
// requested number of slots within the search horizon.
var ErrHorizonExceeded = errors.New("slot allocation horizon exceeded")

// allocation never walks further than this from the start date.
const allocationHorizonDays = 730

// Preferred-hour mapping for the common named dayparts.
var preferredHours = map[string]int{
	"morning":   9,
	"afternoon": 14,
	"evening":   18,
}

// SlotRequest describes one allocation run.
type SlotRequest struct {
	Count           int
	DurationMinutes int
	SessionsPerWeek int
	StartDate       time.Time // zero means tomorrow
	EndDate         time.Time // optional; with StartDate set, triggers cadence correction
	PreferredTime   string    // "morning", "afternoon" or "evening"
	SkipWeekends    bool
}

// PreferredHour resolves the named preferred time to an hour of day,
// defaulting to evening.
func PreferredHour(name string) int {
	if h, ok := preferredHours[name]; ok {
		return h
	}
	return preferredHours["evening"]
}

// AllocateSlots generates exactly req.Count chronologically ordered,
// non-overlapping time slots, at most one per calendar day, honouring the
// weekly cadence and the weekend rule.
//
// The walk is greedy: days are consumed in order and once a week's quota is
// reached the cursor jumps to the following Monday. Gaps are never
// back-filled. When both StartDate and EndDate are set and the requested
// cadence cannot fit Count sessions into the window, the cadence is raised
// to ceil(count/weeks)+1 before allocation; the result may still overrun
// EndDate, which is reported as a warning, not an error.
func AllocateSlots(req SlotRequest) ([]TimeSlot, []string, error) {
	if req.Count <= 0 {
		return []TimeSlot{}, nil, nil
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 45
	}
	perWeek := req.SessionsPerWeek
	if perWeek <= 0 {
		perWeek = 3
	}

	start := req.StartDate
	if start.IsZero() {
		start = time.Now().AddDate(0, 0, 1)
	}

	var warnings []string
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() && req.EndDate.After(req.StartDate) {
		weeks := req.EndDate.Sub(req.StartDate).Hours() / 24 / 7
		if weeks > 0 {
			required := float64(req.Count) / weeks
			if corrected := int(math.Ceil(required)) + 1; corrected > perWeek {
				slog.Info("raising session cadence to fit date range",
					"requested_per_week", perWeek,
					"corrected_per_week", corrected,
				)
				perWeek = corrected
			}
		}
	}

	hour := PreferredHour(req.PreferredTime)
	horizon := start.AddDate(0, 0, allocationHorizonDays)

	slots := make([]TimeSlot, 0, req.Count)
	day := start
	thisWeek := 0
	for len(slots) < req.Count {
		if day.After(horizon) {
			return nil, warnings, fmt.Errorf("%w: placed %d of %d slots within %d days",
				ErrHorizonExceeded, len(slots), req.Count, allocationHorizonDays)
		}

		if req.SkipWeekends && isWeekend(day) {
			day = day.AddDate(0, 0, 1)
			continue
		}

		if thisWeek >= perWeek {
			// Weeks start on Monday; jump to the next one.
			day = day.AddDate(0, 0, daysUntilNextMonday(day))
			thisWeek = 0
			continue
		}

		slotStart := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
		slots = append(slots, TimeSlot{
			Start:           slotStart,
			End:             slotStart.Add(time.Duration(duration) * time.Minute),
			DurationMinutes: duration,
		})
		thisWeek++
		day = day.AddDate(0, 0, 1)
	}

	if !req.EndDate.IsZero() && len(slots) > 0 {
		if last := slots[len(slots)-1]; last.End.After(req.EndDate) {
			warnings = append(warnings, fmt.Sprintf(
				"schedule overruns the requested end date by %d days",
				int(last.End.Sub(req.EndDate).Hours()/24)+1,
			))
		}
	}

	return slots, warnings, nil
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// daysUntilNextMonday returns the number of days from t to the Monday of
// the following ISO week (always at least 1).
func daysUntilNextMonday(t time.Time) int {
	// time.Weekday numbers Sunday as 0; normalize to Monday-based.
	wd := int(t.Weekday()+6) % 7
	return 7 - wd
}
