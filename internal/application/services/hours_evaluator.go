package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Longevitate/carefinder/internal/domain/entities"
)

const (
	minutesPerDay          = 24 * 60
	statusHoursUnavailable = "Hours unavailable"
	statusClosedToday      = "Closed today"
	statusOpen24Hours      = "Open 24 hours"
	statusClosed           = "Closed"
)

var clockLayouts = []string{"15:04", "3:04PM", "3PM"}

// HoursEvaluator decides whether a facility is open at an instant. Hours
// tables are wall-clock times in a single configured zone.
type HoursEvaluator struct {
	loc *time.Location
}

// NewHoursEvaluator creates an evaluator for the given IANA zone name.
func NewHoursEvaluator(timezone string) (*HoursEvaluator, error) {
	if timezone == "" {
		return &HoursEvaluator{loc: time.Local}, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load hours timezone %q: %w", timezone, err)
	}
	return &HoursEvaluator{loc: loc}, nil
}

// IsOpenNow reports the open state and a human-readable status at the given instant.
func (e *HoursEvaluator) IsOpenNow(hours entities.WeeklyHours, at time.Time) entities.OpenStatus {
	if len(hours) == 0 {
		return entities.OpenStatus{Text: statusHoursUnavailable}
	}

	local := at.In(e.loc)
	now := local.Hour()*60 + local.Minute()
	today := local.Weekday()

	// An overnight interval that started yesterday may still be running.
	if prev, ok := hours.For(previousDay(today)); ok && !prev.Is24Hours {
		open, errOpen := parseClock(prev.Open)
		closeAt, errClose := parseClock(prev.Close)
		if errOpen == nil && errClose == nil && closeAt < open && now < closeAt {
			return entities.OpenStatus{IsOpen: true, Text: "Open until " + formatClock(closeAt)}
		}
	}

	day, ok := hours.For(today)
	if !ok {
		return entities.OpenStatus{Text: statusClosedToday}
	}
	if day.Is24Hours {
		return entities.OpenStatus{IsOpen: true, Text: statusOpen24Hours}
	}

	open, err := parseClock(day.Open)
	if err != nil {
		return entities.OpenStatus{Text: statusHoursUnavailable}
	}
	closeAt, err := parseClock(day.Close)
	if err != nil {
		return entities.OpenStatus{Text: statusHoursUnavailable}
	}

	switch {
	case closeAt == open:
		return entities.OpenStatus{IsOpen: true, Text: statusOpen24Hours}
	case closeAt < open:
		if now >= open {
			return entities.OpenStatus{IsOpen: true, Text: "Open until " + formatClock(closeAt)}
		}
	case now >= open && now < closeAt:
		return entities.OpenStatus{IsOpen: true, Text: "Open until " + formatClock(closeAt)}
	}

	if now < open {
		return entities.OpenStatus{Text: fmt.Sprintf("Closed - opens %s today", formatClock(open))}
	}
	return entities.OpenStatus{Text: e.nextOpening(hours, today)}
}

func (e *HoursEvaluator) nextOpening(hours entities.WeeklyHours, today time.Weekday) string {
	for offset := 1; offset <= 7; offset++ {
		day := time.Weekday((int(today) + offset) % 7)
		h, ok := hours.For(day)
		if !ok {
			continue
		}
		open := 0
		if !h.Is24Hours {
			var err error
			if open, err = parseClock(h.Open); err != nil {
				continue
			}
		}
		when := day.String()
		if offset == 1 {
			when = "tomorrow"
		}
		return fmt.Sprintf("Closed - opens %s %s", formatClock(open), when)
	}
	return statusClosed
}

func previousDay(d time.Weekday) time.Weekday {
	return time.Weekday((int(d) + 6) % 7)
}

// parseClock converts "HH:MM" or "h:mm am" style times to minutes after midnight.
// "24:00" is accepted as end of day.
func parseClock(s string) (int, error) {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty time")
	}
	if cleaned == "24:00" {
		return minutesPerDay, nil
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", s)
}

func formatClock(minutes int) string {
	minutes %= minutesPerDay
	return time.Date(2000, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format("3:04 PM")
}
