package leave

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("end date before start date")

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CalculateLeaveDays counts the working days in the inclusive range from start
// to end: calendar days minus Saturdays, Sundays, and the given holidays.
// Holidays falling on a weekend are not double-counted.
func CalculateLeaveDays(start, end time.Time, holidays []time.Time) (int, error) {
	start = midnight(start)
	end = midnight(end)
	if end.Before(start) {
		return 0, ErrInvalidRange
	}

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[dateKey(h)] = struct{}{}
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if _, holiday := holidaySet[dateKey(d)]; holiday {
			continue
		}
		days++
	}
	return days, nil
}
