package leave

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateLeaveDaysSkipsWeekends(t *testing.T) {
	// Mon 2024-01-01 through Sun 2024-01-07: five working days.
	days, err := CalculateLeaveDays(date(2024, time.January, 1), date(2024, time.January, 7), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 5 {
		t.Fatalf("expected 5 days, got %d", days)
	}
}

func TestCalculateLeaveDaysSkipsHolidays(t *testing.T) {
	holidays := []time.Time{date(2024, time.January, 1)}
	days, err := CalculateLeaveDays(date(2024, time.January, 1), date(2024, time.January, 7), holidays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 4 {
		t.Fatalf("expected 4 days, got %d", days)
	}
}

func TestCalculateLeaveDaysWeekendHolidayNotDoubleCounted(t *testing.T) {
	// Sat 2024-01-06 is already excluded as a weekend.
	holidays := []time.Time{date(2024, time.January, 6)}
	days, err := CalculateLeaveDays(date(2024, time.January, 1), date(2024, time.January, 7), holidays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 5 {
		t.Fatalf("expected 5 days, got %d", days)
	}
}

func TestCalculateLeaveDaysSingleDay(t *testing.T) {
	days, err := CalculateLeaveDays(date(2024, time.January, 3), date(2024, time.January, 3), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1 {
		t.Fatalf("expected 1 day, got %d", days)
	}
}

func TestCalculateLeaveDaysSingleWeekendDay(t *testing.T) {
	days, err := CalculateLeaveDays(date(2024, time.January, 6), date(2024, time.January, 6), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 0 {
		t.Fatalf("expected 0 days, got %d", days)
	}
}

func TestCalculateLeaveDaysInvalidRange(t *testing.T) {
	_, err := CalculateLeaveDays(date(2024, time.January, 7), date(2024, time.January, 1), nil)
	if err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCalculateLeaveDaysIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, time.January, 1, 23, 50, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 2, 0, 10, 0, 0, time.UTC)
	days, err := CalculateLeaveDays(start, end, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 2 {
		t.Fatalf("expected 2 days, got %d", days)
	}
}
