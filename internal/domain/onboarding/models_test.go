package onboarding

import (
	"testing"
	"time"
)

func TestDueDateOffsets(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		days int
		want time.Time
	}{
		{0, base},
		{7, time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)},
		{31, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := dueDate(base, tc.days); !got.Equal(tc.want) {
			t.Fatalf("dueDate(%d): expected %v, got %v", tc.days, tc.want, got)
		}
	}
}

func TestValidTransition(t *testing.T) {
	allowed := [][2]string{
		{TaskOpen, TaskInProgress},
		{TaskOpen, TaskDone},
		{TaskInProgress, TaskOpen},
		{TaskInProgress, TaskDone},
	}
	for _, tr := range allowed {
		if !validTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be allowed", tr[0], tr[1])
		}
	}

	denied := [][2]string{
		{TaskDone, TaskOpen},
		{TaskDone, TaskInProgress},
		{TaskDone, TaskDone},
		{TaskOpen, TaskOpen},
	}
	for _, tr := range denied {
		if validTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be rejected", tr[0], tr[1])
		}
	}
}
