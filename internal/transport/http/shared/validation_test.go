package shared

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidatorCollectsAndSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("lastName", "", "last name is required")
	v.Required("firstName", "", "first name is required")
	v.Required("email", "present", "should not fire")

	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Field != "firstName" || issues[1].Field != "lastName" {
		t.Fatalf("expected issues sorted by field, got %+v", issues)
	}
}

func TestValidatorEnumIgnoresEmpty(t *testing.T) {
	v := NewValidator()
	v.Enum("status", "", []string{"active", "inactive"}, "must be active or inactive")
	if v.HasIssues() {
		t.Fatal("empty enum value should not add an issue")
	}

	v.Enum("status", "Active", []string{"active", "inactive"}, "must be active or inactive")
	if v.HasIssues() {
		t.Fatal("enum match should be case insensitive")
	}

	v.Enum("status", "archived", []string{"active", "inactive"}, "must be active or inactive")
	if !v.HasIssues() {
		t.Fatal("expected issue for value outside the enum")
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	v.DateOrder("startDate", start, "endDate", end)
	if len(v.Issues()) != 2 {
		t.Fatalf("expected issues on both fields, got %+v", v.Issues())
	}
}

func TestValidatorRejectWritesNothingWhenClean(t *testing.T) {
	v := NewValidator()
	rec := httptest.NewRecorder()
	if v.Reject(rec, "req-1") {
		t.Fatal("expected clean validator not to reject")
	}
	if rec.Body.Len() != 0 {
		t.Fatal("expected no body for clean validator")
	}
}

func TestParseDateFormats(t *testing.T) {
	day, err := ParseDate("2026-03-02")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if day.Year() != 2026 || day.Month() != time.March || day.Day() != 2 {
		t.Fatalf("unexpected date: %v", day)
	}

	stamp, err := ParseDate("2026-03-02T15:04:05Z")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if stamp.Hour() != 15 {
		t.Fatalf("expected RFC3339 time preserved, got %v", stamp)
	}

	if _, err := ParseDate("02/03/2026"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParsePaginationClampsLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=500&offset=30", nil)
	page := ParsePagination(req, 25, 100)
	if page.Limit != 100 {
		t.Fatalf("expected limit clamped to 100, got %d", page.Limit)
	}
	if page.Offset != 30 {
		t.Fatalf("expected offset 30, got %d", page.Offset)
	}

	req = httptest.NewRequest("GET", "/?limit=-5&offset=-1", nil)
	page = ParsePagination(req, 25, 100)
	if page.Limit != 25 || page.Offset != 0 {
		t.Fatalf("expected defaults for invalid values, got %+v", page)
	}
}
