package visibility

import (
	"context"
	"fmt"
	"sort"
	"testing"
)

type fakeReports struct {
	reports map[string][]string
}

func (f fakeReports) DirectReports(_ context.Context, _ string, managerIDs []string) ([]string, error) {
	var out []string
	for _, id := range managerIDs {
		out = append(out, f.reports[id]...)
	}
	return out, nil
}

func TestSubordinatesTransitive(t *testing.T) {
	store := fakeReports{reports: map[string][]string{
		"ceo":  {"vp1", "vp2"},
		"vp1":  {"eng1", "eng2"},
		"vp2":  {"ops1"},
		"eng1": {},
	}}

	subs, err := Subordinates(context.Background(), store, "org-1", "ceo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(subs)
	want := []string{"eng1", "eng2", "ops1", "vp1", "vp2"}
	if len(subs) != len(want) {
		t.Fatalf("expected %v, got %v", want, subs)
	}
	for i := range want {
		if subs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, subs)
		}
	}
}

func TestSubordinatesCycleTerminates(t *testing.T) {
	store := fakeReports{reports: map[string][]string{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	}}

	subs, err := Subordinates(context.Background(), store, "org-1", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected b and c only, got %v", subs)
	}
}

func TestSubordinatesDepthBound(t *testing.T) {
	reports := map[string][]string{}
	for i := 0; i < 40; i++ {
		reports[fmt.Sprintf("n%d", i)] = []string{fmt.Sprintf("n%d", i+1)}
	}
	store := fakeReports{reports: reports}

	subs, err := Subordinates(context.Background(), store, "org-1", "n0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subs) != maxDepth {
		t.Fatalf("expected traversal to stop at %d levels, got %d", maxDepth, len(subs))
	}
}

func TestTeamIncludesSelf(t *testing.T) {
	store := fakeReports{reports: map[string][]string{"m": {"r1"}}}
	team, err := Team(context.Background(), store, "org-1", "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(team) != 2 || team[0] != "m" {
		t.Fatalf("expected self-first team, got %v", team)
	}
}
