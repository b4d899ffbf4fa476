package visibility

import (
	"strings"
	"testing"
)

var employeeCols = Columns{Org: "e.org_id", Deleted: "e.deleted_at", Owner: "e.id"}

func TestApplyFullScope(t *testing.T) {
	scope := Scope{OrgID: "org-1", Relation: RelationFull}
	query, args := scope.Apply("SELECT 1 FROM employees e WHERE 1=1", nil, employeeCols)

	if !strings.Contains(query, "e.org_id = $1") {
		t.Fatalf("expected org predicate, got %q", query)
	}
	if !strings.Contains(query, "e.deleted_at IS NULL") {
		t.Fatalf("expected soft-delete predicate, got %q", query)
	}
	if strings.Contains(query, "AND false") {
		t.Fatalf("full scope must not close the query: %q", query)
	}
	if len(args) != 1 || args[0] != "org-1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestApplySelfScope(t *testing.T) {
	scope := Scope{OrgID: "org-1", EmployeeID: "emp-1", Relation: RelationSelf}
	query, args := scope.Apply("SELECT 1 FROM employees e WHERE 1=1", nil, employeeCols)

	if !strings.Contains(query, "e.id = $2") {
		t.Fatalf("expected owner predicate, got %q", query)
	}
	if len(args) != 2 || args[1] != "emp-1" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestApplySelfScopeWithoutEmployeeFailsClosed(t *testing.T) {
	scope := Scope{OrgID: "org-1", Relation: RelationSelf}
	query, _ := scope.Apply("SELECT 1 FROM employees e WHERE 1=1", nil, employeeCols)
	if !strings.Contains(query, "AND false") {
		t.Fatalf("expected closed query, got %q", query)
	}
}

func TestApplyTeamScope(t *testing.T) {
	scope := Scope{OrgID: "org-1", EmployeeID: "emp-1", TeamIDs: []string{"emp-1", "emp-2"}, Relation: RelationTeam}
	query, args := scope.Apply("SELECT 1 FROM employees e WHERE 1=1", nil, employeeCols)

	if !strings.Contains(query, "e.id = ANY($2)") {
		t.Fatalf("expected team predicate, got %q", query)
	}
	ids, ok := args[1].([]string)
	if !ok || len(ids) != 2 {
		t.Fatalf("unexpected team args: %v", args)
	}
}

func TestApplyZeroValueFailsClosed(t *testing.T) {
	var scope Scope
	scope.OrgID = "org-1"
	query, _ := scope.Apply("SELECT 1 FROM employees e WHERE 1=1", nil, employeeCols)
	if !strings.Contains(query, "AND false") {
		t.Fatalf("zero-value relation must fail closed, got %q", query)
	}
}

func TestApplyIncludeDeleted(t *testing.T) {
	scope := Scope{OrgID: "org-1", Relation: RelationFull, IncludeDeleted: true}
	query, _ := scope.Apply("SELECT 1 FROM employees e WHERE 1=1", nil, employeeCols)
	if strings.Contains(query, "deleted_at") {
		t.Fatalf("expected no soft-delete predicate, got %q", query)
	}
}
