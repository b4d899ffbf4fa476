package visibility

import "fmt"

// Relation is the relationship rule half of the row filter. Org match and
// soft-delete exclusion always apply; the relation decides which rows inside
// the org the caller may see.
type Relation int

const (
	// RelationNone matches nothing. The zero value fails closed.
	RelationNone Relation = iota
	// RelationSelf matches only rows owned by the caller's employee record.
	RelationSelf
	// RelationTeam matches the caller and their transitive reports.
	RelationTeam
	// RelationFull matches every row in the org.
	RelationFull
)

// Columns names the filtered table's org, soft-delete, and ownership columns,
// qualified with the query's alias.
type Columns struct {
	Org     string
	Deleted string
	Owner   string
}

type Scope struct {
	OrgID          string
	EmployeeID     string
	TeamIDs        []string
	Relation       Relation
	IncludeDeleted bool
}

// Apply appends the scope's predicates to query. It must run before any
// search or filter condition so that search can never widen visibility.
func (s Scope) Apply(query string, args []any, cols Columns) (string, []any) {
	query += fmt.Sprintf(" AND %s = $%d", cols.Org, len(args)+1)
	args = append(args, s.OrgID)

	if !s.IncludeDeleted && cols.Deleted != "" {
		query += fmt.Sprintf(" AND %s IS NULL", cols.Deleted)
	}

	switch s.Relation {
	case RelationFull:
	case RelationSelf:
		if s.EmployeeID == "" {
			query += " AND false"
			break
		}
		query += fmt.Sprintf(" AND %s = $%d", cols.Owner, len(args)+1)
		args = append(args, s.EmployeeID)
	case RelationTeam:
		if len(s.TeamIDs) == 0 {
			query += " AND false"
			break
		}
		query += fmt.Sprintf(" AND %s = ANY($%d)", cols.Owner, len(args)+1)
		args = append(args, s.TeamIDs)
	default:
		query += " AND false"
	}
	return query, args
}
