package visibility

import "context"

// ReportsStore resolves one level of the manager hierarchy.
type ReportsStore interface {
	DirectReports(ctx context.Context, orgID string, managerIDs []string) ([]string, error)
}

// maxDepth bounds the manager-chain traversal. manager_id is self-referencing
// and nothing stops an edit from forming a cycle, so traversal keeps a
// visited set and stops at the bound; anything unreached stays invisible.
const maxDepth = 12

// Subordinates returns the transitive reports of rootEmployeeID, excluding
// the root itself.
func Subordinates(ctx context.Context, store ReportsStore, orgID, rootEmployeeID string) ([]string, error) {
	visited := map[string]struct{}{rootEmployeeID: {}}
	frontier := []string{rootEmployeeID}
	var out []string

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		reports, err := store.DirectReports(ctx, orgID, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, id := range reports {
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			out = append(out, id)
			frontier = append(frontier, id)
		}
	}
	return out, nil
}

// Team returns the id set a team-scoped caller may see: self plus
// transitive reports.
func Team(ctx context.Context, store ReportsStore, orgID, rootEmployeeID string) ([]string, error) {
	subs, err := Subordinates(ctx, store, orgID, rootEmployeeID)
	if err != nil {
		return nil, err
	}
	return append([]string{rootEmployeeID}, subs...), nil
}
