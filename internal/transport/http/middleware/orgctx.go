package middleware

import (
	"context"
	"errors"
	"net/http"

	"hrcore/internal/domain/org"
	"hrcore/internal/transport/http/api"
)

const orgHeader = "X-Org-ID"

// OrgResolver is the slice of the membership directory the middleware needs.
type OrgResolver interface {
	ResolveOrg(ctx context.Context, userID string) (string, error)
	IsMember(ctx context.Context, orgID, userID string) (bool, error)
}

// OrgContext resolves the acting organization for the authenticated user.
// An explicit X-Org-ID header selects among the user's memberships; without
// it the primary (oldest) membership wins. Requests from users with no
// membership at all pass through with no org; guards reject them later.
func OrgContext(resolver OrgResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if requested := r.Header.Get(orgHeader); requested != "" {
				member, err := resolver.IsMember(r.Context(), requested, user.UserID)
				if err != nil {
					api.Fail(w, http.StatusInternalServerError, "org_resolution_failed", "failed to resolve organization", GetRequestID(r.Context()))
					return
				}
				if !member {
					api.Fail(w, http.StatusForbidden, "forbidden", "not a member of the requested organization", GetRequestID(r.Context()))
					return
				}
				ctx := context.WithValue(r.Context(), ctxKeyOrg, requested)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			orgID, err := resolver.ResolveOrg(r.Context(), user.UserID)
			if err != nil {
				if errors.Is(err, org.ErrNoOrganization) {
					next.ServeHTTP(w, r)
					return
				}
				api.Fail(w, http.StatusInternalServerError, "org_resolution_failed", "failed to resolve organization", GetRequestID(r.Context()))
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyOrg, orgID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetOrg(ctx context.Context) (string, bool) {
	orgID, ok := ctx.Value(ctxKeyOrg).(string)
	return orgID, ok && orgID != ""
}
