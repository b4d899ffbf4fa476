package middleware

import (
	"context"
	"net/http"

	"hrcore/internal/transport/http/api"
)

// PermissionStore answers permission checks. Implementations are default-deny:
// resolution failures read as false, never as an error the caller must map.
type PermissionStore interface {
	HasPermission(ctx context.Context, userID, orgID, permission string) bool
}

func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			orgID, ok := GetOrg(r.Context())
			if !ok {
				api.Fail(w, http.StatusForbidden, "forbidden", "no organization membership", GetRequestID(r.Context()))
				return
			}

			if !store.HasPermission(r.Context(), user.UserID, orgID, permission) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser admits any authenticated member of an organization. Used for
// routes whose row-level visibility does the real filtering.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		if _, ok := GetOrg(r.Context()); !ok {
			api.Fail(w, http.StatusForbidden, "forbidden", "no organization membership", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
