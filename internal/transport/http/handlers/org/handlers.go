package orghandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/org"
	"hrcore/internal/transport/http/api"
	"hrcore/internal/transport/http/middleware"
)

type Handler struct {
	Store        *org.Store
	Bootstrapper *org.Bootstrapper
	Auth         *auth.Service
	Perms        middleware.PermissionStore
}

func NewHandler(store *org.Store, bootstrapper *org.Bootstrapper, authSvc *auth.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Bootstrapper: bootstrapper, Auth: authSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/org", func(r chi.Router) {
		r.Post("/bootstrap", h.handleBootstrap)
		r.Get("/memberships", h.handleListMemberships)
		r.With(middleware.RequireUser).Get("/current", h.handleCurrent)
		r.With(middleware.RequirePermission(auth.PermOrgAdmin, h.Perms)).Get("/roles", h.handleListRoles)
		r.With(middleware.RequirePermission(auth.PermOrgAdmin, h.Perms)).Post("/roles/assign", h.handleAssignRole)
		r.With(middleware.RequirePermission(auth.PermOrgAdmin, h.Perms)).Post("/roles/revoke", h.handleRevokeRole)
	})
}

type bootstrapRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload bootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	orgID, err := h.Bootstrapper.Bootstrap(r.Context(), user.UserID, payload.Name)
	if err != nil {
		if errors.Is(err, org.ErrNameRequired) {
			api.Fail(w, http.StatusBadRequest, "validation_error", "organization name required", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "bootstrap_failed", "failed to create organization", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": orgID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListMemberships(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	memberships, err := h.Store.ListMemberships(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "memberships_failed", "failed to list memberships", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, memberships, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	organization, err := h.Store.GetOrganization(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "org_failed", "failed to load organization", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, organization, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	roles, err := h.Auth.ListRoles(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "roles_failed", "failed to list roles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, roles, middleware.GetRequestID(r.Context()))
}

type roleChangeRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload roleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.UserID == "" || payload.Role == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "userId and role are required", middleware.GetRequestID(r.Context()))
		return
	}

	member, err := h.Store.IsMember(r.Context(), orgID, payload.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_assign_failed", "failed to assign role", middleware.GetRequestID(r.Context()))
		return
	}
	if !member {
		api.Fail(w, http.StatusNotFound, "not_found", "user is not a member of this organization", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Auth.AssignRole(r.Context(), orgID, user.UserID, payload.UserID, payload.Role); err != nil {
		if errors.Is(err, auth.ErrRoleNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "role not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "role_assign_failed", "failed to assign role", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "assigned"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload roleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.UserID == "" || payload.Role == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "userId and role are required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Auth.RevokeRole(r.Context(), orgID, user.UserID, payload.UserID, payload.Role); err != nil {
		switch {
		case errors.Is(err, auth.ErrRoleNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "role not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, auth.ErrRoleNotAssigned):
			api.Fail(w, http.StatusNotFound, "not_found", "role not assigned", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "role_revoke_failed", "failed to revoke role", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, map[string]string{"status": "revoked"}, middleware.GetRequestID(r.Context()))
}
