package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrcore/internal/domain/audit"
	"hrcore/internal/domain/auth"
	"hrcore/internal/transport/http/api"
	"hrcore/internal/transport/http/middleware"
	"hrcore/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/", h.handleList)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	filter := audit.Filter{
		Action: r.URL.Query().Get("action"),
		Entity: r.URL.Query().Get("entity"),
		UserID: r.URL.Query().Get("userId"),
	}

	total, err := h.Service.Count(r.Context(), orgID, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit entries", middleware.GetRequestID(r.Context()))
		return
	}
	entries, err := h.Service.List(r.Context(), orgID, filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit entries", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"items":  entries,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}
