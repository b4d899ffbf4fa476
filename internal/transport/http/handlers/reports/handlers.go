package reportshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/org"
	"hrcore/internal/domain/reports"
	"hrcore/internal/transport/http/api"
	"hrcore/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Orgs    *org.Store
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, orgs *org.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Orgs: orgs, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/headcount", h.handleHeadcount)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/status", h.handleStatus)
		r.With(middleware.RequirePermission(auth.PermReportsExport, h.Perms)).Get("/headcount/export", h.handleHeadcountExport)
	})
}

func (h *Handler) handleHeadcount(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	rows, err := h.Service.HeadcountByDepartment(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build headcount report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	summary, err := h.Service.ActiveVsInactive(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build status report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHeadcountExport(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())

	organization, err := h.Orgs.GetOrganization(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build headcount export", middleware.GetRequestID(r.Context()))
		return
	}

	pdf, err := h.Service.HeadcountPDF(r.Context(), orgID, organization.Name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build headcount export", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="headcount.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
