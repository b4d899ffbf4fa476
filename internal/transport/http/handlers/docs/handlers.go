package docshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/docs"
	"hrcore/internal/platform/blob"
	"hrcore/internal/transport/http/api"
	"hrcore/internal/transport/http/middleware"
)

const maxDocumentBytes = 10 * 1024 * 1024

type Handler struct {
	Service *docs.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *docs.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees/{employeeID}/documents", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleUpload)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{documentID}/download", h.handleDownload)
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "multipart form required", middleware.GetRequestID(r.Context()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "file field is required", middleware.GetRequestID(r.Context()))
		return
	}
	defer file.Close()

	id, err := h.Service.Upload(
		r.Context(),
		orgID,
		user.UserID,
		chi.URLParam(r, "employeeID"),
		header.Filename,
		r.FormValue("documentType"),
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		switch {
		case errors.Is(err, docs.ErrValidation):
			api.Fail(w, http.StatusBadRequest, "validation_error", "payload validation failed", middleware.GetRequestID(r.Context()))
		case errors.Is(err, blob.ErrNotConfigured):
			api.Fail(w, http.StatusServiceUnavailable, "storage_unavailable", "document storage is not configured", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "upload_failed", "failed to upload document", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	documents, err := h.Service.List(r.Context(), orgID, chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "documents_failed", "failed to list documents", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, documents, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())

	url, err := h.Service.DownloadURL(r.Context(), orgID, chi.URLParam(r, "employeeID"), chi.URLParam(r, "documentID"))
	if err != nil {
		switch {
		case errors.Is(err, docs.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "document not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, blob.ErrNotConfigured):
			api.Fail(w, http.StatusServiceUnavailable, "storage_unavailable", "document storage is not configured", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "download_failed", "failed to sign download", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, map[string]string{"url": url}, middleware.GetRequestID(r.Context()))
}
