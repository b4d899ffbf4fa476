package onboardinghandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/onboarding"
	"hrcore/internal/transport/http/api"
	"hrcore/internal/transport/http/middleware"
	"hrcore/internal/transport/http/shared"
)

type Handler struct {
	Service *onboarding.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *onboarding.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/onboarding", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/templates", h.handleListTemplates)
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/templates", h.handleCreateTemplate)
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Delete("/templates/{templateID}", h.handleDeleteTemplate)
		r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/templates/{templateID}/items", h.handleListItems)
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/templates/{templateID}/items", h.handleAddItem)
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Delete("/items/{itemID}", h.handleRemoveItem)
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/instantiate", h.handleInstantiate)
		r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/tasks", h.handleListTasks)
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/tasks/{taskID}/status", h.handleTransitionTask)
	})
	r.Route("/offboarding", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOnboardingRead, h.Perms)).Get("/tasks", h.handleListOffboardingTasks)
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/tasks", h.handleCreateOffboardingTask)
		r.With(middleware.RequirePermission(auth.PermOnboardingWrite, h.Perms)).Post("/tasks/{taskID}/complete", h.handleCompleteOffboardingTask)
	})
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	templates, err := h.Service.ListTemplates(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "templates_failed", "failed to list templates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, templates, middleware.GetRequestID(r.Context()))
}

type templateRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload templateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.CreateTemplate(r.Context(), orgID, user.UserID, payload.Name)
	if err != nil {
		h.fail(w, r, err, "template_create_failed", "failed to create template")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.DeleteTemplate(r.Context(), orgID, user.UserID, chi.URLParam(r, "templateID")); err != nil {
		h.fail(w, r, err, "template_delete_failed", "failed to delete template")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	items, err := h.Service.ListItems(r.Context(), orgID, chi.URLParam(r, "templateID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "items_failed", "failed to list template items", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

type itemRequest struct {
	TaskTitle      string `json:"taskTitle"`
	DefaultDueDays int    `json:"defaultDueDays"`
	SortOrder      int    `json:"sortOrder"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload itemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.AddItem(r.Context(), orgID, user.UserID, onboarding.TemplateItem{
		TemplateID:     chi.URLParam(r, "templateID"),
		TaskTitle:      payload.TaskTitle,
		DefaultDueDays: payload.DefaultDueDays,
		SortOrder:      payload.SortOrder,
	})
	if err != nil {
		h.fail(w, r, err, "item_create_failed", "failed to add template item")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.RemoveItem(r.Context(), orgID, user.UserID, chi.URLParam(r, "itemID")); err != nil {
		h.fail(w, r, err, "item_delete_failed", "failed to remove template item")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

type instantiateRequest struct {
	EmployeeID string `json:"employeeId"`
	TemplateID string `json:"templateId"`
	AssignedTo string `json:"assignedTo"`
}

func (h *Handler) handleInstantiate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload instantiateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.EmployeeID == "" || payload.TemplateID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId and templateId are required", middleware.GetRequestID(r.Context()))
		return
	}

	created, err := h.Service.Instantiate(r.Context(), orgID, user.UserID, payload.EmployeeID, payload.TemplateID, payload.AssignedTo)
	if err != nil {
		h.fail(w, r, err, "instantiate_failed", "failed to instantiate template")
		return
	}
	api.Created(w, map[string]int{"tasksCreated": created}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	tasks, err := h.Service.ListTasks(r.Context(), orgID, r.URL.Query().Get("employeeId"), r.URL.Query().Get("status"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "tasks_failed", "failed to list tasks", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, tasks, middleware.GetRequestID(r.Context()))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleTransitionTask(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("status", payload.Status, "status is required")
	v.Enum("status", payload.Status, []string{onboarding.TaskOpen, onboarding.TaskInProgress, onboarding.TaskDone}, "must be open, in_progress, or done")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.TransitionTask(r.Context(), orgID, user.UserID, chi.URLParam(r, "taskID"), payload.Status); err != nil {
		h.fail(w, r, err, "task_transition_failed", "failed to update task status")
		return
	}
	api.Success(w, map[string]string{"status": payload.Status}, middleware.GetRequestID(r.Context()))
}

type offboardingTaskRequest struct {
	EmployeeID string `json:"employeeId"`
	Title      string `json:"title"`
	DueDate    string `json:"dueDate"`
}

func (h *Handler) handleCreateOffboardingTask(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload offboardingTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	task := onboarding.OffboardingTask{EmployeeID: payload.EmployeeID, Title: payload.Title}
	if payload.DueDate != "" {
		v := shared.NewValidator()
		due, ok := v.Date("dueDate", payload.DueDate)
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
		if ok {
			task.DueDate = &due
		}
	}

	id, err := h.Service.CreateOffboardingTask(r.Context(), orgID, user.UserID, task)
	if err != nil {
		h.fail(w, r, err, "offboarding_create_failed", "failed to create offboarding task")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListOffboardingTasks(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	tasks, err := h.Service.ListOffboardingTasks(r.Context(), orgID, r.URL.Query().Get("employeeId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "offboarding_failed", "failed to list offboarding tasks", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, tasks, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompleteOffboardingTask(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.CompleteOffboardingTask(r.Context(), orgID, user.UserID, chi.URLParam(r, "taskID")); err != nil {
		h.fail(w, r, err, "offboarding_complete_failed", "failed to complete offboarding task")
		return
	}
	api.Success(w, map[string]string{"status": "completed"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, onboarding.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "not found", requestID)
	case errors.Is(err, onboarding.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "invalid task status transition", requestID)
	case errors.Is(err, onboarding.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", "payload validation failed", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
