package leavehandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/leave"
	"hrcore/internal/transport/http/api"
	"hrcore/internal/transport/http/middleware"
	"hrcore/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *leave.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/types", h.handleListTypes)
		r.With(middleware.RequirePermission(auth.PermOrgAdmin, h.Perms)).Post("/types", h.handleCreateType)
		r.With(middleware.RequirePermission(auth.PermOrgAdmin, h.Perms)).Delete("/types/{typeID}", h.handleDeleteType)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequirePermission(auth.PermOrgAdmin, h.Perms)).Post("/holidays", h.handleCreateHoliday)
		r.With(middleware.RequirePermission(auth.PermOrgAdmin, h.Perms)).Delete("/holidays/{holidayID}", h.handleDeleteHoliday)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balances", h.handleListBalances)
		r.With(middleware.RequirePermission(auth.PermOrgAdmin, h.Perms)).Post("/balances/seed", h.handleSeedBalances)
		r.With(middleware.RequirePermission(auth.PermOrgAdmin, h.Perms)).Post("/accrual/run", h.handleRunAccrual)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests", h.handleListRequests)
		r.With(middleware.RequirePermission(auth.PermLeaveWrite, h.Perms)).Post("/requests", h.handleCreateRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Post("/requests/{requestID}/reject", h.handleReject)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	types, err := h.Service.ListTypes(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to list leave types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload leave.Type
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.CreateType(r.Context(), orgID, user.UserID, payload)
	if err != nil {
		h.fail(w, r, err, "leave_type_create_failed", "failed to create leave type")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.DeleteType(r.Context(), orgID, user.UserID, chi.URLParam(r, "typeID")); err != nil {
		h.fail(w, r, err, "leave_type_delete_failed", "failed to delete leave type")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	holidays, err := h.Service.ListHolidays(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holidays_failed", "failed to list holidays", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, holidays, middleware.GetRequestID(r.Context()))
}

type holidayRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload holidayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "holiday name is required")
	day, _ := v.Date("date", payload.Date)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateHoliday(r.Context(), orgID, user.UserID, payload.Name, day)
	if err != nil {
		h.fail(w, r, err, "holiday_create_failed", "failed to create holiday")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.DeleteHoliday(r.Context(), orgID, user.UserID, chi.URLParam(r, "holidayID")); err != nil {
		h.fail(w, r, err, "holiday_delete_failed", "failed to delete holiday")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	balances, err := h.Service.ListBalances(r.Context(), orgID, user.UserID, r.URL.Query().Get("employeeId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to list balances", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

type employeeTarget struct {
	EmployeeID string `json:"employeeId"`
}

func (h *Handler) handleSeedBalances(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload employeeTarget
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId is required", middleware.GetRequestID(r.Context()))
		return
	}

	seeded, err := h.Service.SeedBalances(r.Context(), orgID, user.UserID, payload.EmployeeID)
	if err != nil {
		h.fail(w, r, err, "balance_seed_failed", "failed to seed balances")
		return
	}
	api.Success(w, map[string]int{"seeded": seeded}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunAccrual(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload employeeTarget
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employeeId is required", middleware.GetRequestID(r.Context()))
		return
	}

	applied, err := h.Service.ApplyAccrual(r.Context(), orgID, user.UserID, payload.EmployeeID)
	if err != nil {
		h.fail(w, r, err, "accrual_failed", "failed to apply accrual")
		return
	}
	api.Success(w, map[string]int{"applied": applied}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())
	page := shared.ParsePagination(r, 25, 100)

	requests, err := h.Service.ListRequests(r.Context(), orgID, user.UserID, r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "requests_failed", "failed to list leave requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

type leaveRequestPayload struct {
	EmployeeID  string `json:"employeeId"`
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Reason      string `json:"reason"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload leaveRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("leaveTypeId", payload.LeaveTypeID, "leave type is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateRequest(r.Context(), orgID, user.UserID, leave.Request{
		EmployeeID:  payload.EmployeeID,
		LeaveTypeID: payload.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		Reason:      payload.Reason,
	})
	if err != nil {
		h.fail(w, r, err, "request_create_failed", "failed to create leave request")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	req, err := h.Service.GetRequest(r.Context(), orgID, user.UserID, chi.URLParam(r, "requestID"))
	if err != nil {
		h.fail(w, r, err, "request_failed", "failed to load leave request")
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, leave.StatusApproved)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, leave.StatusRejected)
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request, status string) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.ProcessRequest(r.Context(), orgID, user.UserID, chi.URLParam(r, "requestID"), status); err != nil {
		h.fail(w, r, err, "request_process_failed", "failed to process leave request")
		return
	}
	api.Success(w, map[string]string{"status": status}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, leave.ErrNotFound), errors.Is(err, leave.ErrUnknownType):
		api.Fail(w, http.StatusNotFound, "not_found", "not found", requestID)
	case errors.Is(err, leave.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "request is not pending", requestID)
	case errors.Is(err, leave.ErrInsufficientBalance):
		api.Fail(w, http.StatusUnprocessableEntity, "insufficient_balance", "insufficient leave balance", requestID)
	case errors.Is(err, leave.ErrInvalidStatus), errors.Is(err, leave.ErrValidation), errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "validation_error", "payload validation failed", requestID)
	case errors.Is(err, leave.ErrNoEmployee):
		api.Fail(w, http.StatusBadRequest, "no_employee_record", "caller has no employee record", requestID)
	case errors.Is(err, leave.ErrNotOwnEmployee):
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot request leave for another employee", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
