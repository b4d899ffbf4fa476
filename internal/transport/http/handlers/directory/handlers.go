package directoryhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/directory"
	"hrcore/internal/transport/http/api"
	"hrcore/internal/transport/http/middleware"
	"hrcore/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *directory.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequireUser).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Delete("/{employeeID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/{employeeID}/restore", h.handleRestore)
		r.With(middleware.RequirePermission(auth.PermCompensationRead, h.Perms)).Get("/{employeeID}/compensation", h.handleGetCompensation)
		r.With(middleware.RequirePermission(auth.PermCompensationWrite, h.Perms)).Put("/{employeeID}/compensation", h.handleUpsertCompensation)
	})
	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/", h.handleListDepartments)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreateDepartment)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Delete("/{departmentID}", h.handleDeleteDepartment)
	})
	r.Route("/designations", func(r chi.Router) {
		r.With(middleware.RequireUser).Get("/", h.handleListDesignations)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreateDesignation)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Delete("/{designationID}", h.handleDeleteDesignation)
	})
}

type employeeRequest struct {
	UserID           string `json:"userId"`
	EmployeeCode     string `json:"employeeCode"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	DOB              string `json:"dob"`
	Gender           string `json:"gender"`
	MaritalStatus    string `json:"maritalStatus"`
	DepartmentID     string `json:"departmentId"`
	DesignationID    string `json:"designationId"`
	ManagerID        string `json:"managerId"`
	EmploymentType   string `json:"employmentType"`
	JoiningDate      string `json:"joiningDate"`
	ConfirmationDate string `json:"confirmationDate"`
	EmploymentStatus string `json:"employmentStatus"`
	WorkLocation     string `json:"workLocation"`
}

func (p employeeRequest) toEmployee(w http.ResponseWriter, requestID string) (directory.Employee, bool) {
	v := shared.NewValidator()
	v.Required("employeeCode", p.EmployeeCode, "employee code is required")
	v.Required("firstName", p.FirstName, "first name is required")
	v.Required("lastName", p.LastName, "last name is required")
	v.Required("email", p.Email, "email is required")
	v.Enum("employmentStatus", p.EmploymentStatus, []string{"active", "inactive"}, "must be active or inactive")

	parseOptional := func(field, raw string) *time.Time {
		if raw == "" {
			return nil
		}
		parsed, ok := v.Date(field, raw)
		if !ok {
			return nil
		}
		return &parsed
	}
	dob := parseOptional("dob", p.DOB)
	joining := parseOptional("joiningDate", p.JoiningDate)
	confirmation := parseOptional("confirmationDate", p.ConfirmationDate)

	if v.Reject(w, requestID) {
		return directory.Employee{}, false
	}

	return directory.Employee{
		UserID:           p.UserID,
		EmployeeCode:     p.EmployeeCode,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		Phone:            p.Phone,
		DOB:              dob,
		Gender:           p.Gender,
		MaritalStatus:    p.MaritalStatus,
		DepartmentID:     p.DepartmentID,
		DesignationID:    p.DesignationID,
		ManagerID:        p.ManagerID,
		EmploymentType:   p.EmploymentType,
		JoiningDate:      joining,
		ConfirmationDate: confirmation,
		EmploymentStatus: p.EmploymentStatus,
		WorkLocation:     p.WorkLocation,
	}, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	scope, err := h.Service.ScopeFor(r.Context(), orgID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	// Deleted rows are only visible to writers, who are the ones who can
	// restore them.
	if r.URL.Query().Get("includeDeleted") == "true" &&
		h.Perms.HasPermission(r.Context(), user.UserID, orgID, auth.PermEmployeesWrite) {
		scope.IncludeDeleted = true
	}

	search := directory.Search{
		Query:  r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}
	page := shared.ParsePagination(r, 25, 100)

	employees, total, err := h.Service.List(r.Context(), scope, search, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"items":  employees,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	scope, err := h.Service.ScopeFor(r.Context(), orgID, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Service.Get(r.Context(), scope, chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	emp, ok := payload.toEmployee(w, middleware.GetRequestID(r.Context()))
	if !ok {
		return
	}

	id, err := h.Service.Create(r.Context(), orgID, user.UserID, emp)
	if err != nil {
		h.failMutation(w, r, err, "employee_create_failed", "failed to create employee")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	emp, ok := payload.toEmployee(w, middleware.GetRequestID(r.Context()))
	if !ok {
		return
	}

	if err := h.Service.Update(r.Context(), orgID, user.UserID, chi.URLParam(r, "employeeID"), emp); err != nil {
		h.failMutation(w, r, err, "employee_update_failed", "failed to update employee")
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.SoftDelete(r.Context(), orgID, user.UserID, chi.URLParam(r, "employeeID")); err != nil {
		h.failMutation(w, r, err, "employee_delete_failed", "failed to delete employee")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.Restore(r.Context(), orgID, user.UserID, chi.URLParam(r, "employeeID")); err != nil {
		h.failMutation(w, r, err, "employee_restore_failed", "failed to restore employee")
		return
	}
	api.Success(w, map[string]string{"status": "restored"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCompensation(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())

	comp, err := h.Service.GetCompensation(r.Context(), orgID, chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "compensation not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "compensation_failed", "failed to load compensation", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, comp, middleware.GetRequestID(r.Context()))
}

type compensationRequest struct {
	BaseSalary  float64 `json:"baseSalary"`
	Bonus       float64 `json:"bonus"`
	BankAccount string  `json:"bankAccount"`
	IFSCCode    string  `json:"ifscCode"`
}

func (h *Handler) handleUpsertCompensation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload compensationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.UpsertCompensation(r.Context(), orgID, user.UserID, chi.URLParam(r, "employeeID"), directory.Compensation{
		BaseSalary:  payload.BaseSalary,
		Bonus:       payload.Bonus,
		BankAccount: payload.BankAccount,
		IFSCCode:    payload.IFSCCode,
	})
	if err != nil {
		h.failMutation(w, r, err, "compensation_failed", "failed to save compensation")
		return
	}
	api.Success(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	departments, err := h.Service.Store.ListDepartments(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "departments_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, departments, middleware.GetRequestID(r.Context()))
}

type departmentRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.CreateDepartment(r.Context(), orgID, user.UserID, payload.Name)
	if err != nil {
		h.failMutation(w, r, err, "department_create_failed", "failed to create department")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.DeleteDepartment(r.Context(), orgID, user.UserID, chi.URLParam(r, "departmentID")); err != nil {
		h.failMutation(w, r, err, "department_delete_failed", "failed to delete department")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListDesignations(w http.ResponseWriter, r *http.Request) {
	orgID, _ := middleware.GetOrg(r.Context())
	designations, err := h.Service.Store.ListDesignations(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "designations_failed", "failed to list designations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, designations, middleware.GetRequestID(r.Context()))
}

type designationRequest struct {
	DepartmentID string `json:"departmentId"`
	Title        string `json:"title"`
}

func (h *Handler) handleCreateDesignation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	var payload designationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Service.CreateDesignation(r.Context(), orgID, user.UserID, payload.DepartmentID, payload.Title)
	if err != nil {
		h.failMutation(w, r, err, "designation_create_failed", "failed to create designation")
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteDesignation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	orgID, _ := middleware.GetOrg(r.Context())

	if err := h.Service.DeleteDesignation(r.Context(), orgID, user.UserID, chi.URLParam(r, "designationID")); err != nil {
		h.failMutation(w, r, err, "designation_delete_failed", "failed to delete designation")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failMutation(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "not found", middleware.GetRequestID(r.Context()))
	case errors.Is(err, directory.ErrDuplicateCode):
		api.Fail(w, http.StatusConflict, "duplicate_code", "employee code already in use", middleware.GetRequestID(r.Context()))
	case errors.Is(err, directory.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", "payload validation failed", middleware.GetRequestID(r.Context()))
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, middleware.GetRequestID(r.Context()))
	}
}
