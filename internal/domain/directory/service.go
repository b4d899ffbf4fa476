package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrcore/internal/domain/audit"
	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/visibility"
)

var (
	ErrNotFound      = errors.New("employee not found")
	ErrDuplicateCode = errors.New("employee code already in use")
	ErrValidation    = errors.New("validation failed")
)

type Service struct {
	Store *Store
	Auth  *auth.Service
	Audit *audit.Service
}

func NewService(store *Store, authSvc *auth.Service, auditSvc *audit.Service) *Service {
	return &Service{Store: store, Auth: authSvc, Audit: auditSvc}
}

// ScopeFor derives the caller's row filter for employee data. Holders of the
// org-wide read permission see every row; everyone else sees themselves and
// their transitive reports. A caller with no employee record sees nothing.
func (s *Service) ScopeFor(ctx context.Context, orgID, userID string) (visibility.Scope, error) {
	if s.Auth.HasPermission(ctx, userID, orgID, auth.PermEmployeesRead) {
		return visibility.Scope{OrgID: orgID, Relation: visibility.RelationFull}, nil
	}

	employeeID, err := s.Store.EmployeeIDByUserID(ctx, orgID, userID)
	if err != nil {
		return visibility.Scope{}, err
	}
	if employeeID == "" {
		return visibility.Scope{OrgID: orgID, Relation: visibility.RelationNone}, nil
	}

	team, err := visibility.Team(ctx, s.Store, orgID, employeeID)
	if err != nil {
		return visibility.Scope{}, err
	}
	return visibility.Scope{
		OrgID:      orgID,
		EmployeeID: employeeID,
		TeamIDs:    team,
		Relation:   visibility.RelationTeam,
	}, nil
}

// EmployeeIDForUser resolves the caller's employee record, empty when the
// user has none in this org.
func (s *Service) EmployeeIDForUser(ctx context.Context, orgID, userID string) (string, error) {
	return s.Store.EmployeeIDByUserID(ctx, orgID, userID)
}

func (s *Service) Get(ctx context.Context, scope visibility.Scope, employeeID string) (*Employee, error) {
	emp, err := s.Store.GetEmployee(ctx, scope, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return emp, nil
}

func (s *Service) List(ctx context.Context, scope visibility.Scope, search Search, limit, offset int) ([]Employee, int, error) {
	total, err := s.Store.CountEmployees(ctx, scope, search)
	if err != nil {
		return nil, 0, err
	}
	employees, err := s.Store.ListEmployees(ctx, scope, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func validateEmployee(emp Employee) error {
	if strings.TrimSpace(emp.EmployeeCode) == "" ||
		strings.TrimSpace(emp.FirstName) == "" ||
		strings.TrimSpace(emp.LastName) == "" ||
		strings.TrimSpace(emp.Email) == "" {
		return ErrValidation
	}
	return nil
}

func (s *Service) Create(ctx context.Context, orgID, actorUserID string, emp Employee) (string, error) {
	if err := validateEmployee(emp); err != nil {
		return "", err
	}
	if emp.EmploymentStatus == "" {
		emp.EmploymentStatus = "active"
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.createEmployeeTx(ctx, tx, orgID, emp)
	if err != nil {
		return "", mapDuplicateCode(err)
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "employee.create", "employee", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) Update(ctx context.Context, orgID, actorUserID, employeeID string, emp Employee) error {
	if err := validateEmployee(emp); err != nil {
		return err
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	updated, err := s.Store.updateEmployeeTx(ctx, tx, orgID, employeeID, emp)
	if err != nil {
		return mapDuplicateCode(err)
	}
	if !updated {
		return ErrNotFound
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "employee.update", "employee", employeeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SoftDelete hides the employee from default listings and marks them inactive.
// The row stays behind for restore and for audit history.
func (s *Service) SoftDelete(ctx context.Context, orgID, actorUserID, employeeID string) error {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deleted, err := s.Store.softDeleteEmployeeTx(ctx, tx, orgID, employeeID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "employee.delete", "employee", employeeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) Restore(ctx context.Context, orgID, actorUserID, employeeID string) error {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	restored, err := s.Store.restoreEmployeeTx(ctx, tx, orgID, employeeID)
	if err != nil {
		return err
	}
	if !restored {
		return ErrNotFound
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "employee.restore", "employee", employeeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) CreateDepartment(ctx context.Context, orgID, actorUserID, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrValidation
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.createDepartmentTx(ctx, tx, orgID, name)
	if err != nil {
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "department.create", "department", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, orgID, actorUserID, departmentID string) error {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deleted, err := s.Store.softDeleteDepartmentTx(ctx, tx, orgID, departmentID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "department.delete", "department", departmentID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) CreateDesignation(ctx context.Context, orgID, actorUserID, departmentID, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", ErrValidation
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.createDesignationTx(ctx, tx, orgID, departmentID, title)
	if err != nil {
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "designation.create", "designation", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) DeleteDesignation(ctx context.Context, orgID, actorUserID, designationID string) error {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deleted, err := s.Store.softDeleteDesignationTx(ctx, tx, orgID, designationID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "designation.delete", "designation", designationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) GetCompensation(ctx context.Context, orgID, employeeID string) (*Compensation, error) {
	comp, err := s.Store.GetCompensation(ctx, orgID, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return comp, nil
}

func (s *Service) UpsertCompensation(ctx context.Context, orgID, actorUserID, employeeID string, comp Compensation) (string, error) {
	if comp.BaseSalary < 0 || comp.Bonus < 0 {
		return "", ErrValidation
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.upsertCompensationTx(ctx, tx, orgID, employeeID, comp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return "", ErrNotFound
		}
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "compensation.upsert", "compensation", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func mapDuplicateCode(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateCode
	}
	return err
}
