package leave

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"hrcore/internal/domain/audit"
	"hrcore/internal/domain/visibility"
)

var (
	ErrNotFound       = errors.New("leave request not found")
	ErrUnknownType    = errors.New("unknown leave type")
	ErrValidation     = errors.New("validation failed")
	ErrNoEmployee     = errors.New("caller has no employee record")
	ErrNotOwnEmployee = errors.New("cannot request leave for another employee")
)

// Directory is the slice of the employee directory leave depends on: row
// visibility derivation and the caller's own employee record.
type Directory interface {
	ScopeFor(ctx context.Context, orgID, userID string) (visibility.Scope, error)
	EmployeeIDForUser(ctx context.Context, orgID, userID string) (string, error)
}

type Service struct {
	Store     *Store
	Directory Directory
	Audit     *audit.Service
}

func NewService(store *Store, dir Directory, auditSvc *audit.Service) *Service {
	return &Service{Store: store, Directory: dir, Audit: auditSvc}
}

func (s *Service) ListTypes(ctx context.Context, orgID string) ([]Type, error) {
	return s.Store.ListTypes(ctx, orgID)
}

func (s *Service) CreateType(ctx context.Context, orgID, actorUserID string, lt Type) (string, error) {
	if strings.TrimSpace(lt.Name) == "" || lt.AnnualQuota < 0 || lt.AccrualRate < 0 {
		return "", ErrValidation
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.createTypeTx(ctx, tx, orgID, lt)
	if err != nil {
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "leave_type.create", "leave_type", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) DeleteType(ctx context.Context, orgID, actorUserID, typeID string) error {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deleted, err := s.Store.softDeleteTypeTx(ctx, tx, orgID, typeID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUnknownType
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "leave_type.delete", "leave_type", typeID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) ListHolidays(ctx context.Context, orgID string) ([]Holiday, error) {
	return s.Store.ListHolidays(ctx, orgID)
}

func (s *Service) CreateHoliday(ctx context.Context, orgID, actorUserID, name string, day time.Time) (string, error) {
	if strings.TrimSpace(name) == "" || day.IsZero() {
		return "", ErrValidation
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.createHolidayTx(ctx, tx, orgID, name, day)
	if err != nil {
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "holiday.create", "holiday", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) DeleteHoliday(ctx context.Context, orgID, actorUserID, holidayID string) error {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deleted, err := s.Store.softDeleteHolidayTx(ctx, tx, orgID, holidayID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "holiday.delete", "holiday", holidayID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateRequest files a pending leave request for the caller's own employee
// record. Day count is computed up front against the org's holiday calendar so
// the requester sees the cost before approval.
func (s *Service) CreateRequest(ctx context.Context, orgID, userID string, req Request) (string, error) {
	employeeID, err := s.Directory.EmployeeIDForUser(ctx, orgID, userID)
	if err != nil {
		return "", err
	}
	if employeeID == "" {
		return "", ErrNoEmployee
	}
	if req.EmployeeID != "" && req.EmployeeID != employeeID {
		return "", ErrNotOwnEmployee
	}
	req.EmployeeID = employeeID

	if _, err := s.Store.GetType(ctx, orgID, req.LeaveTypeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUnknownType
		}
		return "", err
	}

	holidays, err := s.Store.HolidayDates(ctx, orgID, req.StartDate, req.EndDate)
	if err != nil {
		return "", err
	}
	days, err := CalculateLeaveDays(req.StartDate, req.EndDate, holidays)
	if err != nil {
		return "", ErrValidation
	}
	if days == 0 {
		return "", ErrValidation
	}
	req.Days = days

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.createRequestTx(ctx, tx, orgID, req)
	if err != nil {
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, userID, "leave.request", "leave_request", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) GetRequest(ctx context.Context, orgID, userID, requestID string) (*Request, error) {
	scope, err := s.Directory.ScopeFor(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	req, err := s.Store.GetRequest(ctx, scope, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (s *Service) ListRequests(ctx context.Context, orgID, userID, status string, limit, offset int) ([]Request, error) {
	scope, err := s.Directory.ScopeFor(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	return s.Store.ListRequests(ctx, scope, status, limit, offset)
}

func (s *Service) ListBalances(ctx context.Context, orgID, userID, employeeID string) ([]Balance, error) {
	scope, err := s.Directory.ScopeFor(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	return s.Store.ListBalances(ctx, scope, employeeID)
}

// SeedBalances creates the annual-quota balance rows for every fixed-quota
// leave type the employee does not already have. Existing rows are untouched.
func (s *Service) SeedBalances(ctx context.Context, orgID, actorUserID, employeeID string) (int, error) {
	types, err := s.Store.ListTypes(ctx, orgID)
	if err != nil {
		return 0, err
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	seeded := 0
	for _, lt := range types {
		if lt.AccrualRate > 0 {
			continue
		}
		created, err := s.Store.seedBalanceTx(ctx, tx, orgID, employeeID, lt.ID, lt.AnnualQuota)
		if err != nil {
			return 0, err
		}
		if created {
			seeded++
		}
	}
	if seeded > 0 {
		if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "leave.seed_balances", "employee", employeeID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return seeded, nil
}

// ApplyAccrual adds one accrual period's worth of days for every accrual-based
// type. It is invoked explicitly; there is no scheduler in the core.
func (s *Service) ApplyAccrual(ctx context.Context, orgID, actorUserID, employeeID string) (int, error) {
	types, err := s.Store.ListTypes(ctx, orgID)
	if err != nil {
		return 0, err
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	applied := 0
	for _, lt := range types {
		if lt.AccrualRate <= 0 {
			continue
		}
		if err := s.Store.accrueBalanceTx(ctx, tx, orgID, employeeID, lt.ID, lt.AccrualRate); err != nil {
			return 0, err
		}
		applied++
	}
	if applied > 0 {
		if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "leave.accrual", "employee", employeeID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return applied, nil
}
