package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrcore/internal/domain/visibility"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListTypes(ctx context.Context, orgID string) ([]Type, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, annual_quota, accrual_rate, is_paid, created_at
    FROM leave_types
    WHERE org_id = $1 AND deleted_at IS NULL
    ORDER BY name
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Type
	for rows.Next() {
		var lt Type
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.AnnualQuota, &lt.AccrualRate, &lt.IsPaid, &lt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

func (s *Store) GetType(ctx context.Context, orgID, typeID string) (*Type, error) {
	var lt Type
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, annual_quota, accrual_rate, is_paid, created_at
    FROM leave_types
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
  `, orgID, typeID).Scan(&lt.ID, &lt.Name, &lt.AnnualQuota, &lt.AccrualRate, &lt.IsPaid, &lt.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &lt, nil
}

func (s *Store) createTypeTx(ctx context.Context, tx pgx.Tx, orgID string, lt Type) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO leave_types (org_id, name, annual_quota, accrual_rate, is_paid)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, orgID, lt.Name, lt.AnnualQuota, lt.AccrualRate, lt.IsPaid).Scan(&id)
	return id, err
}

func (s *Store) softDeleteTypeTx(ctx context.Context, tx pgx.Tx, orgID, typeID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE leave_types
    SET deleted_at = now(), updated_at = now()
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
  `, orgID, typeID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// HolidayDates returns the org's holiday dates overlapping the inclusive range.
func (s *Store) HolidayDates(ctx context.Context, orgID string, from, to time.Time) ([]time.Time, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT holiday_date
    FROM holidays
    WHERE org_id = $1 AND holiday_date BETWEEN $2 AND $3 AND deleted_at IS NULL
  `, orgID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) ListHolidays(ctx context.Context, orgID string) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, holiday_date
    FROM holidays
    WHERE org_id = $1 AND deleted_at IS NULL
    ORDER BY holiday_date
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) createHolidayTx(ctx context.Context, tx pgx.Tx, orgID, name string, day time.Time) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO holidays (org_id, name, holiday_date) VALUES ($1, $2, $3) RETURNING id
  `, orgID, name, day).Scan(&id)
	return id, err
}

func (s *Store) softDeleteHolidayTx(ctx context.Context, tx pgx.Tx, orgID, holidayID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE holidays
    SET deleted_at = now(), updated_at = now()
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
  `, orgID, holidayID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

var balanceCols = visibility.Columns{Org: "b.org_id", Deleted: "e.deleted_at", Owner: "b.employee_id"}

func (s *Store) ListBalances(ctx context.Context, scope visibility.Scope, employeeID string) ([]Balance, error) {
	query := `
    SELECT b.id, b.employee_id, b.leave_type_id, lt.name, b.balance, b.updated_at
    FROM leave_balances b
    JOIN employees e ON e.id = b.employee_id
    JOIN leave_types lt ON lt.id = b.leave_type_id
    WHERE 1=1`
	query, args := scope.Apply(query, nil, balanceCols)
	if employeeID != "" {
		query += fmt.Sprintf(" AND b.employee_id = $%d", len(args)+1)
		args = append(args, employeeID)
	}
	query += " ORDER BY lt.name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.LeaveType, &b.Balance, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// seedBalanceTx creates the balance row with the type's annual quota if it does
// not exist yet. Existing balances are left untouched so reseeding is safe.
func (s *Store) seedBalanceTx(ctx context.Context, tx pgx.Tx, orgID, employeeID, typeID string, quota float64) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (org_id, employee_id, leave_type_id, balance)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (employee_id, leave_type_id) DO NOTHING
  `, orgID, employeeID, typeID, quota)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *Store) accrueBalanceTx(ctx context.Context, tx pgx.Tx, orgID, employeeID, typeID string, amount float64) error {
	_, err := tx.Exec(ctx, `
    INSERT INTO leave_balances (org_id, employee_id, leave_type_id, balance)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (employee_id, leave_type_id) DO UPDATE
    SET balance = leave_balances.balance + EXCLUDED.balance,
        updated_at = now()
  `, orgID, employeeID, typeID, amount)
	return err
}

var requestCols = visibility.Columns{Org: "r.org_id", Deleted: "e.deleted_at", Owner: "r.employee_id"}

const requestSelect = `
    SELECT r.id, r.employee_id, r.leave_type_id, lt.name,
           r.start_date, r.end_date, r.days,
           COALESCE(r.reason, ''), r.status,
           COALESCE(r.approved_by::text, ''),
           r.created_at, r.updated_at
    FROM leave_requests r
    JOIN employees e ON e.id = r.employee_id
    JOIN leave_types lt ON lt.id = r.leave_type_id
    WHERE 1=1`

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.LeaveType,
		&req.StartDate, &req.EndDate, &req.Days, &req.Reason, &req.Status,
		&req.ApprovedBy, &req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

func (s *Store) GetRequest(ctx context.Context, scope visibility.Scope, requestID string) (*Request, error) {
	query, args := scope.Apply(requestSelect, nil, requestCols)
	query += fmt.Sprintf(" AND r.id = $%d", len(args)+1)
	args = append(args, requestID)

	req, err := scanRequest(s.DB.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Store) ListRequests(ctx context.Context, scope visibility.Scope, status string, limit, offset int) ([]Request, error) {
	query, args := scope.Apply(requestSelect, nil, requestCols)
	if status != "" {
		query += fmt.Sprintf(" AND r.status = $%d", len(args)+1)
		args = append(args, status)
	}
	query += fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *Store) createRequestTx(ctx context.Context, tx pgx.Tx, orgID string, req Request) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO leave_requests (org_id, employee_id, leave_type_id, start_date, end_date, days, reason, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING id
  `, orgID, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate, req.Days, nullIfEmpty(req.Reason), StatusPending).Scan(&id)
	return id, err
}

// lockRequestTx reads the request under FOR UPDATE so concurrent approvals of
// the same request serialize on the row.
func (s *Store) lockRequestTx(ctx context.Context, tx pgx.Tx, orgID, requestID string) (*Request, error) {
	var req Request
	err := tx.QueryRow(ctx, `
    SELECT id, employee_id, leave_type_id, start_date, end_date, days, COALESCE(reason, ''), status,
           COALESCE(approved_by::text, ''), created_at, updated_at
    FROM leave_requests
    WHERE org_id = $1 AND id = $2
    FOR UPDATE
  `, orgID, requestID).Scan(
		&req.ID, &req.EmployeeID, &req.LeaveTypeID, &req.StartDate, &req.EndDate,
		&req.Days, &req.Reason, &req.Status, &req.ApprovedBy, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Store) lockBalanceTx(ctx context.Context, tx pgx.Tx, orgID, employeeID, typeID string) (float64, error) {
	var balance float64
	err := tx.QueryRow(ctx, `
    SELECT balance FROM leave_balances
    WHERE org_id = $1 AND employee_id = $2 AND leave_type_id = $3
    FOR UPDATE
  `, orgID, employeeID, typeID).Scan(&balance)
	return balance, err
}

func (s *Store) debitBalanceTx(ctx context.Context, tx pgx.Tx, orgID, employeeID, typeID string, days float64) error {
	_, err := tx.Exec(ctx, `
    UPDATE leave_balances
    SET balance = balance - $4, updated_at = now()
    WHERE org_id = $1 AND employee_id = $2 AND leave_type_id = $3
  `, orgID, employeeID, typeID, days)
	return err
}

func (s *Store) setRequestStatusTx(ctx context.Context, tx pgx.Tx, orgID, requestID, status, approverUserID string) error {
	_, err := tx.Exec(ctx, `
    UPDATE leave_requests
    SET status = $3, approved_by = $4, updated_at = now()
    WHERE org_id = $1 AND id = $2
  `, orgID, requestID, status, nullIfEmpty(approverUserID))
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
