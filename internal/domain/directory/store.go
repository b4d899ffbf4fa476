package directory

import (
	"context"
	"fmt"
	"strings"

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

var employeeCols = visibility.Columns{Org: "e.org_id", Deleted: "e.deleted_at", Owner: "e.id"}

const employeeSelect = `
    SELECT e.id,
           COALESCE(e.user_id::text, ''),
           e.employee_code, e.first_name, e.last_name, e.email,
           COALESCE(e.phone, ''),
           e.dob,
           COALESCE(e.gender, ''),
           COALESCE(e.marital_status, ''),
           COALESCE(e.department_id::text, ''),
           COALESCE(e.designation_id::text, ''),
           COALESCE(e.manager_id::text, ''),
           COALESCE(e.employment_type, ''),
           e.joining_date, e.confirmation_date, e.employment_status,
           COALESCE(e.work_location, ''),
           e.created_at, e.updated_at, e.deleted_at
    FROM employees e
    WHERE 1=1`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeCode, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.Phone, &emp.DOB, &emp.Gender, &emp.MaritalStatus,
		&emp.DepartmentID, &emp.DesignationID, &emp.ManagerID, &emp.EmploymentType,
		&emp.JoiningDate, &emp.ConfirmationDate, &emp.EmploymentStatus, &emp.WorkLocation,
		&emp.CreatedAt, &emp.UpdatedAt, &emp.DeletedAt,
	)
	return emp, err
}

func (s *Store) GetEmployee(ctx context.Context, scope visibility.Scope, employeeID string) (*Employee, error) {
	query, args := scope.Apply(employeeSelect, nil, employeeCols)
	query += fmt.Sprintf(" AND e.id = $%d", len(args)+1)
	args = append(args, employeeID)

	emp, err := scanEmployee(s.DB.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// appendSearch adds free-text and status filters. It must only ever be called
// with a query that already passed through scope.Apply: search narrows the
// visible set and never widens it.
func appendSearch(query string, args []any, search Search) (string, []any) {
	if q := strings.TrimSpace(search.Query); q != "" {
		pattern := "%" + q + "%"
		pos := len(args) + 1
		query += fmt.Sprintf(" AND (e.employee_code ILIKE $%d OR e.first_name ILIKE $%d OR e.last_name ILIKE $%d OR e.email ILIKE $%d)", pos, pos, pos, pos)
		args = append(args, pattern)
	}
	if status := strings.TrimSpace(search.Status); status != "" {
		query += fmt.Sprintf(" AND e.employment_status = $%d", len(args)+1)
		args = append(args, status)
	}
	return query, args
}

func (s *Store) ListEmployees(ctx context.Context, scope visibility.Scope, search Search, limit, offset int) ([]Employee, error) {
	query, args := scope.Apply(employeeSelect, nil, employeeCols)
	query, args = appendSearch(query, args, search)
	query += fmt.Sprintf(" ORDER BY e.last_name, e.first_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) CountEmployees(ctx context.Context, scope visibility.Scope, search Search) (int, error) {
	query, args := scope.Apply("SELECT COUNT(1) FROM employees e WHERE 1=1", nil, employeeCols)
	query, args = appendSearch(query, args, search)

	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) createEmployeeTx(ctx context.Context, tx pgx.Tx, orgID string, emp Employee) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO employees (org_id, user_id, employee_code, first_name, last_name, email, phone,
      dob, gender, marital_status, department_id, designation_id, manager_id, employment_type,
      joining_date, confirmation_date, employment_status, work_location)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
    RETURNING id
  `,
		orgID, nullIfEmpty(emp.UserID), emp.EmployeeCode, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.DOB, nullIfEmpty(emp.Gender), nullIfEmpty(emp.MaritalStatus),
		nullIfEmpty(emp.DepartmentID), nullIfEmpty(emp.DesignationID), nullIfEmpty(emp.ManagerID),
		nullIfEmpty(emp.EmploymentType), emp.JoiningDate, emp.ConfirmationDate,
		emp.EmploymentStatus, nullIfEmpty(emp.WorkLocation),
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) updateEmployeeTx(ctx context.Context, tx pgx.Tx, orgID, employeeID string, emp Employee) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE employees
    SET employee_code = $1,
        first_name = $2,
        last_name = $3,
        email = $4,
        phone = $5,
        dob = $6,
        gender = $7,
        marital_status = $8,
        department_id = $9,
        designation_id = $10,
        manager_id = $11,
        employment_type = $12,
        joining_date = $13,
        confirmation_date = $14,
        employment_status = $15,
        work_location = $16,
        updated_at = now()
    WHERE org_id = $17 AND id = $18 AND deleted_at IS NULL
  `,
		emp.EmployeeCode, emp.FirstName, emp.LastName, emp.Email, emp.Phone, emp.DOB,
		nullIfEmpty(emp.Gender), nullIfEmpty(emp.MaritalStatus),
		nullIfEmpty(emp.DepartmentID), nullIfEmpty(emp.DesignationID), nullIfEmpty(emp.ManagerID),
		nullIfEmpty(emp.EmploymentType), emp.JoiningDate, emp.ConfirmationDate,
		emp.EmploymentStatus, nullIfEmpty(emp.WorkLocation),
		orgID, employeeID,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *Store) softDeleteEmployeeTx(ctx context.Context, tx pgx.Tx, orgID, employeeID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE employees
    SET deleted_at = now(), employment_status = 'inactive', updated_at = now()
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
  `, orgID, employeeID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *Store) restoreEmployeeTx(ctx context.Context, tx pgx.Tx, orgID, employeeID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE employees
    SET deleted_at = NULL, updated_at = now()
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NOT NULL
  `, orgID, employeeID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, orgID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT id FROM employees
    WHERE org_id = $1 AND user_id = $2 AND deleted_at IS NULL
  `, orgID, userID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// DirectReports implements visibility.ReportsStore.
func (s *Store) DirectReports(ctx context.Context, orgID string, managerIDs []string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id FROM employees
    WHERE org_id = $1 AND manager_id = ANY($2) AND deleted_at IS NULL
  `, orgID, managerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
