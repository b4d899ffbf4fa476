package directory

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Compensation rows are gated by their own permission keys; the store only
// ever sees callers that already passed the compensation gate, so the filter
// here is org scope and soft delete, not relationship.
func (s *Store) GetCompensation(ctx context.Context, orgID, employeeID string) (*Compensation, error) {
	var comp Compensation
	err := s.DB.QueryRow(ctx, `
    SELECT c.id, c.employee_id, c.base_salary, c.bonus,
           COALESCE(c.bank_account, ''), COALESCE(c.ifsc_code, ''),
           c.created_at, c.updated_at
    FROM compensation c
    JOIN employees e ON e.id = c.employee_id
    WHERE c.org_id = $1 AND c.employee_id = $2
      AND c.deleted_at IS NULL AND e.deleted_at IS NULL
  `, orgID, employeeID).Scan(
		&comp.ID, &comp.EmployeeID, &comp.BaseSalary, &comp.Bonus,
		&comp.BankAccount, &comp.IFSCCode, &comp.CreatedAt, &comp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comp, nil
}

func (s *Store) upsertCompensationTx(ctx context.Context, tx pgx.Tx, orgID, employeeID string, comp Compensation) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO compensation (org_id, employee_id, base_salary, bonus, bank_account, ifsc_code)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (employee_id) DO UPDATE
    SET base_salary = EXCLUDED.base_salary,
        bonus = EXCLUDED.bonus,
        bank_account = EXCLUDED.bank_account,
        ifsc_code = EXCLUDED.ifsc_code,
        deleted_at = NULL,
        updated_at = now()
    RETURNING id
  `, orgID, employeeID, comp.BaseSalary, comp.Bonus, nullIfEmpty(comp.BankAccount), nullIfEmpty(comp.IFSCCode)).Scan(&id)
	return id, err
}
