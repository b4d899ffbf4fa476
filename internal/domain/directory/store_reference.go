package directory

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListDepartments(ctx context.Context, orgID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at
    FROM departments
    WHERE org_id = $1 AND deleted_at IS NULL
    ORDER BY name
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var dept Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, dept)
	}
	return out, rows.Err()
}

func (s *Store) createDepartmentTx(ctx context.Context, tx pgx.Tx, orgID, name string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO departments (org_id, name) VALUES ($1, $2) RETURNING id
  `, orgID, name).Scan(&id)
	return id, err
}

func (s *Store) softDeleteDepartmentTx(ctx context.Context, tx pgx.Tx, orgID, departmentID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE departments
    SET deleted_at = now(), updated_at = now()
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
  `, orgID, departmentID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *Store) ListDesignations(ctx context.Context, orgID string) ([]Designation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(department_id::text, ''), title, created_at
    FROM designations
    WHERE org_id = $1 AND deleted_at IS NULL
    ORDER BY title
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Designation
	for rows.Next() {
		var des Designation
		if err := rows.Scan(&des.ID, &des.DepartmentID, &des.Title, &des.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, des)
	}
	return out, rows.Err()
}

func (s *Store) createDesignationTx(ctx context.Context, tx pgx.Tx, orgID, departmentID, title string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO designations (org_id, department_id, title) VALUES ($1, $2, $3) RETURNING id
  `, orgID, nullIfEmpty(departmentID), title).Scan(&id)
	return id, err
}

func (s *Store) softDeleteDesignationTx(ctx context.Context, tx pgx.Tx, orgID, designationID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE designations
    SET deleted_at = now(), updated_at = now()
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
  `, orgID, designationID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
