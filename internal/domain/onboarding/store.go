package onboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListTemplates(ctx context.Context, orgID string) ([]Template, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at
    FROM onboarding_templates
    WHERE org_id = $1 AND deleted_at IS NULL
    ORDER BY name
  `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var tpl Template
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (s *Store) createTemplateTx(ctx context.Context, tx pgx.Tx, orgID, name string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO onboarding_templates (org_id, name) VALUES ($1, $2) RETURNING id
  `, orgID, name).Scan(&id)
	return id, err
}

func (s *Store) softDeleteTemplateTx(ctx context.Context, tx pgx.Tx, orgID, templateID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE onboarding_templates
    SET deleted_at = now(), updated_at = now()
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
  `, orgID, templateID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *Store) templateExists(ctx context.Context, orgID, templateID string) (bool, error) {
	var one int
	err := s.DB.QueryRow(ctx, `
    SELECT 1 FROM onboarding_templates
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
  `, orgID, templateID).Scan(&one)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) ListItems(ctx context.Context, orgID, templateID string) ([]TemplateItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT i.id, i.template_id, i.task_title, i.default_due_days, i.sort_order
    FROM onboarding_template_items i
    JOIN onboarding_templates t ON t.id = i.template_id
    WHERE t.org_id = $1 AND i.template_id = $2
      AND i.deleted_at IS NULL AND t.deleted_at IS NULL
    ORDER BY i.sort_order
  `, orgID, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TemplateItem
	for rows.Next() {
		var item TemplateItem
		if err := rows.Scan(&item.ID, &item.TemplateID, &item.TaskTitle, &item.DefaultDueDays, &item.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// itemsForUpdateTx re-reads the template's items inside the instantiation
// transaction, ordered by sort_order so task creation order is stable.
func (s *Store) itemsForUpdateTx(ctx context.Context, tx pgx.Tx, orgID, templateID string) ([]TemplateItem, error) {
	rows, err := tx.Query(ctx, `
    SELECT i.id, i.template_id, i.task_title, i.default_due_days, i.sort_order
    FROM onboarding_template_items i
    JOIN onboarding_templates t ON t.id = i.template_id
    WHERE t.org_id = $1 AND i.template_id = $2
      AND i.deleted_at IS NULL AND t.deleted_at IS NULL
    ORDER BY i.sort_order
  `, orgID, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TemplateItem
	for rows.Next() {
		var item TemplateItem
		if err := rows.Scan(&item.ID, &item.TemplateID, &item.TaskTitle, &item.DefaultDueDays, &item.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) createItemTx(ctx context.Context, tx pgx.Tx, item TemplateItem) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO onboarding_template_items (template_id, task_title, default_due_days, sort_order)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, item.TemplateID, item.TaskTitle, item.DefaultDueDays, item.SortOrder).Scan(&id)
	return id, err
}

func (s *Store) softDeleteItemTx(ctx context.Context, tx pgx.Tx, orgID, itemID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE onboarding_template_items i
    SET deleted_at = now()
    FROM onboarding_templates t
    WHERE i.template_id = t.id AND t.org_id = $1 AND i.id = $2 AND i.deleted_at IS NULL
  `, orgID, itemID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *Store) createTaskTx(ctx context.Context, tx pgx.Tx, orgID string, task Task) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO onboarding_tasks (org_id, employee_id, title, due_date, status, assigned_to)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, orgID, task.EmployeeID, task.Title, task.DueDate, task.Status, nullIfEmpty(task.AssignedTo)).Scan(&id)
	return id, err
}

func (s *Store) ListTasks(ctx context.Context, orgID, employeeID, status string) ([]Task, error) {
	query := `
    SELECT t.id, t.employee_id, t.title, t.due_date, t.status,
           COALESCE(t.assigned_to::text, ''), t.created_at, t.updated_at
    FROM onboarding_tasks t
    JOIN employees e ON e.id = t.employee_id
    WHERE t.org_id = $1 AND e.deleted_at IS NULL`
	args := []any{orgID}
	if employeeID != "" {
		query += fmt.Sprintf(" AND t.employee_id = $%d", len(args)+1)
		args = append(args, employeeID)
	}
	if status != "" {
		query += fmt.Sprintf(" AND t.status = $%d", len(args)+1)
		args = append(args, status)
	}
	query += " ORDER BY t.due_date NULLS LAST, t.created_at"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.EmployeeID, &task.Title, &task.DueDate, &task.Status, &task.AssignedTo, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (s *Store) lockTaskTx(ctx context.Context, tx pgx.Tx, orgID, taskID string) (*Task, error) {
	var task Task
	err := tx.QueryRow(ctx, `
    SELECT id, employee_id, title, due_date, status, COALESCE(assigned_to::text, ''), created_at, updated_at
    FROM onboarding_tasks
    WHERE org_id = $1 AND id = $2
    FOR UPDATE
  `, orgID, taskID).Scan(&task.ID, &task.EmployeeID, &task.Title, &task.DueDate, &task.Status, &task.AssignedTo, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Store) setTaskStatusTx(ctx context.Context, tx pgx.Tx, orgID, taskID, status string) error {
	_, err := tx.Exec(ctx, `
    UPDATE onboarding_tasks
    SET status = $3, updated_at = now()
    WHERE org_id = $1 AND id = $2
  `, orgID, taskID, status)
	return err
}

func (s *Store) createOffboardingTaskTx(ctx context.Context, tx pgx.Tx, orgID string, task OffboardingTask) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO offboarding_tasks (org_id, employee_id, title, due_date)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, orgID, task.EmployeeID, task.Title, task.DueDate).Scan(&id)
	return id, err
}

func (s *Store) ListOffboardingTasks(ctx context.Context, orgID, employeeID string) ([]OffboardingTask, error) {
	query := `
    SELECT id, employee_id, title, due_date, completed, created_at
    FROM offboarding_tasks
    WHERE org_id = $1`
	args := []any{orgID}
	if employeeID != "" {
		query += fmt.Sprintf(" AND employee_id = $%d", len(args)+1)
		args = append(args, employeeID)
	}
	query += " ORDER BY created_at"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OffboardingTask
	for rows.Next() {
		var task OffboardingTask
		if err := rows.Scan(&task.ID, &task.EmployeeID, &task.Title, &task.DueDate, &task.Completed, &task.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (s *Store) completeOffboardingTaskTx(ctx context.Context, tx pgx.Tx, orgID, taskID string) (bool, error) {
	cmd, err := tx.Exec(ctx, `
    UPDATE offboarding_tasks
    SET completed = TRUE
    WHERE org_id = $1 AND id = $2 AND completed = FALSE
  `, orgID, taskID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *Store) employeeJoiningDate(ctx context.Context, tx pgx.Tx, orgID, employeeID string) (*time.Time, error) {
	var joining *time.Time
	err := tx.QueryRow(ctx, `
    SELECT joining_date FROM employees
    WHERE org_id = $1 AND id = $2 AND deleted_at IS NULL
  `, orgID, employeeID).Scan(&joining)
	if err != nil {
		return nil, err
	}
	return joining, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
