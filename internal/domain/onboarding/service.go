package onboarding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"hrcore/internal/domain/audit"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid task status transition")
)

type Service struct {
	Store *Store
	Audit *audit.Service
	now   func() time.Time
}

func NewService(store *Store, auditSvc *audit.Service) *Service {
	return &Service{Store: store, Audit: auditSvc, now: time.Now}
}

func (s *Service) ListTemplates(ctx context.Context, orgID string) ([]Template, error) {
	return s.Store.ListTemplates(ctx, orgID)
}

func (s *Service) CreateTemplate(ctx context.Context, orgID, actorUserID, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrValidation
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.createTemplateTx(ctx, tx, orgID, name)
	if err != nil {
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "onboarding_template.create", "onboarding_template", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, orgID, actorUserID, templateID string) error {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deleted, err := s.Store.softDeleteTemplateTx(ctx, tx, orgID, templateID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "onboarding_template.delete", "onboarding_template", templateID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) ListItems(ctx context.Context, orgID, templateID string) ([]TemplateItem, error) {
	return s.Store.ListItems(ctx, orgID, templateID)
}

func (s *Service) AddItem(ctx context.Context, orgID, actorUserID string, item TemplateItem) (string, error) {
	if strings.TrimSpace(item.TaskTitle) == "" ||
		item.DefaultDueDays < 0 || item.DefaultDueDays > maxDefaultDueDays ||
		item.SortOrder < 0 || item.SortOrder > maxSortOrder {
		return "", ErrValidation
	}

	exists, err := s.Store.templateExists(ctx, orgID, item.TemplateID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrNotFound
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.createItemTx(ctx, tx, item)
	if err != nil {
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "onboarding_item.create", "onboarding_template_item", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) RemoveItem(ctx context.Context, orgID, actorUserID, itemID string) error {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	deleted, err := s.Store.softDeleteItemTx(ctx, tx, orgID, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "onboarding_item.delete", "onboarding_template_item", itemID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Instantiate creates one open task per template item for the employee. The
// base date is the employee's joining date when set, otherwise today; each
// task is due default_due_days after the base. Instantiating the same
// template twice creates a second batch of tasks.
func (s *Service) Instantiate(ctx context.Context, orgID, actorUserID, employeeID, templateID, assignedTo string) (int, error) {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	joining, err := s.Store.employeeJoiningDate(ctx, tx, orgID, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	base := s.now()
	if joining != nil {
		base = *joining
	}

	items, err := s.Store.itemsForUpdateTx(ctx, tx, orgID, templateID)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		due := dueDate(base, item.DefaultDueDays)
		task := Task{
			EmployeeID: employeeID,
			Title:      item.TaskTitle,
			DueDate:    &due,
			Status:     TaskOpen,
			AssignedTo: assignedTo,
		}
		if _, err := s.Store.createTaskTx(ctx, tx, orgID, task); err != nil {
			return 0, err
		}
	}

	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "onboarding.instantiate", "onboarding_template", templateID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *Service) ListTasks(ctx context.Context, orgID, employeeID, status string) ([]Task, error) {
	return s.Store.ListTasks(ctx, orgID, employeeID, status)
}

func (s *Service) TransitionTask(ctx context.Context, orgID, actorUserID, taskID, newStatus string) error {
	if newStatus != TaskOpen && newStatus != TaskInProgress && newStatus != TaskDone {
		return ErrValidation
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	task, err := s.Store.lockTaskTx(ctx, tx, orgID, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !validTransition(task.Status, newStatus) {
		return ErrInvalidTransition
	}

	if err := s.Store.setTaskStatusTx(ctx, tx, orgID, taskID, newStatus); err != nil {
		return err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "onboarding_task."+newStatus, "onboarding_task", taskID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) CreateOffboardingTask(ctx context.Context, orgID, actorUserID string, task OffboardingTask) (string, error) {
	if strings.TrimSpace(task.Title) == "" || task.EmployeeID == "" {
		return "", ErrValidation
	}

	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.createOffboardingTaskTx(ctx, tx, orgID, task)
	if err != nil {
		return "", err
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "offboarding_task.create", "offboarding_task", id); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) ListOffboardingTasks(ctx context.Context, orgID, employeeID string) ([]OffboardingTask, error) {
	return s.Store.ListOffboardingTasks(ctx, orgID, employeeID)
}

func (s *Service) CompleteOffboardingTask(ctx context.Context, orgID, actorUserID, taskID string) error {
	tx, err := s.Store.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	completed, err := s.Store.completeOffboardingTaskTx(ctx, tx, orgID, taskID)
	if err != nil {
		return err
	}
	if !completed {
		return ErrNotFound
	}
	if err := s.Audit.Record(ctx, tx, orgID, actorUserID, "offboarding_task.complete", "offboarding_task", taskID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
