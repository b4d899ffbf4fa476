package onboarding

import "time"

const (
	TaskOpen       = "open"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

const (
	maxDefaultDueDays = 365
	maxSortOrder      = 10000
)

type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type TemplateItem struct {
	ID             string `json:"id"`
	TemplateID     string `json:"templateId"`
	TaskTitle      string `json:"taskTitle"`
	DefaultDueDays int    `json:"defaultDueDays"`
	SortOrder      int    `json:"sortOrder"`
}

type Task struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Title      string     `json:"title"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Status     string     `json:"status"`
	AssignedTo string     `json:"assignedTo,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type OffboardingTask struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Title      string     `json:"title"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Completed  bool       `json:"completed"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// validTransition encodes the task lifecycle: open and in_progress move freely
// between each other and forward to done; done is terminal.
func validTransition(from, to string) bool {
	switch from {
	case TaskOpen:
		return to == TaskInProgress || to == TaskDone
	case TaskInProgress:
		return to == TaskOpen || to == TaskDone
	default:
		return false
	}
}

func dueDate(base time.Time, defaultDueDays int) time.Time {
	return base.AddDate(0, 0, defaultDueDays)
}
