package leave

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Type describes a leave category. AccrualRate is days earned per month; a
// zero rate means the type is seeded with the fixed AnnualQuota instead.
type Type struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AnnualQuota float64   `json:"annualQuota"`
	AccrualRate float64   `json:"accrualRate"`
	IsPaid      bool      `json:"isPaid"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Holiday struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

type Balance struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	LeaveTypeID string    `json:"leaveTypeId"`
	LeaveType   string    `json:"leaveType"`
	Balance     float64   `json:"balance"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Request struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	LeaveTypeID string    `json:"leaveTypeId"`
	LeaveType   string    `json:"leaveType"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Days        int       `json:"days"`
	Reason      string    `json:"reason,omitempty"`
	Status      string    `json:"status"`
	ApprovedBy  string    `json:"approvedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
