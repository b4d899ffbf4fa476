package directory

import "time"

type Employee struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	EmployeeCode     string     `json:"employeeCode"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	DOB              *time.Time `json:"dob,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	MaritalStatus    string     `json:"maritalStatus,omitempty"`
	DepartmentID     string     `json:"departmentId"`
	DesignationID    string     `json:"designationId"`
	ManagerID        string     `json:"managerId"`
	EmploymentType   string     `json:"employmentType"`
	JoiningDate      *time.Time `json:"joiningDate,omitempty"`
	ConfirmationDate *time.Time `json:"confirmationDate,omitempty"`
	EmploymentStatus string     `json:"employmentStatus"`
	WorkLocation     string     `json:"workLocation,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty"`
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Designation struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"departmentId"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Compensation struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	BaseSalary  float64   `json:"baseSalary"`
	Bonus       float64   `json:"bonus"`
	BankAccount string    `json:"bankAccount,omitempty"`
	IFSCCode    string    `json:"ifscCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Search struct {
	Query  string
	Status string
}
