package auth

const (
	RoleOwner    = "owner"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	PermEmployeesRead     = "employees.read"
	PermEmployeesWrite    = "employees.write"
	PermCompensationRead  = "compensation.read"
	PermCompensationWrite = "compensation.write"
	PermLeaveRead         = "leave.read"
	PermLeaveWrite        = "leave.write"
	PermLeaveApprove      = "leave.approve"
	PermOnboardingRead    = "onboarding.read"
	PermOnboardingWrite   = "onboarding.write"
	PermReportsRead       = "reports.read"
	PermReportsExport     = "reports.export"
	PermAuditRead         = "audit.read"
	PermOrgAdmin          = "org.admin"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermCompensationRead,
	PermCompensationWrite,
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveApprove,
	PermOnboardingRead,
	PermOnboardingWrite,
	PermReportsRead,
	PermReportsExport,
	PermAuditRead,
	PermOrgAdmin,
}

// RolePermissions is the mapping seeded into every new organization.
// Note: employees.read means org-wide directory visibility. Managers do not
// get it; their team visibility comes from the manager relation instead.
var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermLeaveRead,
		PermLeaveWrite,
		PermOnboardingRead,
		PermReportsRead,
	},
	RoleManager: {
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermOnboardingRead,
		PermReportsRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermCompensationRead,
		PermCompensationWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermOnboardingRead,
		PermOnboardingWrite,
		PermReportsRead,
		PermReportsExport,
		PermAuditRead,
	},
	RoleOwner: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermCompensationRead,
		PermCompensationWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermOnboardingRead,
		PermOnboardingWrite,
		PermReportsRead,
		PermReportsExport,
		PermAuditRead,
		PermOrgAdmin,
	},
}
