package employee

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Employee is the slice of the employee directory the attendance engine reads.
type Employee struct {
	ID               string
	FullName         string
	Department       *string
	Role             Role
	EmploymentStatus EmploymentStatus
}

func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

func (r Role) IsValid() bool {
	return r == RoleEmployee || r == RoleManager || r == RoleAdmin
}

// CanManageAttendance reports whether the role may read and edit other employees' records.
func (r Role) CanManageAttendance() bool {
	return r == RoleManager || r == RoleAdmin
}
