package fixtures

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

func strPtr(s string) *string { return &s }

// EmployeeSeeder is implemented by the employee stores.
type EmployeeSeeder interface {
	Upsert(ctx context.Context, emp employee.Employee) error
}

// DefaultEmployees is the directory used for local development and demos.
func DefaultEmployees() []employee.Employee {
	return []employee.Employee{
		{ID: "EMP-0001", FullName: "Priya Menon", Department: strPtr("People Operations"), Role: employee.RoleAdmin, EmploymentStatus: employee.EmploymentStatusActive},
		{ID: "EMP-0002", FullName: "Arjun Sharma", Department: strPtr("Engineering"), Role: employee.RoleManager, EmploymentStatus: employee.EmploymentStatusActive},
		{ID: "EMP-0003", FullName: "Kavya Iyer", Department: strPtr("Engineering"), Role: employee.RoleEmployee, EmploymentStatus: employee.EmploymentStatusActive},
		{ID: "EMP-0004", FullName: "Rohan Gupta", Department: strPtr("Engineering"), Role: employee.RoleEmployee, EmploymentStatus: employee.EmploymentStatusActive},
		{ID: "EMP-0005", FullName: "Meera Pillai", Department: strPtr("Finance"), Role: employee.RoleEmployee, EmploymentStatus: employee.EmploymentStatusActive},
		{ID: "EMP-0006", FullName: "Sandeep Rao", Department: nil, Role: employee.RoleEmployee, EmploymentStatus: employee.EmploymentStatusResigned},
	}
}

// SeedEmployees writes DefaultEmployees through seeder and returns how many were written.
func SeedEmployees(ctx context.Context, seeder EmployeeSeeder) (int, error) {
	employees := DefaultEmployees()
	for _, emp := range employees {
		if err := seeder.Upsert(ctx, emp); err != nil {
			return 0, fmt.Errorf("failed to seed employee %s: %w", emp.ID, err)
		}
	}
	return len(employees), nil
}
