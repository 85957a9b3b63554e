package employee

import "context"

// EmployeeRepository is the read-only employee directory.
type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when the employee does not exist.
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetByIDs returns the employees found among ids keyed by ID. Missing IDs are omitted.
	GetByIDs(ctx context.Context, ids []string) (map[string]Employee, error)
}
