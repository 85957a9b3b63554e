package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, full_name, department, role, employment_status
		FROM employees
		WHERE id = $1
	`

	var (
		emp    employee.Employee
		role   string
		status string
	)
	err := q.QueryRow(ctx, query, id).Scan(&emp.ID, &emp.FullName, &emp.Department, &role, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	emp.Role = employee.Role(role)
	emp.EmploymentStatus = employee.EmploymentStatus(status)

	return emp, nil
}

// GetByIDs implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByIDs(ctx context.Context, ids []string) (map[string]employee.Employee, error) {
	result := make(map[string]employee.Employee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, full_name, department, role, employment_status
		FROM employees
		WHERE id = ANY($1)
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			emp    employee.Employee
			role   string
			status string
		)
		if err := rows.Scan(&emp.ID, &emp.FullName, &emp.Department, &role, &status); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		emp.Role = employee.Role(role)
		emp.EmploymentStatus = employee.EmploymentStatus(status)
		result[emp.ID] = emp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return result, nil
}

// Upsert inserts or replaces one employee row.
func (e *employeeRepositoryImpl) Upsert(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (id, full_name, department, role, employment_status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
			department = EXCLUDED.department,
			role = EXCLUDED.role,
			employment_status = EXCLUDED.employment_status,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, emp.ID, emp.FullName, emp.Department, string(emp.Role), string(emp.EmploymentStatus)); err != nil {
		return fmt.Errorf("failed to upsert employee with id %s: %w", emp.ID, err)
	}
	return nil
}
