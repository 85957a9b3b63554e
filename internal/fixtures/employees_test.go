package fixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSeeder struct {
	byID   map[string]employee.Employee
	failOn string
}

func (m *memSeeder) Upsert(ctx context.Context, emp employee.Employee) error {
	if emp.ID == m.failOn {
		return errors.New("write failed")
	}
	m.byID[emp.ID] = emp
	return nil
}

func TestDefaultEmployees(t *testing.T) {
	seen := map[string]bool{}
	var admins, managers int
	for _, emp := range DefaultEmployees() {
		assert.False(t, seen[emp.ID], "duplicate id %s", emp.ID)
		seen[emp.ID] = true
		assert.True(t, emp.Role.IsValid())
		switch emp.Role {
		case employee.RoleAdmin:
			admins++
		case employee.RoleManager:
			managers++
		}
	}
	assert.Equal(t, 1, admins)
	assert.Equal(t, 1, managers)
}

func TestSeedEmployees(t *testing.T) {
	seeder := &memSeeder{byID: map[string]employee.Employee{}}

	n, err := SeedEmployees(context.Background(), seeder)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultEmployees()), n)
	assert.False(t, seeder.byID["EMP-0006"].IsActive())

	// Seeding twice is harmless.
	_, err = SeedEmployees(context.Background(), seeder)
	require.NoError(t, err)
	assert.Len(t, seeder.byID, n)

	failing := &memSeeder{byID: map[string]employee.Employee{}, failOn: "EMP-0003"}
	_, err = SeedEmployees(context.Background(), failing)
	assert.ErrorContains(t, err, "EMP-0003")
}
