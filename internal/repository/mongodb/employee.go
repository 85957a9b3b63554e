package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const employeeCollection = "employees"

type employeeDoc struct {
	ID               string  `bson:"_id"`
	FullName         string  `bson:"full_name"`
	Department       *string `bson:"department"`
	Role             string  `bson:"role"`
	EmploymentStatus string  `bson:"employment_status"`
}

func (d employeeDoc) toEmployee() employee.Employee {
	return employee.Employee{
		ID:               d.ID,
		FullName:         d.FullName,
		Department:       d.Department,
		Role:             employee.Role(d.Role),
		EmploymentStatus: employee.EmploymentStatus(d.EmploymentStatus),
	}
}

type employeeRepository struct {
	coll *mongo.Collection
}

func NewEmployeeRepository(db *database.MongoDB) employee.EmployeeRepository {
	return &employeeRepository{coll: db.Database.Collection(employeeCollection)}
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	var doc employeeDoc
	if err := e.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return doc.toEmployee(), nil
}

// GetByIDs implements employee.EmployeeRepository.
func (e *employeeRepository) GetByIDs(ctx context.Context, ids []string) (map[string]employee.Employee, error) {
	result := make(map[string]employee.Employee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := e.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get employees by ids: %w", err)
	}

	var docs []employeeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}
	for _, d := range docs {
		result[d.ID] = d.toEmployee()
	}
	return result, nil
}

// Upsert inserts or replaces one employee document.
func (e *employeeRepository) Upsert(ctx context.Context, emp employee.Employee) error {
	doc := employeeDoc{
		ID:               emp.ID,
		FullName:         emp.FullName,
		Department:       emp.Department,
		Role:             string(emp.Role),
		EmploymentStatus: string(emp.EmploymentStatus),
	}

	_, err := e.coll.ReplaceOne(ctx, bson.M{"_id": emp.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert employee with id %s: %w", emp.ID, err)
	}
	return nil
}
