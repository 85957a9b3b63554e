package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeInactive = errors.New("employee is not active")

	ErrManagerAccessRequired = errors.New("manager or admin access required")
	ErrAdminAccessRequired   = errors.New("admin access required")
)
