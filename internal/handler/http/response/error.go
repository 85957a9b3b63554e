package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, employee.ErrManagerAccessRequired):
		Forbidden(w, "Manager or admin access required")
	case errors.Is(err, employee.ErrAdminAccessRequired):
		Forbidden(w, "Admin access required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is not active")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, attendance.ErrSessionConflict):
		Conflict(w, "A session is already open, clock out first")
	case errors.Is(err, attendance.ErrNoOpenSession):
		Conflict(w, "No open session to clock out from")
	case errors.Is(err, attendance.ErrDuplicateRecord):
		Conflict(w, "Attendance already exists for this date")
	case errors.Is(err, attendance.ErrInvalidOrdering):
		UnprocessableEntity(w, "Clock-out must not be before clock-in")
	case errors.Is(err, attendance.ErrClockInNotOnDate):
		UnprocessableEntity(w, "Clock-in must fall on the attendance date")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
