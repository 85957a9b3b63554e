package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// FindOrImplyContinuation reports the employee's record for the current civil day
	// and whether it has an open session, so callers choose clock-in or clock-out.
	FindOrImplyContinuation(ctx context.Context, employeeID string) (Continuation, error)

	// ClockIn opens a session, creating the day's record on the first punch
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut closes the employee's open session
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)

	// GetTodaySummary returns today's derived metrics for an employee
	GetTodaySummary(ctx context.Context, employeeID string) (AttendanceResponse, error)

	// GetDaySummary returns the derived metrics of an employee on a civil date
	GetDaySummary(ctx context.Context, employeeID string, date string) (AttendanceResponse, error)

	// ListMyAttendance lists the employee's own records
	ListMyAttendance(ctx context.Context, employeeID string, filter AttendanceFilter) (ListAttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// CreateAttendance records a manual entry (admin/manager)
	CreateAttendance(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)

	// UpdateAttendance corrects status and reason (admin/manager)
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)

	// UpdateOTStatus records an overtime decision
	UpdateOTStatus(ctx context.Context, req UpdateOTStatusRequest) (AttendanceResponse, error)

	// MarkBulkStatus writes session-less records such as leave for several dates
	MarkBulkStatus(ctx context.Context, req BulkStatusRequest) (BulkStatusResponse, error)

	DeleteAttendance(ctx context.Context, id string) error

	// RunAutoClose triggers the day-boundary close explicitly
	RunAutoClose(ctx context.Context) (AutoCloseResponse, error)
}
