package attendance

import "errors"

// Attendance domain errors
var (
	// Session ledger errors
	ErrSessionConflict  = errors.New("a session is already open for this attendance record")
	ErrNoOpenSession    = errors.New("no open session to clock out of")
	ErrInvalidOrdering  = errors.New("clock-out time precedes clock-in time")
	ErrClockInNotOnDate = errors.New("clock-in does not fall on the attendance date")

	// Storage errors
	ErrDuplicateRecord    = errors.New("attendance for this employee on this date already exists")
	ErrAttendanceNotFound = errors.New("attendance record not found")

	// Auto-close errors never reach the clock-in caller; they are logged and dropped.
	ErrAutoCloseFailure = errors.New("auto-close of previous day failed")
)
