package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records.
// Session mutations are conditional atomic updates: the open-session predicate is
// checked by the store at write time, never by a separate read.
type AttendanceRepository interface {
	// Create inserts a record together with its sessions.
	// Returns ErrDuplicateRecord when (employee, date) already exists.
	Create(ctx context.Context, record Record) (Record, error)

	GetByID(ctx context.Context, id string) (Record, error)

	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*Record, error)

	// GetOpenRecord returns the latest record of the employee holding an open session.
	GetOpenRecord(ctx context.Context, employeeID string) (Record, error)

	// AppendSession adds an open session only if the record has none open.
	// Returns ErrSessionConflict otherwise.
	AppendSession(ctx context.Context, recordID string, session Session) error

	// CloseSession sets out on the open session whose in is not after out.
	// Returns ErrNoOpenSession when nothing matches.
	CloseSession(ctx context.Context, recordID string, out time.Time, editedBy string) error

	// CountClockInsBetween counts records whose legacy clock-in lies in [start, end).
	CountClockInsBetween(ctx context.Context, start, end time.Time) (int64, error)

	// CloseOpenRecordsForDate force-closes every still-open record of date at cutoff
	// in a single storage-side update and returns the affected employee IDs.
	CloseOpenRecordsForDate(ctx context.Context, date string, cutoff time.Time, editedBy string, editedAt time.Time) ([]string, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	// UpdateDetails writes status and reason.
	UpdateDetails(ctx context.Context, id string, status Status, reason string, editedBy string, editedAt time.Time) error

	UpdateOTStatus(ctx context.Context, id string, otStatus OTStatus, decision OTDecision) error

	Delete(ctx context.Context, id string) error
}
