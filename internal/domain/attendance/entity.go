package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent    Status = "Present"
	StatusAbsent     Status = "Absent"
	StatusLate       Status = "Late"
	StatusHalfDay    Status = "Half Day"
	StatusOnLeave    Status = "On Leave"
	StatusPermission Status = "Permission"
)

// AllStatuses returns every stored attendance classification
func AllStatuses() []Status {
	return []Status{
		StatusPresent,
		StatusAbsent,
		StatusLate,
		StatusHalfDay,
		StatusOnLeave,
		StatusPermission,
	}
}

func (s Status) IsValid() bool {
	for _, v := range AllStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

type OTStatus string

const (
	OTApproved OTStatus = "Approved"
	OTRejected OTStatus = "Rejected"
	OTPending  OTStatus = "Pending"
)

func (s OTStatus) IsValid() bool {
	return s == OTApproved || s == OTRejected || s == OTPending
}

type Source string

const (
	SourceManual Source = "manual"
	SourceWeb    Source = "web"
	SourceMobile Source = "mobile"
)

func (s Source) IsValid() bool {
	return s == SourceManual || s == SourceWeb || s == SourceMobile
}

// Session is one clock-in/clock-out interval. A nil Out means the session is open.
type Session struct {
	In     time.Time
	Out    *time.Time
	Source Source
	Note   string
}

func (s Session) IsOpen() bool {
	return s.Out == nil
}

type OTDecision struct {
	ActionBy string
	ActionAt time.Time
}

// Record is the attendance of one employee on one civil date.
type Record struct {
	ID         string
	EmployeeID string
	Date       string // YYYY-MM-DD, IST

	// Insertion order, not necessarily sorted by In.
	Sessions []Session

	// Legacy single-shot fields, kept in step with Sessions.
	ClockIn  *time.Time
	ClockOut *time.Time

	Status     Status
	Reason     string
	OTStatus   *OTStatus
	OTDecision *OTDecision

	CreatedBy string
	EditedBy  *string
	EditedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName       *string
	EmployeeDepartment *string
}

// HasAnyClockIn reports whether the record carries any clock-in at all.
func (r Record) HasAnyClockIn() bool {
	return r.ClockIn != nil || len(r.Sessions) > 0
}
