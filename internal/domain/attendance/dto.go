package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// CLOCK DTOs
// ========================================

type ClockInRequest struct {
	EmployeeID string `json:"-"`
	ActorID    string `json:"-"`
	Source     Source `json:"source"`
	Note       string `json:"note"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Source == "" {
		r.Source = SourceManual
	} else if !r.Source.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "source",
			Message: "source must be one of: manual, web, mobile",
		})
	}

	if len(r.Note) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ClockOutRequest struct {
	EmployeeID string `json:"-"`
	ActorID    string `json:"-"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Continuation tells a caller which branch a punch takes today.
type Continuation struct {
	Date           string
	Record         *Record
	HasOpenSession bool
}

// ========================================
// RESPONSE DTOs
// ========================================

type SessionResponse struct {
	In     string  `json:"in"`
	Out    *string `json:"out,omitempty"`
	Source string  `json:"source"`
	Note   string  `json:"note,omitempty"`
}

type OTDecisionResponse struct {
	ActionBy string `json:"action_by"`
	ActionAt string `json:"action_at"`
}

type AttendanceResponse struct {
	ID              string              `json:"id"`
	EmployeeID      string              `json:"employee_id"`
	EmployeeName    string              `json:"employee_name,omitempty"`
	Department      *string             `json:"department,omitempty"`
	Date            string              `json:"date"`
	Status          string              `json:"status"`
	Presence        string              `json:"presence"`
	Reason          string              `json:"reason,omitempty"`
	ClockInTime     *string             `json:"clock_in_time,omitempty"`
	ClockOutTime    *string             `json:"clock_out_time,omitempty"`
	ClockInDisplay  string              `json:"clock_in_display"`
	ClockOutDisplay string              `json:"clock_out_display"`
	HasOpenSession  bool                `json:"has_open_session"`
	Sessions        []SessionResponse   `json:"sessions"`
	WorkedMinutes   int                 `json:"worked_minutes"`
	WorkedDisplay   string              `json:"worked_display"`
	WorkedHours     decimal.Decimal     `json:"worked_hours"`
	IsLate          bool                `json:"is_late"`
	LateMinutes     int                 `json:"late_minutes"`
	OvertimeMinutes int                 `json:"overtime_minutes"`
	OvertimeDisplay string              `json:"overtime_display"`
	OvertimeHours   decimal.Decimal     `json:"overtime_hours"`
	OTStatus        *string             `json:"ot_status"`
	OTDecision      *OTDecisionResponse `json:"ot_decision,omitempty"`
	CreatedBy       string              `json:"created_by,omitempty"`
	EditedBy        *string             `json:"edited_by,omitempty"`
	EditedAt        *string             `json:"edited_at,omitempty"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type AutoCloseResponse struct {
	Ran    bool   `json:"ran"`
	Closed int    `json:"closed"`
	Date   string `json:"date,omitempty"`
	Cutoff string `json:"cutoff,omitempty"`
}

// ========================================
// FILTER DTOs
// ========================================

type AttendanceFilter struct {
	// Search & Filter
	EmployeeIDs []string `json:"employee_ids,omitempty"`
	Date        *string  `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate   *string  `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     *string  `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status      *string  `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, clock_in_time, clock_out_time, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Present, Absent, Late, Half Day, On Leave, Permission",
		})
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "clock_in_time", "clock_out_time", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, clock_in_time, clock_out_time, status",
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// ADMIN DTOs
// ========================================

// CreateAttendanceRequest is a manual entry made on behalf of an employee.
type CreateAttendanceRequest struct {
	ActorID    string  `json:"-"`
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`                // YYYY-MM-DD
	ClockIn    *string `json:"clock_in,omitempty"`  // RFC3339
	ClockOut   *string `json:"clock_out,omitempty"` // RFC3339
	Status     string  `json:"status"`
	Reason     string  `json:"reason"`

	// Parsed by Validate
	ClockInAt  *time.Time `json:"-"`
	ClockOutAt *time.Time `json:"-"`
}

func (r *CreateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if !Status(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Present, Absent, Late, Half Day, On Leave, Permission",
		})
	}

	if r.ClockIn != nil {
		if t, valid := validator.IsValidDateTime(*r.ClockIn); valid {
			r.ClockInAt = &t
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_in",
				Message: "clock_in must be an ISO8601 timestamp",
			})
		}
	}

	if r.ClockOut != nil {
		if r.ClockIn == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_out",
				Message: "clock_out requires clock_in",
			})
		} else if t, valid := validator.IsValidDateTime(*r.ClockOut); valid {
			r.ClockOutAt = &t
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "clock_out",
				Message: "clock_out must be an ISO8601 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateAttendanceRequest lets admins and managers correct a record's classification.
type UpdateAttendanceRequest struct {
	ID      string  `json:"-"`
	ActorID string  `json:"-"`
	Status  *string `json:"status,omitempty"`
	Reason  *string `json:"reason,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status == nil && r.Reason == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status or reason is required",
		})
	}

	if r.Status != nil && !Status(*r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Present, Absent, Late, Half Day, On Leave, Permission",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateOTStatusRequest struct {
	ID       string `json:"-"`
	ActorID  string `json:"-"`
	OTStatus string `json:"ot_status"`
}

func (r *UpdateOTStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !OTStatus(r.OTStatus).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "ot_status",
			Message: "ot_status must be one of: Approved, Rejected, Pending",
		})
	}

	if validator.IsEmpty(r.ActorID) {
		errs = append(errs, validator.ValidationError{
			Field:   "action_by",
			Message: "acting user is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// BulkStatusRequest marks one employee with a session-less status on several dates.
type BulkStatusRequest struct {
	EmployeeID string   `json:"-"`
	ActorID    string   `json:"-"`
	Dates      []string `json:"dates"`
	Status     string   `json:"status"`
	Reason     string   `json:"reason"`
}

func (r *BulkStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(r.Dates) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "dates",
			Message: "at least one date is required",
		})
	} else if len(r.Dates) > 31 {
		errs = append(errs, validator.ValidationError{
			Field:   "dates",
			Message: "at most 31 dates can be marked at once",
		})
	}
	for _, d := range r.Dates {
		if _, valid := validator.IsValidDate(d); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "dates",
				Message: "dates must be in YYYY-MM-DD format",
			})
			break
		}
	}

	bulkStatuses := []string{string(StatusAbsent), string(StatusOnLeave), string(StatusPermission), string(StatusHalfDay)}
	if !validator.IsInSlice(r.Status, bulkStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Absent, On Leave, Permission, Half Day",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BulkStatusResponse struct {
	EmployeeID string   `json:"employee_id"`
	Status     string   `json:"status"`
	Created    []string `json:"created"`
	Skipped    []string `json:"skipped"`
}
