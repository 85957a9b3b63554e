package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/civiltime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	notifier   notification.Service
	autoCloser *AutoCloser
	clock      clock.Clock
	policy     attendance.Policy
	logger     *slog.Logger
}

// timePtrToString safely converts a *time.Time to an RFC3339 string in IST.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.In(civiltime.IST).Format(time.RFC3339)
	return &format
}

// FindOrImplyContinuation implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) FindOrImplyContinuation(ctx context.Context, employeeID string) (attendance.Continuation, error) {
	return a.continuation(ctx, employeeID, a.clock.Now())
}

func (a *AttendanceServiceImpl) continuation(ctx context.Context, employeeID string, now time.Time) (attendance.Continuation, error) {
	date := civiltime.CivilDate(now)

	rec, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.Continuation{}, fmt.Errorf("failed to get attendance for %s: %w", date, err)
	}

	cont := attendance.Continuation{Date: date, Record: rec}
	if rec != nil {
		cont.HasOpenSession = attendance.HasOpenSession(rec)
	}
	return cont, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	now := a.clock.Now()

	emp, err := a.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	actor := req.ActorID
	if actor == "" {
		actor = req.EmployeeID
	}

	cont, err := a.continuation(ctx, req.EmployeeID, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var rec attendance.Record
	switch {
	case cont.Record != nil && cont.HasOpenSession:
		return attendance.AttendanceResponse{}, attendance.ErrSessionConflict

	case cont.Record != nil:
		rec = *cont.Record
		// A record made by bulk status or a manual entry has no clock-in yet, so
		// this punch is still the first of the day.
		if rec.ClockIn == nil && a.autoCloser != nil {
			a.autoCloser.RunBeforeFirstClockIn(ctx, now)
		}
		if err := attendance.StartSession(&rec, now, req.Source, req.Note); err != nil {
			return attendance.AttendanceResponse{}, err
		}
		session := rec.Sessions[len(rec.Sessions)-1]
		if err := a.AttendanceRepository.AppendSession(ctx, rec.ID, session); err != nil {
			if errors.Is(err, attendance.ErrSessionConflict) {
				return attendance.AttendanceResponse{}, attendance.ErrSessionConflict
			}
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to append session: %w", err)
		}

	default:
		// First punch of the day: yesterday must be closed before today's record exists.
		if a.autoCloser != nil {
			a.autoCloser.RunBeforeFirstClockIn(ctx, now)
		}

		rec = attendance.Record{
			EmployeeID: req.EmployeeID,
			Date:       cont.Date,
			Status:     attendance.StatusPresent,
			CreatedBy:  actor,
			CreatedAt:  now,
		}
		if err := attendance.StartSession(&rec, now, req.Source, req.Note); err != nil {
			return attendance.AttendanceResponse{}, err
		}

		rec, err = a.AttendanceRepository.Create(ctx, rec)
		if err != nil {
			if errors.Is(err, attendance.ErrDuplicateRecord) {
				return attendance.AttendanceResponse{}, attendance.ErrDuplicateRecord
			}
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
		}
	}

	a.logger.Info("clock-in recorded",
		"employee_id", rec.EmployeeID,
		"record_id", rec.ID,
		"date", rec.Date,
		"sessions", len(rec.Sessions),
	)

	rec.EmployeeName = &emp.FullName
	rec.EmployeeDepartment = emp.Department
	a.notify(ctx, notification.CreateNotificationRequest{
		RecipientID: rec.EmployeeID,
		SenderID:    &actor,
		Type:        notification.TypeAttendanceClockIn,
		Title:       "Clocked in",
		Message:     fmt.Sprintf("%s clocked in at %s", emp.FullName, civiltime.FormatClockTime12h(&now)),
		Data: map[string]interface{}{
			"attendance_id": rec.ID,
			"date":          rec.Date,
			"source":        string(rec.Sessions[len(rec.Sessions)-1].Source),
		},
	})

	return a.toResponse(rec, now), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	now := a.clock.Now()

	actor := req.ActorID
	if actor == "" {
		actor = req.EmployeeID
	}

	// The open session may belong to an earlier date when it ran past midnight.
	rec, err := a.AttendanceRepository.GetOpenRecord(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNoOpenSession
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get open attendance: %w", err)
	}

	if err := attendance.CloseSession(&rec, now); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := a.AttendanceRepository.CloseSession(ctx, rec.ID, now, actor); err != nil {
		if errors.Is(err, attendance.ErrNoOpenSession) {
			return attendance.AttendanceResponse{}, attendance.ErrNoOpenSession
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to close session: %w", err)
	}
	rec.EditedBy = &actor
	rec.EditedAt = &now

	worked := attendance.WorkedMinutes(rec.Sessions, rec.ClockIn, rec.ClockOut, rec.Date, now)
	a.logger.Info("clock-out recorded",
		"employee_id", rec.EmployeeID,
		"record_id", rec.ID,
		"date", rec.Date,
		"worked_minutes", worked,
	)

	a.notify(ctx, notification.CreateNotificationRequest{
		RecipientID: rec.EmployeeID,
		SenderID:    &actor,
		Type:        notification.TypeAttendanceClockOut,
		Title:       "Clocked out",
		Message:     fmt.Sprintf("Clocked out at %s after %s", civiltime.FormatClockTime12h(&now), civiltime.HumanizeDuration(worked)),
		Data: map[string]interface{}{
			"attendance_id":  rec.ID,
			"date":           rec.Date,
			"worked_minutes": worked,
		},
	})

	a.decorate(ctx, []*attendance.Record{&rec})
	return a.toResponse(rec, now), nil
}

// GetTodaySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetTodaySummary(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	return a.GetDaySummary(ctx, employeeID, civiltime.CivilDate(a.clock.Now()))
}

// GetDaySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetDaySummary(ctx context.Context, employeeID string, date string) (attendance.AttendanceResponse, error) {
	now := a.clock.Now()

	if _, valid := validator.IsValidDate(date); !valid {
		return attendance.AttendanceResponse{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}

	rec, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance for %s: %w", date, err)
	}
	if rec == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}

	a.decorate(ctx, []*attendance.Record{rec})
	return a.toResponse(*rec, now), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	now := a.clock.Now()

	rec, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	a.decorate(ctx, []*attendance.Record{&rec})
	return a.toResponse(rec, now), nil
}

// ListMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListMyAttendance(ctx context.Context, employeeID string, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	filter.EmployeeIDs = []string{employeeID}
	return a.ListAttendance(ctx, filter)
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	now := a.clock.Now()

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	ptrs := make([]*attendance.Record, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}
	a.decorate(ctx, ptrs)

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, a.toResponse(rec, now))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// CreateAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CreateAttendance(ctx context.Context, req attendance.CreateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	now := a.clock.Now()

	if _, err := a.lookupEmployee(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec := attendance.Record{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Status:     attendance.Status(req.Status),
		Reason:     req.Reason,
		CreatedBy:  req.ActorID,
		CreatedAt:  now,
	}

	if req.ClockInAt != nil {
		if civiltime.CivilDate(*req.ClockInAt) != req.Date {
			return attendance.AttendanceResponse{}, attendance.ErrClockInNotOnDate
		}
		if req.ClockOutAt != nil {
			if err := attendance.ValidateOrdering(*req.ClockInAt, *req.ClockOutAt); err != nil {
				return attendance.AttendanceResponse{}, err
			}
		}

		if err := attendance.StartSession(&rec, req.ClockInAt.UTC(), attendance.SourceManual, req.Reason); err != nil {
			return attendance.AttendanceResponse{}, err
		}
		if req.ClockOutAt != nil {
			if err := attendance.CloseSession(&rec, req.ClockOutAt.UTC()); err != nil {
				return attendance.AttendanceResponse{}, err
			}
		}
	}

	created, err := a.AttendanceRepository.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateRecord) {
			return attendance.AttendanceResponse{}, attendance.ErrDuplicateRecord
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	a.decorate(ctx, []*attendance.Record{&created})
	return a.toResponse(created, now), nil
}

// UpdateAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	now := a.clock.Now()

	existing, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	status := existing.Status
	if req.Status != nil {
		status = attendance.Status(*req.Status)
	}
	reason := existing.Reason
	if req.Reason != nil {
		reason = *req.Reason
	}

	if err := a.AttendanceRepository.UpdateDetails(ctx, req.ID, status, reason, req.ActorID, now); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	existing.Status = status
	existing.Reason = reason
	existing.EditedBy = &req.ActorID
	existing.EditedAt = &now

	a.decorate(ctx, []*attendance.Record{&existing})
	return a.toResponse(existing, now), nil
}

// UpdateOTStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateOTStatus(ctx context.Context, req attendance.UpdateOTStatusRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	now := a.clock.Now()

	existing, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	otStatus := attendance.OTStatus(req.OTStatus)
	decision := attendance.OTDecision{ActionBy: req.ActorID, ActionAt: now}

	if err := a.AttendanceRepository.UpdateOTStatus(ctx, req.ID, otStatus, decision); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update OT status: %w", err)
	}

	existing.OTStatus = &otStatus
	existing.OTDecision = &decision

	a.notify(ctx, notification.CreateNotificationRequest{
		RecipientID: existing.EmployeeID,
		SenderID:    &req.ActorID,
		Type:        notification.TypeAttendanceOTDecision,
		Title:       "Overtime " + string(otStatus),
		Message:     fmt.Sprintf("Overtime on %s marked %s", existing.Date, otStatus),
		Data: map[string]interface{}{
			"attendance_id": existing.ID,
			"ot_status":     string(otStatus),
		},
	})

	a.decorate(ctx, []*attendance.Record{&existing})
	return a.toResponse(existing, now), nil
}

// MarkBulkStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MarkBulkStatus(ctx context.Context, req attendance.BulkStatusRequest) (attendance.BulkStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkStatusResponse{}, err
	}
	now := a.clock.Now()

	if _, err := a.lookupEmployee(ctx, req.EmployeeID); err != nil {
		return attendance.BulkStatusResponse{}, err
	}

	dates := make([]string, 0, len(req.Dates))
	seen := make(map[string]struct{}, len(req.Dates))
	for _, d := range req.Dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Strings(dates)

	resp := attendance.BulkStatusResponse{
		EmployeeID: req.EmployeeID,
		Status:     req.Status,
		Created:    []string{},
		Skipped:    []string{},
	}

	for _, date := range dates {
		_, err := a.AttendanceRepository.Create(ctx, attendance.Record{
			EmployeeID: req.EmployeeID,
			Date:       date,
			Status:     attendance.Status(req.Status),
			Reason:     req.Reason,
			CreatedBy:  req.ActorID,
			CreatedAt:  now,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrDuplicateRecord) {
				resp.Skipped = append(resp.Skipped, date)
				continue
			}
			return resp, fmt.Errorf("failed to mark %s as %s: %w", date, req.Status, err)
		}
		resp.Created = append(resp.Created, date)
	}

	if len(resp.Created) > 0 {
		a.notify(ctx, notification.CreateNotificationRequest{
			RecipientID: req.EmployeeID,
			SenderID:    &req.ActorID,
			Type:        notification.TypeAttendanceBulkMarked,
			Title:       "Attendance updated",
			Message:     fmt.Sprintf("%d day(s) marked %s", len(resp.Created), req.Status),
			Data: map[string]interface{}{
				"dates":  resp.Created,
				"status": req.Status,
			},
		})
	}

	return resp, nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	if err := a.AttendanceRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	return nil
}

// RunAutoClose implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RunAutoClose(ctx context.Context) (attendance.AutoCloseResponse, error) {
	if a.autoCloser == nil {
		return attendance.AutoCloseResponse{}, fmt.Errorf("%w: auto-closer is not configured", attendance.ErrAutoCloseFailure)
	}

	result, err := a.autoCloser.Run(ctx)
	if err != nil {
		return attendance.AutoCloseResponse{}, err
	}

	return attendance.AutoCloseResponse{
		Ran:    result.Ran,
		Closed: result.Closed,
		Date:   result.Date,
		Cutoff: result.Cutoff.In(civiltime.IST).Format(time.RFC3339),
	}, nil
}

func (a *AttendanceServiceImpl) lookupEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (a *AttendanceServiceImpl) activeEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	emp, err := a.lookupEmployee(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.IsActive() {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// decorate fills display names from the employee directory. Lookup failures
// leave the records undecorated.
func (a *AttendanceServiceImpl) decorate(ctx context.Context, records []*attendance.Record) {
	if len(records) == 0 {
		return
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.EmployeeID)
	}

	employees, err := a.EmployeeRepository.GetByIDs(ctx, ids)
	if err != nil {
		a.logger.Warn("failed to decorate attendance with employee details", "error", err)
		return
	}

	for _, rec := range records {
		if emp, ok := employees[rec.EmployeeID]; ok {
			name := emp.FullName
			rec.EmployeeName = &name
			rec.EmployeeDepartment = emp.Department
		}
	}
}

func (a *AttendanceServiceImpl) notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.QueueNotification(ctx, req); err != nil {
		a.logger.Warn("failed to queue notification", "type", string(req.Type), "error", err)
	}
}

// minutesToHours converts whole minutes to hours rounded to two places.
func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Round(2)
}

// toResponse evaluates the metrics of rec at now and shapes them for the API.
func (a *AttendanceServiceImpl) toResponse(rec attendance.Record, now time.Time) attendance.AttendanceResponse {
	sum := a.policy.Summarize(&rec, now)

	var employeeName string
	if rec.EmployeeName != nil {
		employeeName = *rec.EmployeeName
	}

	sessions := make([]attendance.SessionResponse, 0, len(rec.Sessions))
	for _, s := range rec.Sessions {
		in := s.In
		sessions = append(sessions, attendance.SessionResponse{
			In:     *timePtrToString(&in),
			Out:    timePtrToString(s.Out),
			Source: string(s.Source),
			Note:   s.Note,
		})
	}

	var otStatus *string
	if rec.OTStatus != nil {
		v := string(*rec.OTStatus)
		otStatus = &v
	}

	var otDecision *attendance.OTDecisionResponse
	if rec.OTDecision != nil {
		otDecision = &attendance.OTDecisionResponse{
			ActionBy: rec.OTDecision.ActionBy,
			ActionAt: rec.OTDecision.ActionAt.In(civiltime.IST).Format(time.RFC3339),
		}
	}

	return attendance.AttendanceResponse{
		ID:              rec.ID,
		EmployeeID:      rec.EmployeeID,
		EmployeeName:    employeeName,
		Department:      rec.EmployeeDepartment,
		Date:            rec.Date,
		Status:          string(rec.Status),
		Presence:        sum.Presence,
		Reason:          rec.Reason,
		ClockInTime:     timePtrToString(sum.ClockIn),
		ClockOutTime:    timePtrToString(sum.ClockOut),
		ClockInDisplay:  civiltime.FormatClockTime12h(sum.ClockIn),
		ClockOutDisplay: civiltime.FormatClockTime12h(sum.ClockOut),
		HasOpenSession:  sum.HasOpenSession,
		Sessions:        sessions,
		WorkedMinutes:   sum.WorkedMinutes,
		WorkedDisplay:   civiltime.HumanizeDuration(sum.WorkedMinutes),
		WorkedHours:     minutesToHours(sum.WorkedMinutes),
		IsLate:          sum.LateMinutes > 0,
		LateMinutes:     sum.LateMinutes,
		OvertimeMinutes: sum.OvertimeMinutes,
		OvertimeDisplay: civiltime.HumanizeDuration(sum.OvertimeMinutes),
		OvertimeHours:   minutesToHours(sum.OvertimeMinutes),
		OTStatus:        otStatus,
		OTDecision:      otDecision,
		CreatedBy:       rec.CreatedBy,
		EditedBy:        rec.EditedBy,
		EditedAt:        timePtrToString(rec.EditedAt),
		CreatedAt:       rec.CreatedAt.In(civiltime.IST).Format(time.RFC3339),
		UpdatedAt:       rec.UpdatedAt.In(civiltime.IST).Format(time.RFC3339),
	}
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	notifier notification.Service,
	autoCloser *AutoCloser,
	clk clock.Clock,
	policy attendance.Policy,
	logger *slog.Logger,
) attendance.AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		notifier:             notifier,
		autoCloser:           autoCloser,
		clock:                clk,
		policy:               policy,
		logger:               logger.With("component", "attendance"),
	}
}
