package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/civiltime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
)

// AutoCloser force-closes the previous civil day's dangling sessions the first
// time anyone clocks in on a new day.
type AutoCloser struct {
	repo     attendance.AttendanceRepository
	notifier notification.Service
	clock    clock.Clock
	policy   attendance.Policy
	logger   *slog.Logger
}

func NewAutoCloser(
	repo attendance.AttendanceRepository,
	notifier notification.Service,
	clk clock.Clock,
	policy attendance.Policy,
	logger *slog.Logger,
) *AutoCloser {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoCloser{
		repo:     repo,
		notifier: notifier,
		clock:    clk,
		policy:   policy,
		logger:   logger.With("component", "auto_close"),
	}
}

// Run triggers the close at the current instant.
func (a *AutoCloser) Run(ctx context.Context) (attendance.AutoCloseResult, error) {
	return a.RunAt(ctx, a.clock.Now())
}

// RunAt triggers the close as if the first punch of the day happened at trigger.
// Every error wraps attendance.ErrAutoCloseFailure.
func (a *AutoCloser) RunAt(ctx context.Context, trigger time.Time) (attendance.AutoCloseResult, error) {
	plan, err := attendance.PlanAutoClose(trigger, a.policy)
	if err != nil {
		return attendance.AutoCloseResult{}, fmt.Errorf("%w: %w", attendance.ErrAutoCloseFailure, err)
	}

	result := attendance.AutoCloseResult{
		Date:   plan.Yesterday,
		Cutoff: plan.Cutoff,
	}

	count, err := a.repo.CountClockInsBetween(ctx, plan.TodayStart, plan.TodayEnd)
	if err != nil {
		return result, fmt.Errorf("%w: failed to count today's clock-ins: %w", attendance.ErrAutoCloseFailure, err)
	}
	if count > 0 {
		return result, nil
	}

	employeeIDs, err := a.repo.CloseOpenRecordsForDate(ctx, plan.Yesterday, plan.Cutoff, a.policy.SystemActor, trigger)
	if err != nil {
		return result, fmt.Errorf("%w: failed to close open records of %s: %w", attendance.ErrAutoCloseFailure, plan.Yesterday, err)
	}

	result.Ran = true
	result.Closed = len(employeeIDs)
	result.EmployeeIDs = employeeIDs

	a.logger.Info("auto-close completed",
		"date", plan.Yesterday,
		"cutoff", plan.Cutoff.Format(time.RFC3339),
		"closed", result.Closed,
	)

	a.notifyClosed(ctx, result)

	return result, nil
}

// RunBeforeFirstClockIn is the non-blocking variant used on the clock-in path:
// failures are logged and the zero result is returned.
func (a *AutoCloser) RunBeforeFirstClockIn(ctx context.Context, trigger time.Time) attendance.AutoCloseResult {
	result, err := a.RunAt(ctx, trigger)
	if err != nil {
		a.logger.Error("auto-close failed, continuing clock-in",
			"trigger", trigger.Format(time.RFC3339),
			"error", err,
		)
		return attendance.AutoCloseResult{}
	}
	return result
}

func (a *AutoCloser) notifyClosed(ctx context.Context, result attendance.AutoCloseResult) {
	if a.notifier == nil || len(result.EmployeeIDs) == 0 {
		return
	}

	cutoff := civiltime.FormatClockTime12h(&result.Cutoff)
	reqs := make([]notification.CreateNotificationRequest, 0, len(result.EmployeeIDs))
	for _, employeeID := range result.EmployeeIDs {
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: employeeID,
			Type:        notification.TypeAttendanceAutoClosed,
			Title:       "Session closed automatically",
			Message:     fmt.Sprintf("Your open session on %s was closed at %s", result.Date, cutoff),
			Data: map[string]interface{}{
				"date":   result.Date,
				"cutoff": result.Cutoff.Format(time.RFC3339),
			},
		})
	}

	if err := a.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		a.logger.Warn("failed to queue auto-close notifications", "error", err)
	}
}
