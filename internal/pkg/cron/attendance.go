package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// AutoCloseRunner performs one day-boundary close at the current instant.
type AutoCloseRunner interface {
	Run(ctx context.Context) (attendance.AutoCloseResult, error)
}

type AttendanceJobs struct {
	autoCloser AutoCloseRunner
	interval   time.Duration
	logger     *slog.Logger
}

func NewAttendanceJobs(autoCloser AutoCloseRunner, interval time.Duration, logger *slog.Logger) *AttendanceJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceJobs{
		autoCloser: autoCloser,
		interval:   interval,
		logger:     logger,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_open_attendances", j.interval, j.AutoCloseOpenAttendances)
}

// AutoCloseOpenAttendances closes yesterday's open records for deployments where
// nobody clocks in early enough to trigger the close on the clock-in path.
// The run is a no-op once anyone has clocked in today.
func (j *AttendanceJobs) AutoCloseOpenAttendances(ctx context.Context) error {
	result, err := j.autoCloser.Run(ctx)
	if err != nil {
		return err
	}

	if !result.Ran {
		j.logger.Debug("Cron: auto-close skipped, clock-ins already recorded today")
		return nil
	}

	j.logger.Info("Cron: auto-close finished",
		"date", result.Date,
		"cutoff", result.Cutoff,
		"closed", result.Closed,
	)
	return nil
}
