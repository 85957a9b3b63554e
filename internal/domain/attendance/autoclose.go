package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/civiltime"
)

// AutoClosePlan is everything the day-boundary close needs, derived from the
// triggering instant alone.
type AutoClosePlan struct {
	TodayStart time.Time
	TodayEnd   time.Time
	Yesterday  string
	Cutoff     time.Time
}

// PlanAutoClose computes today's UTC window and the cutoff on the previous civil day.
func PlanAutoClose(trigger time.Time, policy Policy) (AutoClosePlan, error) {
	start, end := civiltime.DayBoundsUTC(trigger)

	yesterday, err := civiltime.PreviousDate(civiltime.CivilDate(trigger))
	if err != nil {
		return AutoClosePlan{}, fmt.Errorf("failed to compute previous civil date: %w", err)
	}

	cutoff, err := civiltime.DateTimeToUTC(yesterday, policy.AutoCloseHour, policy.AutoCloseMinute)
	if err != nil {
		return AutoClosePlan{}, fmt.Errorf("failed to compute auto-close cutoff: %w", err)
	}

	return AutoClosePlan{
		TodayStart: start,
		TodayEnd:   end,
		Yesterday:  yesterday,
		Cutoff:     cutoff,
	}, nil
}

// AutoCloseResult reports one invocation of the day-boundary close.
type AutoCloseResult struct {
	Ran         bool
	Closed      int
	Date        string
	Cutoff      time.Time
	EmployeeIDs []string
}

// NeedsAutoClose is the selection predicate of the bulk close: no legacy
// clock-out, or an open session that started at or before cutoff. Records that
// never had a clock-in (bulk status, manual entries) are stamped too.
func NeedsAutoClose(rec *Record, cutoff time.Time) bool {
	if rec.ClockOut == nil {
		return true
	}
	for _, s := range rec.Sessions {
		if s.IsOpen() && !s.In.After(cutoff) {
			return true
		}
	}
	return false
}

// ApplyAutoClose closes rec at cutoff the same way the storage-side bulk update
// does. Sessions that opened after cutoff stay open so no Out ever precedes its In.
// It reports whether rec was selected.
func ApplyAutoClose(rec *Record, cutoff time.Time, actor string, now time.Time) bool {
	if !NeedsAutoClose(rec, cutoff) {
		return false
	}

	for i := range rec.Sessions {
		if rec.Sessions[i].IsOpen() && !rec.Sessions[i].In.After(cutoff) {
			out := cutoff
			rec.Sessions[i].Out = &out
		}
	}

	legacyOut := cutoff
	rec.ClockOut = &legacyOut
	editedBy := actor
	editedAt := now
	rec.EditedBy = &editedBy
	rec.EditedAt = &editedAt

	return true
}
