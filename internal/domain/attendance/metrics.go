package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/civiltime"
)

// Policy holds the thresholds the time accounting is evaluated against.
type Policy struct {
	StartThresholdMinutes int // civil minute of day after which a first clock-in is late
	FullDayMinutes        int // worked minutes beyond this are overtime
	AutoCloseHour         int
	AutoCloseMinute       int
	SystemActor           string
}

func DefaultPolicy() Policy {
	return Policy{
		StartThresholdMinutes: 9*60 + 30,
		FullDayMinutes:        600,
		AutoCloseHour:         19,
		AutoCloseMinute:       0,
		SystemActor:           "system",
	}
}

// WorkedMinutes sums the minute-of-clock differences of every session that started on recordDate.
// Closed sessions count in full even when they run past midnight. An open session
// is measured up to now only when recordDate is today; on a past date it counts
// zero. With no sessions the legacy clock-in/clock-out pair is used the same way.
func WorkedMinutes(sessions []Session, legacyIn, legacyOut *time.Time, recordDate string, now time.Time) int {
	isToday := civiltime.CivilDate(now) == recordDate

	if len(sessions) > 0 {
		total := 0
		for _, s := range sessions {
			if s.In.IsZero() || civiltime.CivilDate(s.In) != recordDate {
				continue
			}
			total += spanMinutes(s.In, s.Out, isToday, now)
		}
		return total
	}

	if legacyIn != nil && civiltime.CivilDate(*legacyIn) == recordDate {
		return spanMinutes(*legacyIn, legacyOut, isToday, now)
	}

	return 0
}

func spanMinutes(in time.Time, out *time.Time, isToday bool, now time.Time) int {
	var end time.Time
	switch {
	case out != nil:
		end = *out
	case isToday:
		end = now
	default:
		return 0
	}

	// Whole-minute clock readings, as lateness uses. IST is a whole number of
	// minutes off UTC so truncating the instant truncates the civil reading.
	d := end.Truncate(time.Minute).Sub(in.Truncate(time.Minute))
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// EarliestInMinutes returns the earliest civil minute of day among sessions that
// started on recordDate, falling back to the legacy clock-in. Nil when nothing qualifies.
func EarliestInMinutes(sessions []Session, legacyIn *time.Time, recordDate string) *int {
	var earliest *int
	for _, s := range sessions {
		if s.In.IsZero() || civiltime.CivilDate(s.In) != recordDate {
			continue
		}
		m := civiltime.MinutesSinceMidnight(s.In)
		if earliest == nil || m < *earliest {
			earliest = &m
		}
	}
	if earliest != nil {
		return earliest
	}

	if legacyIn != nil && civiltime.CivilDate(*legacyIn) == recordDate {
		m := civiltime.MinutesSinceMidnight(*legacyIn)
		return &m
	}
	return nil
}

func (p Policy) LateMinutes(earliestIn *int) int {
	if earliestIn == nil {
		return 0
	}
	return max(0, *earliestIn-p.StartThresholdMinutes)
}

func (p Policy) OvertimeMinutes(workedMinutes int) int {
	return max(0, workedMinutes-p.FullDayMinutes)
}

// ClassifyPresence collapses the stored status into the two-valued display form.
func ClassifyPresence(status Status, hasAnyClockIn bool) string {
	if status == StatusAbsent || status == StatusOnLeave || !hasAnyClockIn {
		return string(StatusAbsent)
	}
	return string(StatusPresent)
}

// DisplayPair picks the earliest same-day clock-in and the latest same-day
// clock-out. It does not have to agree with WorkedMinutes when sessions have gaps.
func DisplayPair(sessions []Session, legacyIn, legacyOut *time.Time, recordDate string) (in, out *time.Time) {
	for i := range sessions {
		s := sessions[i]
		if s.In.IsZero() || civiltime.CivilDate(s.In) != recordDate {
			continue
		}
		if in == nil || s.In.Before(*in) {
			t := s.In
			in = &t
		}
		if s.Out != nil && (out == nil || s.Out.After(*out)) {
			t := *s.Out
			out = &t
		}
	}
	if in != nil {
		return in, out
	}

	if legacyIn != nil && civiltime.CivilDate(*legacyIn) == recordDate {
		return legacyIn, legacyOut
	}
	return nil, nil
}

// DaySummary is the derived view of a record used by read endpoints.
type DaySummary struct {
	RecordID        string
	EmployeeID      string
	Date            string
	Status          Status
	Presence        string
	ClockIn         *time.Time
	ClockOut        *time.Time
	HasOpenSession  bool
	SessionCount    int
	WorkedMinutes   int
	LateMinutes     int
	OvertimeMinutes int
	OTStatus        *OTStatus
}

// Summarize evaluates every metric for rec at the given instant.
func (p Policy) Summarize(rec *Record, now time.Time) DaySummary {
	worked := WorkedMinutes(rec.Sessions, rec.ClockIn, rec.ClockOut, rec.Date, now)
	in, out := DisplayPair(rec.Sessions, rec.ClockIn, rec.ClockOut, rec.Date)

	return DaySummary{
		RecordID:        rec.ID,
		EmployeeID:      rec.EmployeeID,
		Date:            rec.Date,
		Status:          rec.Status,
		Presence:        ClassifyPresence(rec.Status, rec.HasAnyClockIn()),
		ClockIn:         in,
		ClockOut:        out,
		HasOpenSession:  HasOpenSession(rec),
		SessionCount:    len(rec.Sessions),
		WorkedMinutes:   worked,
		LateMinutes:     p.LateMinutes(EarliestInMinutes(rec.Sessions, rec.ClockIn, rec.Date)),
		OvertimeMinutes: p.OvertimeMinutes(worked),
		OTStatus:        rec.OTStatus,
	}
}
