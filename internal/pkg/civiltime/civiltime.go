// Package civiltime converts instants to and from the fixed IST civil timezone
// (UTC+05:30, no daylight saving). Attendance dates, lateness and auto-close
// cutoffs are all expressed in this zone.
package civiltime

import (
	"fmt"
	"math"
	"time"
)

const (
	DateLayout = "2006-01-02"

	offsetSeconds = 5*60*60 + 30*60
	minutesPerDay = 24 * 60
)

// IST is the civil zone. It is a fixed offset, so every civil wall-clock time maps
// to exactly one instant.
var IST = time.FixedZone("IST", offsetSeconds)

// CivilDate returns t's calendar date in IST as "YYYY-MM-DD".
func CivilDate(t time.Time) string {
	return t.In(IST).Format(DateLayout)
}

// MinutesSinceMidnight returns the IST minute of day in [0, 1440).
func MinutesSinceMidnight(t time.Time) int {
	local := t.In(IST)
	return local.Hour()*60 + local.Minute()
}

func IsSameCivilDate(a, b time.Time) bool {
	return CivilDate(a) == CivilDate(b)
}

// FormatClockTime12h renders t as "h:mm am" / "h:mm pm". A nil t yields "".
func FormatClockTime12h(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(IST).Format("3:04 pm")
}

// HumanizeDuration renders minutes as "2 hrs 5 mins", "1 hr", "45 mins" or "0 hrs".
func HumanizeDuration(minutes int) string {
	if minutes <= 0 {
		return "0 hrs"
	}
	h := minutes / 60
	m := minutes % 60

	hrs := "hrs"
	if h == 1 {
		hrs = "hr"
	}

	switch {
	case m == 0:
		return fmt.Sprintf("%d %s", h, hrs)
	case h == 0:
		return fmt.Sprintf("%d mins", m)
	default:
		return fmt.Sprintf("%d %s %d mins", h, hrs, m)
	}
}

// HumanizeFloatDuration is HumanizeDuration for values coming from float
// arithmetic; NaN and infinities render as "0 hrs".
func HumanizeFloatDuration(minutes float64) string {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return "0 hrs"
	}
	return HumanizeDuration(int(math.Floor(minutes)))
}

// DayBoundsUTC returns the UTC instants of civil 00:00 on t's IST date and of the
// following civil midnight.
func DayBoundsUTC(t time.Time) (start, end time.Time) {
	local := t.In(IST)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, IST).UTC()
	return start, start.Add(minutesPerDay * time.Minute)
}

// ParseDate parses a civil "YYYY-MM-DD" date as IST midnight.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, IST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid civil date %q: %w", date, err)
	}
	return t, nil
}

// DateTimeToUTC builds the UTC instant for an explicit IST wall-clock time on date.
func DateTimeToUTC(date string, hour, minute int) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, IST).UTC(), nil
}

// PreviousDate returns the civil date one day before date.
func PreviousDate(date string) (string, error) {
	day, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return day.AddDate(0, 0, -1).Format(DateLayout), nil
}
