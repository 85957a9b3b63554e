package civiltime

import (
	"math"
	"testing"
	"time"
)

func TestCivilDate(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2025, 3, 10, 18, 29, 0, 0, time.UTC), "2025-03-10"},
		{time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC), "2025-03-11"},
		{time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC), "2026-01-01"},
	}
	for _, c := range cases {
		if got := CivilDate(c.in); got != c.want {
			t.Errorf("CivilDate(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMinutesSinceMidnight(t *testing.T) {
	cases := []struct {
		in   time.Time
		want int
	}{
		{time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC), 0},
		{time.Date(2025, 3, 10, 3, 45, 0, 0, time.UTC), 9*60 + 15},
		{time.Date(2025, 3, 10, 18, 29, 59, 0, time.UTC), 1439},
	}
	for _, c := range cases {
		if got := MinutesSinceMidnight(c.in); got != c.want {
			t.Errorf("MinutesSinceMidnight(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestIsSameCivilDate(t *testing.T) {
	a := time.Date(2025, 3, 10, 18, 31, 0, 0, time.UTC)
	b := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
	c := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if !IsSameCivilDate(a, b) {
		t.Errorf("IsSameCivilDate(%v, %v) = false, want true", a, b)
	}
	if IsSameCivilDate(a, c) {
		t.Errorf("IsSameCivilDate(%v, %v) = true, want false", a, c)
	}
}

func TestFormatClockTime12h(t *testing.T) {
	morning := time.Date(2025, 3, 10, 3, 45, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)
	midnight := time.Date(2025, 3, 10, 18, 35, 0, 0, time.UTC)

	cases := []struct {
		in   *time.Time
		want string
	}{
		{nil, ""},
		{&morning, "9:15 am"},
		{&evening, "6:00 pm"},
		{&midnight, "12:05 am"},
	}
	for _, c := range cases {
		if got := FormatClockTime12h(c.in); got != c.want {
			t.Errorf("FormatClockTime12h(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestHumanizeDuration(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{-5, "0 hrs"},
		{0, "0 hrs"},
		{45, "45 mins"},
		{60, "1 hr"},
		{65, "1 hr 5 mins"},
		{120, "2 hrs"},
		{605, "10 hrs 5 mins"},
	}
	for _, c := range cases {
		if got := HumanizeDuration(c.in); got != c.want {
			t.Errorf("HumanizeDuration(%d) = %q, want %q", c.in, got, c.want)
		}
	}

	if got := HumanizeFloatDuration(math.NaN()); got != "0 hrs" {
		t.Errorf("HumanizeFloatDuration(NaN) = %q, want %q", got, "0 hrs")
	}
	if got := HumanizeFloatDuration(math.Inf(1)); got != "0 hrs" {
		t.Errorf("HumanizeFloatDuration(+Inf) = %q, want %q", got, "0 hrs")
	}
	if got := HumanizeFloatDuration(90.7); got != "1 hr 30 mins" {
		t.Errorf("HumanizeFloatDuration(90.7) = %q, want %q", got, "1 hr 30 mins")
	}
}

func TestDayBoundsUTC(t *testing.T) {
	start, end := DayBoundsUTC(time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))

	wantStart := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantStart.Add(24 * time.Hour)) {
		t.Errorf("end = %v, want %v", end, wantStart.Add(24*time.Hour))
	}
	if start.Location() != time.UTC {
		t.Errorf("start location = %v, want UTC", start.Location())
	}
}

func TestDateTimeToUTC(t *testing.T) {
	got, err := DateTimeToUTC("2025-03-10", 19, 0)
	if err != nil {
		t.Fatalf("DateTimeToUTC returned error: %v", err)
	}
	want := time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateTimeToUTC = %v, want %v", got, want)
	}

	if _, err := DateTimeToUTC("10-03-2025", 19, 0); err == nil {
		t.Error("DateTimeToUTC with malformed date returned nil error")
	}
}

func TestDateTimeToUTCRoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 18, 29, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
	}
	for _, x := range instants {
		date := CivilDate(x)
		for h := 0; h < 24; h++ {
			for _, m := range []int{0, 1, 29, 30, 59} {
				got, err := DateTimeToUTC(date, h, m)
				if err != nil {
					t.Fatalf("DateTimeToUTC(%q, %d, %d) returned error: %v", date, h, m, err)
				}
				if CivilDate(got) != date {
					t.Errorf("CivilDate(DateTimeToUTC(%q, %d, %d)) = %q", date, h, m, CivilDate(got))
				}
			}
		}
	}
}

func TestPreviousDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-03-10", "2025-03-09"},
		{"2025-03-01", "2025-02-28"},
		{"2024-01-01", "2023-12-31"},
	}
	for _, c := range cases {
		got, err := PreviousDate(c.in)
		if err != nil {
			t.Fatalf("PreviousDate(%q) returned error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("PreviousDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
