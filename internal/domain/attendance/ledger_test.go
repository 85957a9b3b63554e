package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/civiltime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// at returns the UTC instant of an IST wall-clock time.
func at(t *testing.T, date string, hour, minute int) time.Time {
	t.Helper()
	ts, err := civiltime.DateTimeToUTC(date, hour, minute)
	require.NoError(t, err)
	return ts
}

func openCount(rec *Record) int {
	n := 0
	for _, s := range rec.Sessions {
		if s.IsOpen() {
			n++
		}
	}
	return n
}

func TestStartSession(t *testing.T) {
	t.Run("first session sets legacy clock-in", func(t *testing.T) {
		rec := &Record{EmployeeID: "emp-1", Date: "2024-03-11"}
		in := at(t, "2024-03-11", 9, 15)

		require.NoError(t, StartSession(rec, in, SourceWeb, "office"))

		require.Len(t, rec.Sessions, 1)
		assert.True(t, rec.Sessions[0].IsOpen())
		assert.Equal(t, SourceWeb, rec.Sessions[0].Source)
		assert.Equal(t, "office", rec.Sessions[0].Note)
		require.NotNil(t, rec.ClockIn)
		assert.True(t, in.Equal(*rec.ClockIn))
		assert.Nil(t, rec.ClockOut)
		assert.True(t, HasOpenSession(rec))
	})

	t.Run("conflict when a session is already open", func(t *testing.T) {
		rec := &Record{Date: "2024-03-11"}
		require.NoError(t, StartSession(rec, at(t, "2024-03-11", 9, 0), SourceWeb, ""))

		err := StartSession(rec, at(t, "2024-03-11", 9, 1), SourceMobile, "")

		assert.ErrorIs(t, err, ErrSessionConflict)
		assert.Len(t, rec.Sessions, 1)
		assert.Equal(t, 1, openCount(rec))
	})

	t.Run("invalid source falls back to manual", func(t *testing.T) {
		rec := &Record{Date: "2024-03-11"}
		require.NoError(t, StartSession(rec, at(t, "2024-03-11", 9, 0), Source("kiosk"), ""))
		assert.Equal(t, SourceManual, rec.Sessions[0].Source)
	})

	t.Run("second session keeps first clock-in and clears legacy clock-out", func(t *testing.T) {
		rec := &Record{Date: "2024-03-11"}
		first := at(t, "2024-03-11", 9, 0)
		require.NoError(t, StartSession(rec, first, SourceWeb, ""))
		require.NoError(t, CloseSession(rec, at(t, "2024-03-11", 12, 0)))
		require.NotNil(t, rec.ClockOut)

		require.NoError(t, StartSession(rec, at(t, "2024-03-11", 13, 0), SourceWeb, ""))

		assert.Len(t, rec.Sessions, 2)
		assert.True(t, first.Equal(*rec.ClockIn))
		assert.Nil(t, rec.ClockOut)
	})
}

func TestCloseSession(t *testing.T) {
	t.Run("no open session", func(t *testing.T) {
		rec := &Record{Date: "2024-03-11"}
		assert.ErrorIs(t, CloseSession(rec, at(t, "2024-03-11", 18, 0)), ErrNoOpenSession)
	})

	t.Run("closes and mirrors legacy clock-out", func(t *testing.T) {
		rec := &Record{Date: "2024-03-11"}
		require.NoError(t, StartSession(rec, at(t, "2024-03-11", 9, 0), SourceWeb, ""))
		out := at(t, "2024-03-11", 18, 0)

		require.NoError(t, CloseSession(rec, out))

		require.NotNil(t, rec.Sessions[0].Out)
		assert.True(t, out.Equal(*rec.Sessions[0].Out))
		require.NotNil(t, rec.ClockOut)
		assert.True(t, out.Equal(*rec.ClockOut))
		assert.False(t, HasOpenSession(rec))
	})

	t.Run("out before in is rejected without mutation", func(t *testing.T) {
		rec := &Record{Date: "2024-03-11"}
		require.NoError(t, StartSession(rec, at(t, "2024-03-11", 9, 0), SourceWeb, ""))

		err := CloseSession(rec, at(t, "2024-03-11", 8, 59))

		assert.ErrorIs(t, err, ErrInvalidOrdering)
		assert.True(t, rec.Sessions[0].IsOpen())
		assert.Nil(t, rec.ClockOut)
	})

	t.Run("out equal to in is allowed", func(t *testing.T) {
		rec := &Record{Date: "2024-03-11"}
		in := at(t, "2024-03-11", 9, 0)
		require.NoError(t, StartSession(rec, in, SourceWeb, ""))
		assert.NoError(t, CloseSession(rec, in))
	})
}

func TestLedger_AtMostOneOpenSession(t *testing.T) {
	rec := &Record{Date: "2024-03-11"}
	base := at(t, "2024-03-11", 8, 0)

	// Alternate punches with some duplicates mixed in.
	ops := []bool{true, true, false, false, true, true, true, false, true}
	for i, start := range ops {
		ts := base.Add(time.Duration(i) * 10 * time.Minute)
		if start {
			_ = StartSession(rec, ts, SourceWeb, "")
		} else {
			_ = CloseSession(rec, ts)
		}
		assert.LessOrEqual(t, openCount(rec), 1, "after op %d", i)
	}
	assert.Len(t, rec.Sessions, 3)
}

func TestOpenSession_ReturnsMostRecent(t *testing.T) {
	out := at(t, "2024-03-11", 10, 0)
	rec := &Record{
		Date: "2024-03-11",
		Sessions: []Session{
			{In: at(t, "2024-03-11", 9, 0), Out: &out},
			{In: at(t, "2024-03-11", 11, 0)},
		},
	}

	s, idx := OpenSession(rec)

	require.NotNil(t, s)
	assert.Equal(t, 1, idx)

	rec.Sessions = rec.Sessions[:1]
	s, idx = OpenSession(rec)
	assert.Nil(t, s)
	assert.Equal(t, -1, idx)
}
