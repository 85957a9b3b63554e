package attendance

import (
	"time"
)

// OpenSession returns the most recently appended open session and its index,
// or nil and -1 when every session is closed.
func OpenSession(rec *Record) (*Session, int) {
	for i := len(rec.Sessions) - 1; i >= 0; i-- {
		if rec.Sessions[i].IsOpen() {
			return &rec.Sessions[i], i
		}
	}
	return nil, -1
}

func HasOpenSession(rec *Record) bool {
	s, _ := OpenSession(rec)
	return s != nil
}

// ValidateOrdering rejects an out that precedes its paired in.
func ValidateOrdering(in, out time.Time) error {
	if out.Before(in) {
		return ErrInvalidOrdering
	}
	return nil
}

// StartSession appends an open session at the given instant.
func StartSession(rec *Record, at time.Time, source Source, note string) error {
	if HasOpenSession(rec) {
		return ErrSessionConflict
	}
	if !source.IsValid() {
		source = SourceManual
	}

	first := len(rec.Sessions) == 0
	rec.Sessions = append(rec.Sessions, Session{
		In:     at,
		Out:    nil,
		Source: source,
		Note:   note,
	})

	if first && rec.ClockIn == nil {
		in := at
		rec.ClockIn = &in
	}
	// Legacy clock-out mirrors the last session, which is now open.
	rec.ClockOut = nil

	return nil
}

// CloseSession closes the open session at the given instant.
func CloseSession(rec *Record, at time.Time) error {
	open, idx := OpenSession(rec)
	if open == nil {
		return ErrNoOpenSession
	}
	if err := ValidateOrdering(open.In, at); err != nil {
		return err
	}

	out := at
	open.Out = &out

	if idx == len(rec.Sessions)-1 {
		legacyOut := at
		rec.ClockOut = &legacyOut
	}

	return nil
}
