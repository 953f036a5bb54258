// Package engine implements the portfolio balance and insight computations.
// Everything here is a pure function over in-memory record sets: no I/O, no
// mutation of inputs, no ambient state. Callers fetch a snapshot from the
// store, pick a `now`, and invoke.
package engine

import "time"

// Window selects time logs by date. Start == nil means all time; otherwise
// the window is the half-open interval [Start, End).
type Window struct {
	Start *time.Time
	End   time.Time
}

// AllTime returns a window matching every record.
func AllTime() Window {
	return Window{}
}

// LastNDays returns a rolling elapsed-time window of the trailing n days,
// anchored to now. No calendar alignment: "last 7 days" means now minus 168
// hours, not the current calendar week.
func LastNDays(n int, now time.Time) Window {
	start := now.Add(-time.Duration(n) * 24 * time.Hour)
	return Window{Start: &start, End: now}
}

// Since returns the half-open window [start, now).
func Since(start, now time.Time) Window {
	return Window{Start: &start, End: now}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Start == nil {
		return true
	}
	return !t.Before(*w.Start) && t.Before(w.End)
}
