package engine

import "time"

// DateLayout is the calendar-date format used throughout rulebooks and
// submitted values.
const DateLayout = "2006-01-02"

// Clock supplies the current time to date-relative checks. Injecting it
// keeps evaluation deterministic under test.
type Clock interface {
	Now() time.Time
}

// systemClock is the production clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// FixedClock is a clock pinned to a single instant.
type FixedClock struct {
	Time time.Time
}

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time { return c.Time }

// parseDate parses a value as a calendar date in YYYY-MM-DD form. Only
// string values qualify.
func parseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// isWeekend reports whether the date falls on Saturday or Sunday.
func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
