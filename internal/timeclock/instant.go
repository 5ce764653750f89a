package timeclock

import "time"

const (
	// DateLayout is the canonical calendar-date key format.
	DateLayout = "2006-01-02"
	// ClockLayout is the canonical time-of-day format.
	ClockLayout = "15:04:05"

	endOfDayClock = "23:59:59"
)

// Compose anchors an HH:MM:SS time-of-day string to the given calendar date,
// in the date's location, without timezone conversion. A malformed clock
// string degrades to midnight of the date.
func Compose(date time.Time, clock string) time.Time {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return midnight.Add(time.Duration(ParseHMS(clock)) * time.Second)
}

// EndOfDay returns the last representable second of the date. Open segments
// on past days are credited up to this instant, keeping "missing clock-out"
// bounded instead of unbounded.
func EndOfDay(date time.Time) time.Time {
	return Compose(date, endOfDayClock)
}

// Clock renders the time-of-day portion of an instant as HH:MM:SS.
func Clock(t time.Time) string {
	return t.Format(ClockLayout)
}

// DateKey renders a calendar-date lookup key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDay reports whether two instants fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
