package models

import "time"

// DayStatus represents the status stored on (or derived for) a calendar day.
type DayStatus string

const (
	DayStatusPresent DayStatus = "present"
	DayStatusRemote  DayStatus = "remote"
	DayStatusOnLeave DayStatus = "on_leave"
	DayStatusWeekend DayStatus = "weekend"
	DayStatusAbsent  DayStatus = "absent"
)

// Valid returns true when the status is a supported stored value.
func (s DayStatus) Valid() bool {
	switch s {
	case DayStatusPresent, DayStatusRemote, DayStatusOnLeave, DayStatusWeekend, DayStatusAbsent:
		return true
	default:
		return false
	}
}

// WorkSegment is one clock-in/clock-out span within a day. Clock values are
// HH:MM:SS time-of-day strings anchored to the owning day's date. A nil
// ClockOut means the segment is still open. Duration and ProductiveDuration
// are HH:MM:SS strings written when the segment is closed; when present they
// are authoritative over recomputation from the clock values.
type WorkSegment struct {
	ID                 string    `db:"id" json:"id"`
	DayID              string    `db:"day_id" json:"-"`
	Position           int       `db:"position" json:"-"`
	ClockIn            string    `db:"clock_in" json:"clock_in"`
	ClockOut           *string   `db:"clock_out" json:"clock_out,omitempty"`
	Duration           *string   `db:"duration" json:"duration,omitempty"`
	ProductiveDuration *string   `db:"productive_duration" json:"productive_duration,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Open reports whether the segment has no clock-out yet.
func (s WorkSegment) Open() bool {
	return s.ClockOut == nil || *s.ClockOut == ""
}

// BreakSegment is one break span within a day. A nil End means the break is
// still in progress.
type BreakSegment struct {
	ID        string    `db:"id" json:"id"`
	DayID     string    `db:"day_id" json:"-"`
	Position  int       `db:"position" json:"-"`
	Start     string    `db:"start_at" json:"start"`
	End       *string   `db:"end_at" json:"end,omitempty"`
	Duration  *string   `db:"duration" json:"duration,omitempty"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Open reports whether the break has not ended yet.
func (b BreakSegment) Open() bool {
	return b.End == nil || *b.End == ""
}

// DayAttendance is one employee's attendance record for one calendar day.
// Segments and breaks are kept in insertion order, which matches the
// chronological order of clock events.
type DayAttendance struct {
	ID             string         `db:"id" json:"id"`
	EmployeeID     string         `db:"employee_id" json:"employee_id"`
	ShiftID        *string        `db:"shift_id" json:"shift_id,omitempty"`
	Date           time.Time      `db:"date" json:"date"`
	Status         DayStatus      `db:"status" json:"status"`
	LateIn         bool           `db:"late_in" json:"late_in"`
	LateInReason   *string        `db:"late_in_reason" json:"late_in_reason,omitempty"`
	EarlyOut       bool           `db:"early_out" json:"early_out"`
	EarlyOutReason *string        `db:"early_out_reason" json:"early_out_reason,omitempty"`
	WorkSegments   []WorkSegment  `json:"work_segments"`
	Breaks         []BreakSegment `json:"breaks"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// OpenWorkSegment returns the first open work segment, or nil.
func (d *DayAttendance) OpenWorkSegment() *WorkSegment {
	for i := range d.WorkSegments {
		if d.WorkSegments[i].Open() {
			return &d.WorkSegments[i]
		}
	}
	return nil
}

// OpenBreak returns the first open break, or nil.
func (d *DayAttendance) OpenBreak() *BreakSegment {
	for i := range d.Breaks {
		if d.Breaks[i].Open() {
			return &d.Breaks[i]
		}
	}
	return nil
}
