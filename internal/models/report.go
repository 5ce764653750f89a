package models

import "time"

// MonthlyReportRow is one calendar day in a monthly attendance report.
// Duration fields are lossless HH:MM:SS strings; days without an attendance
// record carry "00:00:00".
type MonthlyReportRow struct {
	Date               time.Time `json:"date"`
	EmployeeID         string    `json:"employee_id"`
	ShiftID            *string   `json:"shift_id,omitempty"`
	Status             DayStatus `json:"status"`
	TotalDuration      string    `json:"total_duration"`
	ProductiveDuration string    `json:"productive_duration"`
	BreakDuration      string    `json:"break_duration"`
	LateIn             bool      `json:"late_in"`
	LateInReason       *string   `json:"late_in_reason,omitempty"`
	EarlyOut           bool      `json:"early_out"`
	EarlyOutReason     *string   `json:"early_out_reason,omitempty"`
}
