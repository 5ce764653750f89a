package models

import "time"

// LeaveStatus tracks the review state of a leave request.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// Valid returns true for supported statuses.
func (s LeaveStatus) Valid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	default:
		return false
	}
}

// LeaveType categorises a leave request.
type LeaveType string

const (
	LeaveTypeAnnual LeaveType = "annual"
	LeaveTypeSick   LeaveType = "sick"
	LeaveTypeUnpaid LeaveType = "unpaid"
)

// Valid returns true for supported leave types.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeUnpaid:
		return true
	default:
		return false
	}
}

// LeaveRange is a leave request spanning StartDate..EndDate inclusive. Only
// approved ranges participate in report reconciliation.
type LeaveRange struct {
	ID         string      `db:"id" json:"id"`
	EmployeeID string      `db:"employee_id" json:"employee_id"`
	Type       LeaveType   `db:"leave_type" json:"type"`
	StartDate  time.Time   `db:"start_date" json:"start_date"`
	EndDate    time.Time   `db:"end_date" json:"end_date"`
	Status     LeaveStatus `db:"status" json:"status"`
	Reason     *string     `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// LeaveFilter scopes leave listing queries.
type LeaveFilter struct {
	EmployeeID string
	Status     *LeaveStatus
	Type       *LeaveType
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
