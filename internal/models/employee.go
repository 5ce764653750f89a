package models

import "time"

// Employee is a workforce member tracked by the system.
type Employee struct {
	ID         string    `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Email      string    `db:"email" json:"email"`
	Department string    `db:"department" json:"department"`
	Position   string    `db:"position" json:"position"`
	ShiftID    *string   `db:"shift_id" json:"shift_id,omitempty"`
	Active     bool      `db:"active" json:"active"`
	JoinedAt   time.Time `db:"joined_at" json:"joined_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter scopes listing queries.
type EmployeeFilter struct {
	Department string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Pagination describes the slice of a collection returned to clients.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
