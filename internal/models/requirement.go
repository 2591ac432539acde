package models

import "time"

// Requirement is a document type faculty must submit for a semester.
type Requirement struct {
	ID           string     `db:"id" json:"id"`
	SemesterID   string     `db:"semester_id" json:"semester_id"`
	SemesterName string     `db:"semester_name" json:"semester_name,omitempty"`
	Name         string     `db:"name" json:"name"`
	Description  *string    `db:"description" json:"description,omitempty"`
	IsRequired   bool       `db:"is_required" json:"is_required"`
	Deadline     *time.Time `db:"deadline" json:"deadline,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	// SubmissionsCount is derived from the ledger, not stored.
	SubmissionsCount int `db:"submissions_count" json:"submissions_count"`
}

// RequirementFilter captures listing criteria for the requirement catalog.
type RequirementFilter struct {
	SemesterID string
	Search     string
	Page       int
	PageSize   int
}
