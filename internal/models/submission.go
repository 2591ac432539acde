package models

import "time"

// SubmissionStatus is the review state of an uploaded document.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"

	// SubmissionMissing is synthesized by the checklist builder and
	// compliance matrix when no ledger row exists; it is never persisted.
	SubmissionMissing SubmissionStatus = "missing"
)

// Submission is the current ledger entry for one (faculty, requirement)
// pair. Uploads after rejection overwrite this row rather than append.
type Submission struct {
	ID            string           `db:"id" json:"id"`
	FacultyID     string           `db:"faculty_id" json:"faculty_id"`
	RequirementID string           `db:"requirement_id" json:"requirement_id"`
	Status        SubmissionStatus `db:"status" json:"status"`
	FilePath      string           `db:"file_path" json:"file_path"`
	FileName      string           `db:"file_name" json:"file_name"`
	Remarks       *string          `db:"remarks" json:"remarks,omitempty"`
	ReviewerID    *string          `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// SubmissionDetail joins the ledger row with faculty, department and
// requirement names for review listings.
type SubmissionDetail struct {
	Submission
	FacultyName     string  `db:"faculty_name" json:"faculty_name"`
	DepartmentID    *string `db:"department_id" json:"department_id,omitempty"`
	DepartmentName  *string `db:"department_name" json:"department_name,omitempty"`
	RequirementName string  `db:"requirement_name" json:"requirement_name"`
}

// SubmissionFilter captures criteria for review listings.
type SubmissionFilter struct {
	DepartmentID string
	FacultyID    string
	Status       *SubmissionStatus
	SemesterID   string
}
