package dto

import (
	"time"

	"github.com/noah-isme/etrackfac-api/internal/models"
)

// RequirementRef names a requirement column in the compliance matrix.
type RequirementRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MatrixCell is one faculty x requirement intersection. Status is `missing`
// when no submission row exists for the pair.
type MatrixCell struct {
	RequirementID   string                  `json:"requirement_id"`
	RequirementName string                  `json:"requirement_name"`
	Status          models.SubmissionStatus `json:"status"`
	Deadline        *time.Time              `json:"deadline,omitempty"`
}

// MatrixRow holds one faculty member's cells, one per requirement, in
// catalog order.
type MatrixRow struct {
	FacultyID      string       `json:"id"`
	FacultyName    string       `json:"name"`
	DepartmentID   *string      `json:"department_id,omitempty"`
	DepartmentName *string      `json:"department_name,omitempty"`
	Submissions    []MatrixCell `json:"submissions"`
}

// ComplianceMatrix is the faculty x requirement grid plus the catalog that
// defines its columns.
type ComplianceMatrix struct {
	Faculty      []MatrixRow      `json:"faculty"`
	Requirements []RequirementRef `json:"requirements"`
}

// DepartmentSummary aggregates submission rows per department. Total counts
// ledger rows only; requirements nobody uploaded for do not contribute.
type DepartmentSummary struct {
	DepartmentID   string  `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	Total          int     `json:"total"`
	Pending        int     `json:"pending"`
	Approved       int     `json:"approved"`
	Rejected       int     `json:"rejected"`
	ComplianceRate float64 `json:"compliance_rate"`
}
