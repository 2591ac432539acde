package dto

import (
	"time"

	"github.com/noah-isme/etrackfac-api/internal/models"
)

// ChecklistItem is one row of the faculty dashboard: a requirement joined
// with the faculty member's current submission, or `missing` when none
// exists. Ordering follows the requirement catalog.
type ChecklistItem struct {
	RequirementID   string                  `json:"requirement_id"`
	RequirementName string                  `json:"requirement"`
	Description     *string                 `json:"description,omitempty"`
	IsRequired      bool                    `json:"is_required"`
	Deadline        *time.Time              `json:"deadline,omitempty"`
	Status          models.SubmissionStatus `json:"status"`
	SubmissionID    *string                 `json:"submission_id,omitempty"`
	Remarks         *string                 `json:"remarks,omitempty"`
	FilePath        *string                 `json:"file_path,omitempty"`
	SubmittedAt     *time.Time              `json:"submitted_at,omitempty"`
}
