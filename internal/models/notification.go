package models

import "time"

// Notification informs a faculty member about a review outcome.
type Notification struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	SubmissionID *string   `db:"submission_id" json:"submission_id,omitempty"`
	Message      string    `db:"message" json:"message"`
	Read         bool      `db:"read" json:"read"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
