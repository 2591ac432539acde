package models

import "time"

// Semester scopes requirements to an academic period. At most one semester is
// active at a time; the active one is the default for new requirements.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
