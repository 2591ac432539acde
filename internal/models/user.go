package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// Role represents a capability grant for the RBAC system.
type Role string

const (
	RoleFaculty      Role = "FACULTY"
	RoleProgramChair Role = "PROGRAM_CHAIR"
	RoleDean         Role = "DEAN"
	RoleAdmin        Role = "ADMIN"
)

// UserStatus gates authentication: registrations start PENDING and an admin
// approval flips them to ACTIVE.
type UserStatus string

const (
	UserStatusPending UserStatus = "PENDING"
	UserStatusActive  UserStatus = "ACTIVE"
)

// RoleSet is the capability set held by a user. Authorization checks test
// membership, never positional access.
type RoleSet []Role

// Has reports whether the set contains the given role.
func (r RoleSet) Has(role Role) bool {
	for _, candidate := range r {
		if candidate == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the set intersects the given roles.
func (r RoleSet) HasAny(roles ...Role) bool {
	for _, role := range roles {
		if r.Has(role) {
			return true
		}
	}
	return false
}

// Scan reads a Postgres text[] column.
func (r *RoleSet) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	set := make(RoleSet, 0, len(arr))
	for _, value := range arr {
		set = append(set, Role(value))
	}
	*r = set
	return nil
}

// Value writes the set as a Postgres text[].
func (r RoleSet) Value() (driver.Value, error) {
	arr := make(pq.StringArray, 0, len(r))
	for _, role := range r {
		arr = append(arr, string(role))
	}
	return arr.Value()
}

// User represents an application user stored in the users table.
type User struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FullName       string     `db:"full_name" json:"full_name"`
	DepartmentID   *string    `db:"department_id" json:"department_id,omitempty"`
	DepartmentName *string    `db:"department_name" json:"department_name,omitempty"`
	Roles          RoleSet    `db:"roles" json:"roles"`
	Status         UserStatus `db:"status" json:"status"`
	LastLogin      *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role         *Role
	Status       *UserStatus
	DepartmentID string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
