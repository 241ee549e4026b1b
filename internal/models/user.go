package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleViewer         UserRole = "VIEWER"
	RoleContentManager UserRole = "CONTENT_MANAGER"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleViewer, RoleContentManager:
		return true
	default:
		return false
	}
}

// Label returns the display name of the role.
func (r UserRole) Label() string {
	switch r {
	case RoleViewer:
		return "Viewer"
	case RoleContentManager:
		return "Content Manager"
	default:
		return string(r)
	}
}

// IsManager reports whether r may manage the catalog.
func (r UserRole) IsManager() bool {
	return r == RoleContentManager
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Summary projects the user into the shape embedded in other entities.
func (u User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the joined owner/reviewer/assignee shape.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName falls back to the email when the name is blank.
func (u *UserSummary) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
