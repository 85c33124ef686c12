package models

import "time"

// Role represents the available volunteer roles for the RBAC system.
type Role string

const (
	RolePV         Role = "pv"
	RoleTV         Role = "tv"
	RoleVI         Role = "vi"
	RoleRI         Role = "ri"
	RoleAdmin      Role = "admin"
	RoleTVAdmin    Role = "tv_admin"
	RoleSuperAdmin Role = "superadmin"
)

// Volunteer represents a registered volunteer or admin account.
type Volunteer struct {
	VolunteerID  string     `db:"volunteer_id" json:"volunteerId"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// VolunteerFilter captures filtering criteria for listing volunteers.
type VolunteerFilter struct {
	Role   Role
	Active *bool
	Search string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
