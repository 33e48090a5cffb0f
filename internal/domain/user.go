package domain

import "time"

type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleStaff  UserRole = "staff"
	UserRoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleMember, UserRoleStaff, UserRoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may operate the lending desk.
func (r UserRole) IsStaff() bool {
	return r == UserRoleStaff || r == UserRoleAdmin
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusArchived  UserStatus = "archived"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusArchived:
		return true
	}
	return false
}

type User struct {
	ID               int32      `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	BadgeNumber      string     `json:"badge_number"`
	Role             UserRole   `json:"role"`
	Status           UserStatus `json:"status"`
	MembershipExpiry *Date      `json:"membership_expiry,omitempty"`
	// TotalDebtCents is the cached sum of the user's pending transactions. It is
	// only ever recomputed inside the SQL transaction that changed them.
	TotalDebtCents int32     `json:"total_debt_cents"`
	PasswordHash   string    `json:"-"`
	CreatedOn      time.Time `json:"created_on"`
	UpdatedOn      time.Time `json:"updated_on"`
}
