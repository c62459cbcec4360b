package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	Role         string     `json:"role" db:"role"`
	Status       UserStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

type UserRole string

const (
	RoleClient   UserRole = "CLIENT"
	RoleEmployee UserRole = "EMPLOYEE"
	RoleAdmin    UserRole = "ADMIN"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleClient, RoleEmployee, RoleAdmin:
		return true
	default:
		return false
	}
}

type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserInactive  UserStatus = "INACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserActive, UserInactive, UserSuspended:
		return true
	default:
		return false
	}
}

// HasRole reports whether the user satisfies requiredRole. Roles form a
// hierarchy: admin covers employee, employee covers client.
func (u *User) HasRole(requiredRole string) bool {
	switch UserRole(requiredRole) {
	case RoleAdmin:
		return u.Role == string(RoleAdmin)
	case RoleEmployee:
		return u.Role == string(RoleEmployee) || u.Role == string(RoleAdmin)
	case RoleClient:
		return u.Role == string(RoleClient) || u.Role == string(RoleEmployee) || u.Role == string(RoleAdmin)
	default:
		return false
	}
}

// IsStaff reports whether the user may operate on loans they do not own.
func (u *User) IsStaff() bool {
	return u.HasRole(string(RoleEmployee))
}

type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AssignRoleInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   UserRole  `json:"role" validate:"required"`
}

type UpdateUserStatusInput struct {
	Status UserStatus `json:"status" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
