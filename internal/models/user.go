package models

import "time"

// Role represents user roles in the system
type Role string

const (
	// RoleAdmin bypasses every capability check.
	RoleAdmin Role = "admin"
	// RoleOwner is the fallback role granted full access when a user has no
	// access-rights record attached.
	RoleOwner Role = "owner"
	RoleUser  Role = "user"
)

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleOwner, RoleUser:
		return true
	default:
		return false
	}
}

// RoleInfo is a role record as served by GET /roles.
type RoleInfo struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// User represents an authenticated identity. The access-rights list carries
// at most one authoritative record; the wire format is a list because the
// backend serves it that way.
type User struct {
	ID           string         `bson:"_id,omitempty" json:"id"`
	Email        string         `bson:"email" json:"email"`
	PasswordHash string         `bson:"password_hash" json:"-"`
	Role         Role           `bson:"role" json:"role"`
	CompanyID    string         `bson:"company_id,omitempty" json:"company_id,omitempty"`
	Company      *Company       `bson:"-" json:"company,omitempty"`
	AccessRights []AccessRights `bson:"access_rights,omitempty" json:"access_rights,omitempty"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updated_at"`
}

// Rights returns the authoritative access-rights record, or nil when none is
// attached.
func (u *User) Rights() *AccessRights {
	if len(u.AccessRights) == 0 {
		return nil
	}
	return &u.AccessRights[0]
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	CompanyID string `json:"company_id,omitempty"`
	Role      Role   `json:"role,omitempty"`
}

// AuthResponse represents a successful login or registration response
type AuthResponse struct {
	Message      string `json:"message,omitempty"`
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT claims
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID string `json:"company_id"`
	Exp       int64  `json:"exp"`
}
