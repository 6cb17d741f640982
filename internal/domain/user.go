package domain

import "time"

// User represents an authenticated user account in the system.
type User struct {
	Entity
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"` // Stored hashed, never serialized
	IsActive     bool      `json:"is_active"`
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// CanLogIn returns true if the account is allowed to authenticate.
func (u *User) CanLogIn() bool {
	return u.IsActive
}
