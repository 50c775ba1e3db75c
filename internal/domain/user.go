package domain

import "time"

// Roles stored on users; the admin role unlocks catalog and order management.
const (
	RoleUser  = 0
	RoleAdmin = 1
)

// User represents a registered buyer or administrator.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	AnswerHash   string    `json:"-"`
	Role         int       `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
