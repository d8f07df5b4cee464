package model

import "time"

// Roles accepted in the JWT "role" claim.  Operators edit loads and
// move vehicles; admins additionally reconfigure the yard and clear
// the change log.
const (
	RoleOperator = "OPERATOR"
	RoleAdmin    = "ADMIN"
)

// User mirrors the 'users' table.  Only the bcrypt hash of the
// password is ever stored.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
