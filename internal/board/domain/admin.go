package domain

import "time"

// Roles an admin account can hold. Only admins may change feature status or
// manage other accounts; users can still authenticate for write operations
// that require an identity.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Admin struct {
	ID           string
	Email        string
	DisplayName  string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the account holds the admin role.
func (a *Admin) IsAdmin() bool { return a.Role == RoleAdmin }
