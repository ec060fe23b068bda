package domain

import "time"

// Session describes an issued session credential.
type Session struct {
	Token     string
	UserID    string
	Role      UserRole
	ExpiresAt time.Time
}

// PasswordResetToken is a single-use credential for the forgot-password flow.
type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
