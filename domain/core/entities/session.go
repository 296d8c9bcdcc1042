package entities

import "time"

// SessionToken is a server-side session referenced by the session cookie
type SessionToken struct {
	TokenID   string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// IsValid reports whether the session can authenticate requests at now
func (s *SessionToken) IsValid(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
