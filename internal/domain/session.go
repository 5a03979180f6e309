package domain

import "time"

// SessionData is one login session.
type SessionData struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
// A session whose expiry equals now is expired.
func (s SessionData) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
