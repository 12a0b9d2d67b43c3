package models

import "time"

// Session records an issued token that has not been revoked.
// Only the SHA-256 hash of the token is persisted.
type Session struct {
	TokenHash string    `json:"-" db:"token_hash"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Session model
func (Session) TableName() string {
	return "sessions"
}

// IsExpired reports whether the session is past its expiry at the given instant
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
