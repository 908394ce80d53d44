package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionTTL is the fixed validity window of a tracked session.
const SessionTTL = 30 * 24 * time.Hour

// Session tracks one active token. SessionToken equals the token subject and
// is unique; AccessToken mirrors it.
type Session struct {
	SessionToken string    `json:"sessionToken" db:"session_token"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	AccessToken  string    `json:"accessToken" db:"access_token"`
	Expires      time.Time `json:"expires" db:"expires"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.Expires)
}
