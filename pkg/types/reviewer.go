package types

import "time"

// Session is the signed-in reviewer as reported by the identity provider.
// It is never persisted.
type Session struct {
	ReviewerID  string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Expired reports whether the session is past its expiry. A zero ExpiresAt
// never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Profile is the organization record of a registered reviewer. ID matches the
// identity provider's subject.
type Profile struct {
	ID                 string    `db:"id"`
	Name               string    `db:"name"`
	Organization       string    `db:"organization"`
	Phone              string    `db:"phone"`
	RegistrationNumber string    `db:"registration_number"`
	Address            string    `db:"address"`
	Description        string    `db:"description"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// Registration is everything a reviewer supplies when signing up.
type Registration struct {
	Profile
	Email    string
	Password string
}
