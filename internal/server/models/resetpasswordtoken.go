package models

import "time"

// ResetPasswordToken is the persisted single-use marker for a forgot-password
// token. The row is keyed by the literal signed token string; Used flips to
// true exactly once, at a successful password reset, and never back.
type ResetPasswordToken struct {
	ID        string
	Token     string
	Used      bool
	CreatedAt time.Time
}
