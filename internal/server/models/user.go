package models

import "time"

// User is an identity record. PasswordHash is the PHC-encoded argon2id hash
// and is never exposed outside the repository/service layers.
type User struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	PasswordHash    string
	IsEmailVerified bool
	IsActive        bool
	IsStaff         bool
	IsSuperuser     bool
	CreatedAt       time.Time
}
