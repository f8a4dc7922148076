// Package services contains server-side business logic. AuthService
// orchestrates signup, login/logout, identity lookup, email verification, and
// the password-reset flows by composing the user store, the reset-token
// ledger, the signed-token helpers, the session store, and the notifier.
package services

import (
	"database/sql"
	"strings"
	"time"

	"github.com/quickbyte/quickbyte-auth/internal/logging"
	"github.com/quickbyte/quickbyte-auth/internal/server/config"
	"github.com/quickbyte/quickbyte-auth/internal/server/mail"
	"github.com/quickbyte/quickbyte-auth/internal/server/models"
	"github.com/quickbyte/quickbyte-auth/internal/server/repositories/repomanager"
	"github.com/quickbyte/quickbyte-auth/internal/server/sessions"
)

// Profile is the public shape of a user returned by login and "me".
// It never carries the password hash.
type Profile struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// AuthService implements the authentication flows. One instance serves all
// requests; it holds no per-request state beyond its immutable wiring.
type AuthService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	sessions        sessions.Store
	notifier        mail.Notifier
	logger          logging.Logger
	secretKey       []byte
	verificationTTL time.Duration
	resetTTL        time.Duration
	frontendBaseURL string
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	s sessions.Store,
	n mail.Notifier,
	l logging.Logger,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		db:              db,
		repomanager:     m,
		sessions:        s,
		notifier:        n,
		logger:          l.With("module", "auth_service"),
		secretKey:       []byte(cfg.SecretKey),
		verificationTTL: cfg.VerificationTokenValidityDuration,
		resetTTL:        cfg.ResetTokenValidityDuration,
		frontendBaseURL: cfg.FrontendBaseURL,
	}
}

func profileOf(user *models.User) *Profile {
	return &Profile{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
}

// normalizeEmail lowercases the domain part of the address, leaving the local
// part untouched.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
