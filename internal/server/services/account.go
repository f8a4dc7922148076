package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/quickbyte/quickbyte-auth/internal/server/auth"
	"github.com/quickbyte/quickbyte-auth/internal/server/mail"
	"github.com/quickbyte/quickbyte-auth/internal/server/models"
	"github.com/quickbyte/quickbyte-auth/internal/server/password"
)

// Signup creates an unverified, inactive user and sends the verification
// email. It does not log the new user in.
//
// The existence probe is a fast path only; the email unique constraint on the
// insert is the authoritative guard, so concurrent signups for the same
// address have exactly one winner.
func (s *AuthService) Signup(ctx context.Context, firstName, lastName, email, plaintextPassword string) (string, error) {
	email = normalizeEmail(email)

	repo := s.repomanager.Users(s.db)

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return "", common.ErrorEmailAlreadyExists
	}

	hash, err := password.Hash(plaintextPassword)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorEmailAlreadyExists) {
			return "", err
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	if err := s.sendVerificationEmail(ctx, user); err != nil {
		// The user row is committed; only the notification failed.
		return user.ID, err
	}

	return user.ID, nil
}

// CreateSuperuser provisions an administrative account: active, staff,
// superuser, and email-verified so it can log in immediately. Used by the
// createsuperuser command, not exposed over HTTP.
func (s *AuthService) CreateSuperuser(ctx context.Context, firstName, lastName, email, plaintextPassword string) (string, error) {
	email = normalizeEmail(email)

	hash, err := password.Hash(plaintextPassword)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		PasswordHash:    hash,
		IsEmailVerified: true,
		IsActive:        true,
		IsStaff:         true,
		IsSuperuser:     true,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorEmailAlreadyExists) {
			return "", err
		}
		return "", fmt.Errorf("error creating superuser: %w", err)
	}

	return user.ID, nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *models.User) error {
	token, err := auth.GenerateToken(user.ID, auth.PurposeEmailVerification, s.secretKey, s.verificationTTL)
	if err != nil {
		return fmt.Errorf("error generating verification token: %w", err)
	}

	subject, body := mail.VerificationEmail(s.frontendBaseURL, token)
	if err := s.notifier.Send(ctx, user.Email, subject, body); err != nil {
		s.logger.Error(ctx, "verification email delivery failed", "user_id", user.ID, "error", err.Error())
		return err
	}

	return nil
}
