package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/quickbyte/quickbyte-auth/internal/server/password"
)

// Login checks the credentials and, on success, binds a new session to the
// user and returns the public profile together with the session id.
//
// Failure kinds, in check order: ErrorNotFound (no such user),
// ErrorInvalidCredentials (password mismatch), ErrorEmailNotVerified.
func (s *AuthService) Login(ctx context.Context, email, plaintextPassword string) (*Profile, string, error) {
	email = normalizeEmail(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorNotFound
		}
		return nil, "", fmt.Errorf("error loading user: %w", err)
	}

	ok, err := password.Verify(plaintextPassword, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, "", common.ErrorInvalidCredentials
	}

	if !user.IsEmailVerified {
		return nil, "", common.ErrorEmailNotVerified
	}

	sessionID, err := s.sessions.Start(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("error starting session: %w", err)
	}

	return profileOf(user), sessionID, nil
}

// Logout destroys the session binding. The transport is responsible for
// rejecting requests that carry no authenticated session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.End(ctx, sessionID); err != nil {
		return fmt.Errorf("error ending session: %w", err)
	}
	return nil
}

// CurrentUser resolves the session to the public profile of its user.
// An unknown or expired session, or a session whose user no longer exists,
// yields ErrorUnauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*Profile, error) {
	userID, err := s.sessions.GetUserID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error resolving session: %w", err)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	return profileOf(user), nil
}
