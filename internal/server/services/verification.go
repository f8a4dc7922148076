package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/quickbyte/quickbyte-auth/internal/server/auth"
)

// ResendVerification re-issues a fresh verification token for the address and
// re-sends the email. Fails ErrorNotFound when no user has the address.
//
// TODO: decide whether resends should be refused once the address is already
// verified; today a verified user can still request one (the token is rejected
// at verify time).
func (s *AuthService) ResendVerification(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}

	if err := s.sendVerificationEmail(ctx, user); err != nil {
		return user.ID, err
	}

	return user.ID, nil
}

// VerifyEmail consumes a verification token and marks the subject user's
// email as verified.
//
// Every failure collapses to ErrInvalidToken so the caller cannot tell an
// expired token from a tampered one, a wrong-purpose one, a missing subject,
// or a replay against an already-verified address. The precise kind is logged
// for diagnostics.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := auth.VerifyToken(token, auth.PurposeEmailVerification, s.secretKey)
	if err != nil {
		s.logger.Warn(ctx, "email verification token rejected", "reason", err.Error())
		return common.ErrInvalidToken
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "email verification token rejected", "reason", "subject user missing")
			return common.ErrInvalidToken
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	// A verified address invalidates every outstanding token, even ones whose
	// signature would still check out.
	if user.IsEmailVerified {
		s.logger.Warn(ctx, "email verification token rejected", "reason", "already verified", "user_id", user.ID)
		return common.ErrInvalidToken
	}

	if err := repo.SetEmailVerified(ctx, user.ID, true); err != nil {
		return fmt.Errorf("error marking email verified: %w", err)
	}

	return nil
}
