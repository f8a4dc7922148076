package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/quickbyte/quickbyte-auth/internal/dbx"
	"github.com/quickbyte/quickbyte-auth/internal/server/auth"
	"github.com/quickbyte/quickbyte-auth/internal/server/mail"
	"github.com/quickbyte/quickbyte-auth/internal/server/password"
)

// ForgotPassword issues a forgot-password token for the address, records its
// single-use ledger row, and sends the reset email. Fails ErrorNotFound when
// no user has the address; everything else is success-shaped for the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, auth.PurposeForgotPassword, s.secretKey, s.resetTTL)
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}

	// The ledger row pairs 1:1 with the minted token and must exist before the
	// email leaves, otherwise the link would arrive pointing at nothing.
	if _, err := s.repomanager.ResetTokens(s.db).Create(ctx, token); err != nil {
		return fmt.Errorf("error recording reset token: %w", err)
	}

	subject, body := mail.ResetPasswordEmail(s.frontendBaseURL, token)
	if err := s.notifier.Send(ctx, user.Email, subject, body); err != nil {
		s.logger.Error(ctx, "reset email delivery failed", "user_id", user.ID, "error", err.Error())
		return err
	}

	return nil
}

// VerifyResetPasswordToken runs the full reset-token check chain without
// mutating anything. It returns nil only when a reset with this token would
// currently be allowed.
func (s *AuthService) VerifyResetPasswordToken(ctx context.Context, token string) error {
	_, err := s.checkResetToken(ctx, token)
	return err
}

// ResetPassword validates the confirmation, runs the same check chain as
// VerifyResetPasswordToken, and then applies the password update and the
// used-marking as one transactional unit: a concurrent reset with the same
// token observes ErrorResetTokenAlreadyUsed instead of double-applying.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	// Confirmation mismatch fails before any datastore lookup.
	if newPassword != confirmPassword {
		return common.ErrorValidation
	}

	userID, err := s.checkResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.ResetTokens(tx).MarkUsed(ctx, token); err != nil {
			return err
		}
		return s.repomanager.Users(tx).UpdatePasswordHash(ctx, userID, hash)
	})
	if err != nil {
		if errors.Is(err, common.ErrorResetTokenAlreadyUsed) {
			return common.ErrorResetTokenAlreadyUsed
		}
		return fmt.Errorf("error applying password reset: %w", err)
	}

	return nil
}

// checkResetToken is the shared ledger-then-signature chain of the reset
// flows. The ledger is consulted first so a used token short-circuits with
// ErrorResetTokenAlreadyUsed even while its signature still verifies.
//
// Failure kinds, in check order: ErrorResetTokenNotFound (no ledger row),
// ErrorResetTokenAlreadyUsed, then the token kinds (expired / malformed / bad
// signature / purpose mismatch, logged individually), then ErrInvalidToken
// when the subject user no longer exists.
func (s *AuthService) checkResetToken(ctx context.Context, token string) (string, error) {
	record, err := s.repomanager.ResetTokens(s.db).FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorResetTokenNotFound
		}
		return "", fmt.Errorf("error loading reset token: %w", err)
	}
	if record.Used {
		return "", common.ErrorResetTokenAlreadyUsed
	}

	userID, err := auth.VerifyToken(token, auth.PurposeForgotPassword, s.secretKey)
	if err != nil {
		s.logger.Warn(ctx, "reset token rejected", "reason", err.Error())
		return "", err
	}

	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "reset token rejected", "reason", "subject user missing")
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("error loading user: %w", err)
	}

	return userID, nil
}
