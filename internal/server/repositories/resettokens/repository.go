// Package resettokens declares the repository contract for the single-use
// ledger backing forgot-password tokens. A ledger row's existence is
// necessary but not sufficient for a valid reset: the signed token must
// independently verify. Rows are never deleted.
package resettokens

import (
	"context"

	"github.com/quickbyte/quickbyte-auth/internal/server/models"
)

type Repository interface {
	// Create inserts an unused ledger row keyed by the literal token string.
	// Called once, at issuance, right after the token is minted.
	Create(ctx context.Context, token string) (*models.ResetPasswordToken, error)

	// FindByToken returns common.ErrorNotFound when the token was never issued.
	FindByToken(ctx context.Context, token string) (*models.ResetPasswordToken, error)

	// MarkUsed flips used to true as a compare-and-set: a row already marked
	// used yields common.ErrorResetTokenAlreadyUsed so concurrent resets have
	// at most one winner.
	MarkUsed(ctx context.Context, token string) error
}
