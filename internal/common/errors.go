// Package common defines shared constants and sentinel errors used across
// the layers of the authentication service. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound           = errors.New("not found")
	ErrorEmailAlreadyExists = errors.New("email already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal           = errors.New("internal error")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorEmailNotVerified   = errors.New("email not verified")
	ErrorValidation         = errors.New("validation error")

	// Token lifecycle errors. VerifyToken returns exactly one of the four
	// specific kinds; ErrInvalidToken is the umbrella the flows collapse to
	// where the caller must not learn which check failed.
	ErrInvalidToken            = errors.New("invalid token")
	ErrTokenExpired            = errors.New("token expired")
	ErrTokenMalformed          = errors.New("token malformed")
	ErrTokenSignatureInvalid   = errors.New("token signature invalid")
	ErrTokenPurposeMismatch    = errors.New("token not valid for this operation")
	ErrorResetTokenNotFound    = errors.New("reset token does not exist")
	ErrorResetTokenAlreadyUsed = errors.New("reset token already used")

	// Notifier-side errors.
	ErrorDeliveryFailure = errors.New("email delivery failure")
)
