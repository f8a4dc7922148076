// Package auth issues and verifies the signed, purpose-scoped tokens used by
// the email-verification and password-reset flows. Tokens are stateless:
// validity is purely cryptographic plus the embedded expiry claim. Single-use
// semantics for reset tokens live in the reset-token ledger, not here.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quickbyte/quickbyte-auth/internal/common"
)

// Purpose tags a token with the only flow allowed to consume it.
type Purpose string

const (
	PurposeEmailVerification Purpose = "signup_email_verification"
	PurposeForgotPassword    Purpose = "forgot_password"
)

// Claims carries the standard registered claims plus the subject user id and
// the purpose tag.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Type   string `json:"type"`
}

// GenerateToken mints an HS256 token over {user_id, type, jti, iat, exp} for
// the given purpose. The random jti makes every mint distinct: the reset-token
// ledger keys rows by the literal token string, so two requests for the same
// user inside the same second must not produce the same bytes.
func GenerateToken(userID string, purpose Purpose, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
		Type:   string(purpose),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken parses and validates tokenString and returns the subject user
// id. On failure it returns exactly one of the sentinel kinds, detected in
// this order: common.ErrTokenExpired, common.ErrTokenMalformed,
// common.ErrTokenSignatureInvalid, common.ErrTokenPurposeMismatch.
//
// Whether the subject user still exists is the caller's concern.
func VerifyToken(tokenString string, expectedPurpose Purpose, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", common.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", common.ErrTokenSignatureInvalid
		default:
			return "", common.ErrInvalidToken
		}
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	if claims.Type != string(expectedPurpose) {
		return "", common.ErrTokenPurposeMismatch
	}

	return claims.UserID, nil
}
