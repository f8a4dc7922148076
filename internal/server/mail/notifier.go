// Package mail sends the service's outbound email: the signup verification
// message and the forgot-password message. Delivery failures are reported to
// the caller as common.ErrorDeliveryFailure; flows must never fold them into
// token or validation errors.
package mail

import (
	"context"
	"fmt"
)

// Notifier delivers a single HTML email. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Send(ctx context.Context, toAddress, subject, htmlBody string) error
}

// NoOpNotifier silently discards all messages. Used by commands that wire an
// AuthService but never send mail.
type NoOpNotifier struct{}

func (NoOpNotifier) Send(ctx context.Context, toAddress, subject, htmlBody string) error {
	return nil
}

// VerificationEmail renders the signup/resend verification message. The link
// points at the frontend route that submits the embedded token back to the
// verify-email endpoint.
func VerificationEmail(frontendBaseURL, token string) (subject, htmlBody string) {
	subject = "QuickByte Signup Verification"
	htmlBody = fmt.Sprintf(
		"Verify your email, <a href='%s/signup/verify-email?token=%s' target='_blank'> Click here </a>",
		frontendBaseURL, token,
	)
	return subject, htmlBody
}

// ResetPasswordEmail renders the forgot-password message.
func ResetPasswordEmail(frontendBaseURL, token string) (subject, htmlBody string) {
	subject = "Forgot Password | QuickByte"
	htmlBody = fmt.Sprintf(
		"Reset your password, <a href='%s/reset-password?token=%s' target='_blank'> Click here </a>",
		frontendBaseURL, token,
	)
	return subject, htmlBody
}
