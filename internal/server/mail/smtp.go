package mail

import (
	"context"
	"fmt"

	"github.com/quickbyte/quickbyte-auth/internal/common"
	gomail "github.com/wneessen/go-mail"
)

// SMTPNotifier sends mail through a single SMTP endpoint. The zero value is
// not usable; construct with NewSMTPNotifier.
type SMTPNotifier struct {
	client *gomail.Client
	from   string
}

// NewSMTPNotifier dials nothing up front; the connection is established per
// send. User/password may be empty for an unauthenticated relay (e.g. a local
// dev catcher).
func NewSMTPNotifier(host string, port int, user, password, from string) (*SMTPNotifier, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if user != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(user),
			gomail.WithPassword(password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client error: %w", err)
	}

	return &SMTPNotifier{client: client, from: from}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, toAddress, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorDeliveryFailure, err)
	}
	if err := msg.To(toAddress); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorDeliveryFailure, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorDeliveryFailure, err)
	}

	return nil
}
