package notifier

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/qivlabs/qiv-auth/internal/model"
)

var _ model.OTPNotifier = (*SMTPNotifier)(nil)

// SMTPNotifier delivers reset codes over SMTP.
type SMTPNotifier struct {
	client *mail.Client
	from   string
}

// NewSMTPNotifier creates a notifier for the given SMTP endpoint.
func NewSMTPNotifier(host string, port int, username, password, from string) (*SMTPNotifier, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPNotifier{client: client, from: from}, nil
}

func (n *SMTPNotifier) SendOTP(ctx context.Context, email, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	msg.Subject("Your Verification Code")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hello,\n\nYour verification code is: %s\n\nThis code will expire in 15 minutes.\n\nIf you did not request this code, please disregard this email.\n\nThank you,\nThe Qiv Team\n",
		code,
	))

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}

	return nil
}
