package notifier

import (
	"context"

	"github.com/qivlabs/qiv-auth/internal/logger"
	"github.com/qivlabs/qiv-auth/internal/model"
)

var _ model.OTPNotifier = (*ConsoleNotifier)(nil)

// ConsoleNotifier logs reset codes instead of sending email. For
// development only.
type ConsoleNotifier struct {
	logger *logger.Logger
}

func NewConsoleNotifier(logger *logger.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger}
}

func (n *ConsoleNotifier) SendOTP(_ context.Context, email, code string) error {
	n.logger.Info("OTP email (console notifier)",
		"to", email,
		"code", code)
	return nil
}
