package mail

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender returns a sender suitable for development.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if !msg.HasRecipients() {
		return ErrNoRecipients
	}
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.String())
	}
	s.logger.Info("email",
		zap.String("to", strings.Join(to, ", ")),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.TextContent),
	)
	return nil
}
