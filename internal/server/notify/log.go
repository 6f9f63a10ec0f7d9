package notify

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "notify")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) (*Delivery, error) {
	s.logger.Info(ctx, "mail", "to", msg.To, "subject", msg.Subject)
	s.logger.Debug(ctx, "mail body", "to", msg.To, "body", msg.Body)
	return &Delivery{}, nil
}
