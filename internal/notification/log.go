package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
)

// LogSender writes messages to the application log. It stands in for the
// real channels when none is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Channel() string { return ChannelLog }

func (s *LogSender) Send(_ context.Context, r domain.Reservation, msg Message) error {
	s.logger.Info("guest notification",
		zap.String("kind", msg.Kind),
		zap.String("reservation_id", r.ID),
		zap.String("to", r.Email),
		zap.String("subject", msg.Subject),
	)
	return nil
}
