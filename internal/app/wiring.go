package app

import (
	"go.uber.org/zap"

	"github.com/nightfury12901/restaurant-temp/internal/config"
	"github.com/nightfury12901/restaurant-temp/internal/events"
	"github.com/nightfury12901/restaurant-temp/internal/notification"
)

// NewNotifier enables every fully configured guest channel. With none
// configured, messages only go to the log.
func NewNotifier(cfg *config.Config, logger *zap.Logger) *notification.Notifier {
	var senders []notification.Sender
	if cfg.EmailEnabled() {
		senders = append(senders, notification.NewEmailSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName))
	}
	if cfg.SMSEnabled() {
		senders = append(senders, notification.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber))
	}
	if len(senders) == 0 {
		senders = append(senders, notification.NewLogSender(logger))
	}

	channels := make([]string, 0, len(senders))
	for _, s := range senders {
		channels = append(channels, s.Channel())
	}
	logger.Info("guest notifications enabled", zap.Strings("channels", channels))

	return notification.New(senders...)
}

// NewPublisher fans events out to the admin hub and, when AMQP_URL is set, to
// the broker queue. The returned AMQP publisher is nil when disabled.
func NewPublisher(cfg *config.Config, hub *events.Hub, logger *zap.Logger) (events.Multi, *events.AMQPPublisher) {
	pubs := events.Multi{hub}
	if cfg.AMQPURL == "" {
		return pubs, nil
	}
	amqpPub := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsQueue, logger)
	return append(pubs, amqpPub), amqpPub
}
