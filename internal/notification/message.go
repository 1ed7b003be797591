// Package notification tells guests about their reservations over email, SMS
// or the application log.
package notification

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
	"github.com/nightfury12901/restaurant-temp/internal/modules/reservation"
)

// Message kinds
const (
	KindReceived  = "reservation.received"
	KindConfirmed = "reservation.confirmed"
	KindCancelled = "reservation.cancelled"
)

// Channel names, used in logs
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelLog   = "log"
)

// Message is a rendered notification, independent of the delivery channel.
type Message struct {
	Kind    string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers one rendered message to the guest of r.
type Sender interface {
	Channel() string
	Send(ctx context.Context, r domain.Reservation, msg Message) error
}

func receivedMessage(r domain.Reservation) Message {
	when := fmt.Sprintf("%s at %s", reservation.FormatLongDate(r.Date), r.Time)
	text := fmt.Sprintf(
		"Hi %s, we received your reservation for %d on %s. Your booking reference is %s. We will confirm it shortly.",
		r.Name, r.PartySize, when, r.ID,
	)
	return Message{
		Kind:    KindReceived,
		Subject: "Reservation received " + r.ID,
		Text:    text,
		HTML:    "<p>" + html.EscapeString(text) + "</p>",
	}
}

// statusMessage renders the message for r's current status. ok is false for
// statuses guests are not told about.
func statusMessage(r domain.Reservation) (Message, bool) {
	when := fmt.Sprintf("%s at %s", reservation.FormatLongDate(r.Date), r.Time)

	var msg Message
	switch r.Status {
	case domain.ReservationConfirmed:
		msg = Message{
			Kind:    KindConfirmed,
			Subject: "Reservation confirmed " + r.ID,
			Text:    fmt.Sprintf("Hi %s, your table for %d on %s is confirmed. Reference %s.", r.Name, r.PartySize, when, r.ID),
		}
	case domain.ReservationCancelled:
		msg = Message{
			Kind:    KindCancelled,
			Subject: "Reservation cancelled " + r.ID,
			Text:    fmt.Sprintf("Hi %s, your reservation %s for %s has been cancelled.", r.Name, r.ID, when),
		}
	default:
		return Message{}, false
	}
	msg.HTML = "<p>" + html.EscapeString(msg.Text) + "</p>"
	return msg, true
}

// Notifier renders reservation messages and hands them to every configured
// sender. Delivery errors are joined; one failing channel does not stop the
// others.
type Notifier struct {
	senders []Sender
}

func New(senders ...Sender) *Notifier {
	return &Notifier{senders: senders}
}

func (n *Notifier) ReservationReceived(ctx context.Context, r domain.Reservation) error {
	return n.deliver(ctx, r, receivedMessage(r))
}

func (n *Notifier) ReservationStatusChanged(ctx context.Context, r domain.Reservation) error {
	msg, ok := statusMessage(r)
	if !ok {
		return nil
	}
	return n.deliver(ctx, r, msg)
}

func (n *Notifier) deliver(ctx context.Context, r domain.Reservation, msg Message) error {
	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, r, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Channel(), err))
		}
	}
	return errors.Join(errs...)
}
