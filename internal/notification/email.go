package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
)

type mailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailSender delivers messages through SendGrid.
type EmailSender struct {
	client   mailClient
	fromMail string
	fromName string
}

func NewEmailSender(apiKey, fromEmail, fromName string) *EmailSender {
	return &EmailSender{
		client:   sendgrid.NewSendClient(apiKey),
		fromMail: fromEmail,
		fromName: fromName,
	}
}

func (s *EmailSender) Channel() string { return ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, r domain.Reservation, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromMail)
	to := mail.NewEmail(r.Name, r.Email)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
