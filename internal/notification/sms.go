package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
)

var ErrPhoneFormat = errors.New("phone number is not in E.164 format")

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// SMSSender delivers the plain-text body through Twilio. Only E.164 numbers
// are attempted.
type SMSSender struct {
	api  messageCreator
	from string
}

func NewSMSSender(accountSID, authToken, fromNumber string) *SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return &SMSSender{api: client.Api, from: fromNumber}
}

func (s *SMSSender) Channel() string { return ChannelSMS }

func (s *SMSSender) Send(_ context.Context, r domain.Reservation, msg Message) error {
	to := normalizePhone(r.Phone)
	if !strings.HasPrefix(to, "+") {
		return fmt.Errorf("%w: %q", ErrPhoneFormat, r.Phone)
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(msg.Text)

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	return nil
}

// normalizePhone drops spaces, dashes and parentheses.
func normalizePhone(p string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(p))
}
