// Package events carries reservation lifecycle events to admin clients and
// downstream consumers.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
)

type Type string

const (
	ReservationCreated       Type = "reservation.created"
	ReservationStatusChanged Type = "reservation.status_changed"
	ReservationDeleted       Type = "reservation.deleted"
)

type Event struct {
	Type        Type               `json:"type"`
	Reservation domain.Reservation `json:"reservation"`
	At          time.Time          `json:"at"`
}

func New(t Type, r domain.Reservation, at time.Time) Event {
	return Event{Type: t, Reservation: r, At: at.UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
