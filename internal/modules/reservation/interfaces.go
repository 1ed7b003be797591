package reservation

import (
	"context"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
	"github.com/nightfury12901/restaurant-temp/internal/events"
)

// Store is the record store holding the reservation collection.
type Store interface {
	List(ctx context.Context) ([]domain.Reservation, error)
	ByDate(ctx context.Context, date string) ([]domain.Reservation, error)
	Create(ctx context.Context, in domain.NewReservation) (domain.Reservation, error)
	// UpdateStatus reports false, with a nil error, when id is unknown.
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (domain.Reservation, bool, error)
	Delete(ctx context.Context, id string) ([]domain.Reservation, error)
}

// Notifier tells guests about their reservation.
type Notifier interface {
	ReservationReceived(ctx context.Context, r domain.Reservation) error
	ReservationStatusChanged(ctx context.Context, r domain.Reservation) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}
