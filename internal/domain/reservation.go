package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is one of the known reservation statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return true
	}
	return false
}

// Reservation is persisted as one element of the JSON array stored under the
// reservations key. Field names are part of the persisted layout.
type Reservation struct {
	ID              string            `json:"id"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	PartySize       int               `json:"partySize"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	SpecialRequests string            `json:"specialRequests,omitempty"`
	Status          ReservationStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       *time.Time        `json:"updatedAt,omitempty"`
}

// NewReservation is the booking payload before the store assigns identity,
// status and creation time.
type NewReservation struct {
	Date            string
	Time            string
	PartySize       int
	Name            string
	Email           string
	Phone           string
	SpecialRequests string
}
