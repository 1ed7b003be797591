package reservation

import (
	"strings"

	"github.com/nightfury12901/restaurant-temp/internal/domain"
)

type CreateReservationRequest struct {
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required,slot"`
	PartySize       int    `json:"partySize" validate:"min=1,max=6"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,basicemail"`
	Phone           string `json:"phone" validate:"required"`
	SpecialRequests string `json:"specialRequests"`
}

func (r CreateReservationRequest) normalized() CreateReservationRequest {
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.SpecialRequests = strings.TrimSpace(r.SpecialRequests)
	return r
}

func (r CreateReservationRequest) toDomain() domain.NewReservation {
	return domain.NewReservation{
		Date:            r.Date,
		Time:            r.Time,
		PartySize:       r.PartySize,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		SpecialRequests: r.SpecialRequests,
	}
}

type UpdateStatusRequest struct {
	Status domain.ReservationStatus `json:"status" binding:"required"`
}

// ListFilter narrows the admin listing. Empty fields, and Status "all",
// match everything.
type ListFilter struct {
	Status string
	Date   string
}

type AvailabilityResponse struct {
	Date  string             `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}

type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Today     int `json:"today"`
}
