package reservation

import "github.com/nightfury12901/restaurant-temp/internal/domain"

// SlotCapacity is the number of non-cancelled reservations a slot accepts per
// date, regardless of party size.
const SlotCapacity = 2

// Slots is the service catalogue in serving order.
var Slots = []string{"18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00", "21:30"}

type SlotAvailability struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

func IsSlot(label string) bool {
	for _, s := range Slots {
		if s == label {
			return true
		}
	}
	return false
}

// ComputeAvailability derives the per-slot table for date from the full
// collection. It does not check the booking window.
func ComputeAvailability(date string, all []domain.Reservation) []SlotAvailability {
	counts := make(map[string]int, len(Slots))
	for _, r := range all {
		if r.Date != date || r.Status == domain.ReservationCancelled {
			continue
		}
		counts[r.Time]++
	}

	out := make([]SlotAvailability, 0, len(Slots))
	for _, slot := range Slots {
		out = append(out, SlotAvailability{
			Time:      slot,
			Available: counts[slot] < SlotCapacity,
		})
	}
	return out
}

func slotAvailable(table []SlotAvailability, label string) bool {
	for _, s := range table {
		if s.Time == label {
			return s.Available
		}
	}
	return false
}
