package booking

import (
	"slices"

	"kartbook/models"
	"kartbook/timeslot"
)

// KartAvailability is one kart's inventory in a slot. Booked never exceeds
// Total; Oversold carries any excess left by bookings that overran it.
type KartAvailability struct {
	KartID       string       `json:"_id"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	PricePerSlot models.Money `json:"pricePerSlot"`
	Available    int          `json:"available"`
	Total        int          `json:"total"`
	Booked       int          `json:"booked"`
	Oversold     int          `json:"oversold,omitempty"`
}

type SlotAvailability struct {
	Timeslot          timeslot.Key       `json:"timeslot"`
	StartTime         string             `json:"startTime"`
	EndTime           string             `json:"endTime"`
	KartAvailability  []KartAvailability `json:"kartAvailability"`
	TotalAvailability int                `json:"totalAvailability"`
	TotalBooked       int                `json:"totalBooked"`
	TotalKarts        int                `json:"totalKarts"`
}

// Kart returns the availability of one kart in the slot.
func (s SlotAvailability) Kart(id string) (KartAvailability, bool) {
	for _, ka := range s.KartAvailability {
		if ka.KartID == id {
			return ka, true
		}
	}
	return KartAvailability{}, false
}

// Ledger computes remaining kart inventory for each slot on date.
// A booking holds exactly the slots it selected; adjacency or time overlap
// with other slots does not count.
func Ledger(date string, slots []timeslot.Key, karts []models.Kart, bookings []models.Booking) []SlotAvailability {
	active := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Date == date && b.Status != models.StatusCancelled {
			active = append(active, b)
		}
	}

	out := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		booked := bookedIn(slot, active)
		sa := SlotAvailability{
			Timeslot:         slot,
			StartTime:        slot.Start.String(),
			EndTime:          slot.End.String(),
			KartAvailability: make([]KartAvailability, 0, len(karts)),
		}
		for _, k := range karts {
			total := max(k.Quantity, 0)
			used := booked[k.ID]
			ka := KartAvailability{
				KartID:       k.ID,
				Name:         k.Name,
				Type:         k.Type,
				PricePerSlot: k.PricePerSlot,
				Total:        total,
				Booked:       min(used, total),
				Available:    max(total-used, 0),
				Oversold:     max(used-total, 0),
			}
			sa.KartAvailability = append(sa.KartAvailability, ka)
			sa.TotalAvailability += ka.Available
			sa.TotalBooked += ka.Booked
			sa.TotalKarts += ka.Total
		}
		out = append(out, sa)
	}
	return out
}

// bookedIn sums booked quantities per kart id for slot.
func bookedIn(slot timeslot.Key, bookings []models.Booking) map[string]int {
	booked := make(map[string]int)
	for _, b := range bookings {
		if !holds(b, slot) {
			continue
		}
		for _, sel := range b.KartSelections {
			if countsFor(sel, slot) {
				booked[sel.Kart] += sel.Quantity
			}
		}
	}
	return booked
}

func holds(b models.Booking, slot timeslot.Key) bool {
	if len(b.SelectedTimeslots) == 0 {
		return legacyHolds(b, slot)
	}
	return slices.Contains(b.SelectedTimeslots, slot)
}

func countsFor(sel models.KartSelection, slot timeslot.Key) bool {
	if sel.Timeslot == nil {
		return legacyCountsUntagged(sel)
	}
	return *sel.Timeslot == slot
}
