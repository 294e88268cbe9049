package booking

import (
	"strings"

	"kartbook/models"
	"kartbook/timeslot"
)

// Compatibility rules for bookings stored before per-slot selection.
// Nothing created by Builder reaches these paths.

// legacyHolds matches a booking without selectedTimeslots to slot when its
// startTime equals the slot start exactly.
func legacyHolds(b models.Booking, slot timeslot.Key) bool {
	start, err := timeslot.ParseClock(strings.TrimSpace(b.StartTime))
	if err != nil {
		return false
	}
	return start == slot.Start
}

// legacyCountsUntagged makes an untagged selection count against every slot
// its booking holds.
func legacyCountsUntagged(sel models.KartSelection) bool {
	return sel.Timeslot == nil
}
