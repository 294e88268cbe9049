package booking

import "fmt"

// Reason is the machine-readable code of a rejected booking request.
type Reason string

// Input reasons: the request itself is unusable.
const (
	ReasonInvalidInput      Reason = "INVALID_INPUT"
	ReasonMissingDate       Reason = "MISSING_DATE"
	ReasonInvalidDate       Reason = "INVALID_DATE"
	ReasonNoTimeslots       Reason = "NO_TIMESLOTS"
	ReasonMalformedTimeslot Reason = "MALFORMED_TIMESLOT"
	ReasonDuplicateTimeslot Reason = "DUPLICATE_TIMESLOT"
	ReasonNoKarts           Reason = "NO_KARTS"
	ReasonInvalidQuantity   Reason = "INVALID_QUANTITY"
	ReasonUnknownKart       Reason = "UNKNOWN_KART"
	ReasonInvalidStatus     Reason = "INVALID_STATUS"
)

// Business rule reasons, in the order they are checked.
const (
	ReasonOutsideWindow         Reason = "OUTSIDE_WINDOW"
	ReasonClosedDay             Reason = "CLOSED_DAY"
	ReasonUnknownTimeslot       Reason = "UNKNOWN_TIMESLOT"
	ReasonDurationExceeded      Reason = "DURATION_EXCEEDED"
	ReasonInsufficientInventory Reason = "INSUFFICIENT_INVENTORY"
	ReasonKartLimitExceeded     Reason = "KART_LIMIT_EXCEEDED"
)

var businessReasons = map[Reason]bool{
	ReasonOutsideWindow:         true,
	ReasonClosedDay:             true,
	ReasonUnknownTimeslot:       true,
	ReasonDurationExceeded:      true,
	ReasonInsufficientInventory: true,
	ReasonKartLimitExceeded:     true,
}

// Rejection is returned when a booking request or patch is refused.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return "booking rejected: " + string(r.Reason)
	}
	return "booking rejected: " + string(r.Reason) + ": " + r.Detail
}

// Input reports whether the request was malformed rather than refused by a
// business rule.
func (r *Rejection) Input() bool { return !businessReasons[r.Reason] }

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
