package booking

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"kartbook/models"
	"kartbook/timeslot"
	"kartbook/utils"

	"github.com/golang-sql/civil"
)

// Request is a customer's booking submission. TimeslotKartQuantities maps a
// timeslot key to kart id to quantity. KartSelections is the older flat form;
// entries without a timeslot apply to every selected slot that has no mix of
// its own.
type Request struct {
	CustomerName           string                    `json:"customerName" validate:"required,max=200"`
	CustomerEmail          string                    `json:"customerEmail" validate:"required,email"`
	CustomerPhone          string                    `json:"customerPhone" validate:"required,max=40"`
	Date                   string                    `json:"date"`
	SelectedTimeslots      []string                  `json:"selectedTimeslots"`
	TimeslotKartQuantities map[string]map[string]int `json:"timeslotKartQuantities,omitempty"`
	KartSelections         []RequestSelection        `json:"kartSelections,omitempty"`
	Notes                  string                    `json:"notes" validate:"max=2000"`
}

type RequestSelection struct {
	Kart     string `json:"kart"`
	Quantity int    `json:"quantity"`
	Timeslot string `json:"timeslot,omitempty"`
}

// Builder validates a Request against one snapshot of settings, active karts
// and the date's bookings, and prices the result.
type Builder struct {
	Settings *models.Settings
	Karts    []models.Kart
	Bookings []models.Booking
	Now      time.Time
}

type parsedRequest struct {
	date  civil.Date
	slots []timeslot.Key
	mixes map[timeslot.Key]models.KartMix
	karts map[string]models.Kart
}

// Build returns a confirmed, priced booking without an id, or a *Rejection.
func (bd Builder) Build(req Request) (*models.Booking, error) {
	p, err := bd.parse(req)
	if err != nil {
		return nil, err
	}
	if err := bd.check(p); err != nil {
		return nil, err
	}
	return bd.assemble(req, p), nil
}

// ParseDate parses an ISO calendar date from a request.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, reject(ReasonMissingDate, "date is required")
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, reject(ReasonInvalidDate, "%q is not a YYYY-MM-DD date", s)
	}
	return d, nil
}

func (bd Builder) parse(req Request) (*parsedRequest, error) {
	if err := utils.Validate(req); err != nil {
		return nil, reject(ReasonInvalidInput, "%s", utils.ValidationMessage(err))
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if len(req.SelectedTimeslots) == 0 {
		return nil, reject(ReasonNoTimeslots, "at least one timeslot is required")
	}

	p := &parsedRequest{
		date:  date,
		mixes: make(map[timeslot.Key]models.KartMix),
		karts: make(map[string]models.Kart, len(bd.Karts)),
	}
	for _, k := range bd.Karts {
		p.karts[k.ID] = k
	}
	for _, raw := range req.SelectedTimeslots {
		k, err := timeslot.Parse(raw)
		if err != nil {
			return nil, reject(ReasonMalformedTimeslot, "%q", raw)
		}
		if slices.Contains(p.slots, k) {
			return nil, reject(ReasonDuplicateTimeslot, "%s selected twice", k)
		}
		p.slots = append(p.slots, k)
	}
	slices.SortFunc(p.slots, func(a, b timeslot.Key) int { return cmp.Compare(a.Start, b.Start) })

	explicit := make(map[timeslot.Key]models.KartMix)
	for raw, quantities := range req.TimeslotKartQuantities {
		slot, err := p.selectedSlot(raw)
		if err != nil {
			return nil, err
		}
		mix := make(models.KartMix)
		for id, qty := range quantities {
			if err := p.addToMix(mix, id, qty, true); err != nil {
				return nil, err
			}
		}
		explicit[slot] = mix
	}

	tagged := make(map[timeslot.Key]models.KartMix)
	untagged := make(models.KartMix)
	for _, sel := range req.KartSelections {
		mix := untagged
		if strings.TrimSpace(sel.Timeslot) != "" {
			slot, err := p.selectedSlot(sel.Timeslot)
			if err != nil {
				return nil, err
			}
			if tagged[slot] == nil {
				tagged[slot] = make(models.KartMix)
			}
			mix = tagged[slot]
		}
		if err := p.addToMix(mix, sel.Kart, sel.Quantity, false); err != nil {
			return nil, err
		}
	}

	for i, slot := range p.slots {
		mix := explicit[slot]
		if len(mix) == 0 {
			mix = tagged[slot]
		}
		if len(mix) == 0 {
			mix = untagged
		}
		if len(mix) == 0 && i > 0 {
			mix = p.mixes[p.slots[0]]
		}
		if len(mix) == 0 {
			return nil, reject(ReasonNoKarts, "no karts selected for %s", slot)
		}
		p.mixes[slot] = copyMix(mix)
	}
	return p, nil
}

func (p *parsedRequest) selectedSlot(raw string) (timeslot.Key, error) {
	k, err := timeslot.Parse(raw)
	if err != nil {
		return timeslot.Key{}, reject(ReasonMalformedTimeslot, "%q", raw)
	}
	if !slices.Contains(p.slots, k) {
		return timeslot.Key{}, reject(ReasonInvalidInput, "karts given for unselected timeslot %s", k)
	}
	return k, nil
}

// addToMix adds qty of kart id to mix. Zero quantities are skipped when
// allowZero is set, which is how the per-slot map clears a kart.
func (p *parsedRequest) addToMix(mix models.KartMix, id string, qty int, allowZero bool) error {
	if qty < 0 || (qty == 0 && !allowZero) {
		return reject(ReasonInvalidQuantity, "quantity %d for kart %s", qty, id)
	}
	if _, ok := p.karts[id]; !ok {
		return reject(ReasonUnknownKart, "kart %s is unknown or inactive", id)
	}
	if qty > 0 {
		mix[id] += qty
	}
	return nil
}

func (bd Builder) check(p *parsedRequest) error {
	s := bd.Settings
	today := dateOf(bd.Now)

	if p.date.Before(today) {
		return reject(ReasonOutsideWindow, "%s is in the past", p.date)
	}
	if last := today.AddDays(s.MaxAdvanceBookingDays); p.date.After(last) {
		return reject(ReasonOutsideWindow, "%s is after the last bookable date %s", p.date, last)
	}

	day := Calendar{Settings: s}.Resolve(p.date)
	if !day.Open {
		return reject(ReasonClosedDay, "closed on %s", p.date)
	}

	if p.date == today {
		for _, slot := range p.slots {
			if slot.Start < minuteOf(bd.Now) {
				return reject(ReasonOutsideWindow, "%s has already started", slot)
			}
		}
	}

	offered := timeslot.Generate(day.OpenTime, day.CloseTime, s.TimeslotDuration)
	for _, slot := range p.slots {
		if !slices.Contains(offered, slot) {
			return reject(ReasonUnknownTimeslot, "%s is not offered on %s", slot, p.date)
		}
	}

	minutes := sessionMinutes(p.slots)
	if s.MaxMinutesPerSession > 0 && minutes > s.MaxMinutesPerSession {
		return reject(ReasonDurationExceeded, "%d minutes selected, at most %d allowed", minutes, s.MaxMinutesPerSession)
	}

	avail := Ledger(p.date.String(), p.slots, bd.Karts, bd.Bookings)
	for i, slot := range p.slots {
		mix := p.mixes[slot]
		for _, id := range sortedKartIDs(mix) {
			ka, _ := avail[i].Kart(id)
			if mix[id] > ka.Available {
				return reject(ReasonInsufficientInventory, "%d x %s requested for %s, %d available",
					mix[id], p.karts[id].Name, slot, ka.Available)
			}
		}
	}

	for _, slot := range p.slots {
		if n := p.mixes[slot].Total(); s.MaxKartsPerTimeslot > 0 && n > s.MaxKartsPerTimeslot {
			return reject(ReasonKartLimitExceeded, "%d karts in %s, at most %d allowed", n, slot, s.MaxKartsPerTimeslot)
		}
	}
	return nil
}

func (bd Builder) assemble(req Request, p *parsedRequest) *models.Booking {
	now := bd.Now.UTC()
	b := &models.Booking{
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:     strings.TrimSpace(req.CustomerPhone),
		Date:              p.date.String(),
		StartTime:         p.slots[0].Start.String(),
		EndTime:           p.slots[len(p.slots)-1].End.String(),
		Duration:          sessionMinutes(p.slots),
		SelectedTimeslots: p.slots,
		SlotKarts:         make(models.SlotKarts, len(p.slots)),
		Status:            models.StatusConfirmed,
		Notes:             strings.TrimSpace(req.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, slot := range p.slots {
		mix := p.mixes[slot]
		b.SlotKarts[slot] = copyMix(mix)
		for _, id := range sortedKartIDs(mix) {
			tag := slot
			b.KartSelections = append(b.KartSelections, models.KartSelection{
				Kart:         id,
				Quantity:     mix[id],
				PricePerSlot: p.karts[id].PricePerSlot,
				Timeslot:     &tag,
			})
		}
	}
	b.TotalPrice = Price(b.KartSelections)
	return b
}

// Price is the sum of quantity times the snapshotted price per slot.
func Price(selections []models.KartSelection) models.Money {
	total := models.NewMoney(0)
	for _, sel := range selections {
		total = total.Add(sel.PricePerSlot.Times(sel.Quantity))
	}
	return total
}

func sessionMinutes(slots []timeslot.Key) int {
	n := 0
	for _, k := range slots {
		n += k.Minutes()
	}
	return n
}

func sortedKartIDs(mix models.KartMix) []string {
	ids := make([]string, 0, len(mix))
	for id := range mix {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func copyMix(mix models.KartMix) models.KartMix {
	out := make(models.KartMix, len(mix))
	for id, q := range mix {
		out[id] = q
	}
	return out
}
