package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kartbook/models"
	"kartbook/timeslot"
	"kartbook/utils"

	"github.com/google/uuid"
)

type KartStore interface {
	ListActive(ctx context.Context) ([]models.Kart, error)
	GetByID(ctx context.Context, id string) (*models.Kart, error)
}

type SettingsStore interface {
	Current(ctx context.Context) (*models.Settings, error)
}

// BookingStore persists bookings. GetByID, Replace, Delete and MarkEmailSent
// return models.ErrNotFound for unknown ids.
type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// ListByDate returns the non-cancelled bookings of date.
	ListByDate(ctx context.Context, date string) ([]models.Booking, error)
	List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error)
	// ListUnsent returns confirmed bookings dated on or after fromDate and
	// created no later than createdBefore whose confirmation email has not
	// gone out.
	ListUnsent(ctx context.Context, fromDate string, createdBefore time.Time) ([]models.Booking, error)
	// Replace overwrites b if its stored status is still prevStatus, and
	// returns models.ErrConflict otherwise.
	Replace(ctx context.Context, b *models.Booking, prevStatus string) error
	Delete(ctx context.Context, id string) error
	MarkEmailSent(ctx context.Context, id string) error
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, b *models.Booking) error
	SendBookingCancellation(ctx context.Context, b *models.Booking) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev models.BookingEvent)
}

// Service is the booking engine: availability queries and the create,
// update and delete paths with their notification side effects.
//
// Locker guards re-validation and the write of a new booking. Without one,
// concurrent requests can each pass validation and oversell.
type Service struct {
	Clock         Clock
	Karts         KartStore
	Settings      SettingsStore
	Bookings      BookingStore
	Notifier      Notifier
	Events        EventPublisher
	Locker        Locker
	NotifyTimeout time.Duration
}

// Result is a stored booking plus any non-fatal warnings raised after the
// write, such as a failed confirmation email.
type Result struct {
	Booking  *models.Booking `json:"booking"`
	Warnings []string        `json:"warnings,omitempty"`
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// Timeslots returns the bookable slots of date with per-kart availability.
// Past dates and closed days yield an empty list. On the current date,
// slots that have already started are left out.
func (s *Service) Timeslots(ctx context.Context, date string) ([]SlotAvailability, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	now := s.now()
	today := dateOf(now)
	if d.Before(today) {
		return []SlotAvailability{}, nil
	}

	settings, err := s.Settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	day := Calendar{Settings: settings}.Resolve(d)
	if !day.Open {
		return []SlotAvailability{}, nil
	}

	slots := timeslot.Generate(day.OpenTime, day.CloseTime, settings.TimeslotDuration)
	if d == today {
		cutoff := minuteOf(now)
		upcoming := slots[:0]
		for _, k := range slots {
			if k.Start >= cutoff {
				upcoming = append(upcoming, k)
			}
		}
		slots = upcoming
	}
	if len(slots) == 0 {
		return []SlotAvailability{}, nil
	}

	karts, err := s.Karts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load karts: %w", err)
	}
	bookings, err := s.Bookings.ListByDate(ctx, d.String())
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return Ledger(d.String(), slots, karts, bookings), nil
}

// Create validates req against fresh state and stores the booking, then
// sends the confirmation. A failed notification leaves emailSent false and
// is reported as a warning; the booking stays stored.
func (s *Service) Create(ctx context.Context, req Request) (*Result, error) {
	b, err := s.commit(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, models.EventBookingCreated, b)

	res := &Result{Booking: b}
	if warning := s.confirm(ctx, b); warning != "" {
		res.Warnings = append(res.Warnings, warning)
	}
	return res, nil
}

func (s *Service) commit(ctx context.Context, req Request) (*models.Booking, error) {
	d, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if s.Locker != nil {
		unlock, err := s.Locker.Lock(ctx, "booking:"+d.String())
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", d, err)
		}
		defer unlock()
	}

	settings, err := s.Settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	karts, err := s.Karts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load karts: %w", err)
	}
	existing, err := s.Bookings.ListByDate(ctx, d.String())
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	b, err := Builder{Settings: settings, Karts: karts, Bookings: existing, Now: s.now()}.Build(req)
	if err != nil {
		return nil, err
	}
	b.ID = uuid.NewString()
	if err := s.Bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("store booking: %w", err)
	}
	log.Printf("[Booking] created %s for %s %s-%s (%s)", b.ID, b.Date, b.StartTime, b.EndTime, b.TotalPrice)
	return b, nil
}

func (s *Service) notifyTimeout() time.Duration {
	if s.NotifyTimeout <= 0 {
		return 10 * time.Second
	}
	return s.NotifyTimeout
}

func (s *Service) notifyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout())
}

// confirm sends the confirmation for a stored booking and returns a warning
// on failure.
func (s *Service) confirm(ctx context.Context, b *models.Booking) string {
	if s.Notifier == nil {
		return ""
	}
	nctx, cancel := s.notifyContext(ctx)
	defer cancel()

	if err := s.Notifier.SendBookingConfirmation(nctx, b); err != nil {
		log.Printf("[Booking] confirmation email for %s failed: %v", b.ID, err)
		return "confirmation email could not be sent"
	}
	// A slow send may have used up nctx; the flag gets its own deadline.
	mctx, mcancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer mcancel()
	if err := s.Bookings.MarkEmailSent(mctx, b.ID); err != nil {
		log.Printf("[Booking] mark email sent for %s: %v", b.ID, err)
		return ""
	}
	b.EmailSent = true
	return ""
}

func (s *Service) publish(ctx context.Context, kind string, b *models.Booking) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(ctx, models.BookingEvent{Type: kind, BookingID: b.ID, Date: b.Date})
}

func (s *Service) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.Bookings.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	if f.Status != "" && !models.ValidStatus(f.Status) {
		return nil, reject(ReasonInvalidStatus, "%q", f.Status)
	}
	for _, date := range []string{f.StartDate, f.EndDate} {
		if date == "" {
			continue
		}
		if _, err := ParseDate(date); err != nil {
			return nil, err
		}
	}
	return s.Bookings.List(ctx, f)
}

// Patch is an admin edit of a booking. Nil fields are left unchanged.
type Patch struct {
	CustomerName   *string           `json:"customerName" validate:"omitnil,min=1,max=200"`
	CustomerEmail  *string           `json:"customerEmail" validate:"omitnil,email"`
	CustomerPhone  *string           `json:"customerPhone" validate:"omitnil,min=1,max=40"`
	Date           *string           `json:"date" validate:"omitnil,isodate"`
	StartTime      *string           `json:"startTime" validate:"omitnil,clock"`
	EndTime        *string           `json:"endTime" validate:"omitnil,clock"`
	Duration       *int              `json:"duration" validate:"omitnil,gt=0"`
	KartSelections *[]PatchSelection `json:"kartSelections"`
	Status         *string           `json:"status"`
	Notes          *string           `json:"notes" validate:"omitnil,max=2000"`
}

// PatchSelection is a kart selection in an admin edit. A nil price is
// taken from the booking's existing snapshot for the kart, or from the
// kart's current price.
type PatchSelection struct {
	Kart         string        `json:"kart"`
	Quantity     int           `json:"quantity"`
	PricePerSlot *models.Money `json:"pricePerSlot"`
	Timeslot     string        `json:"timeslot,omitempty"`
}

// Update applies p to booking id. Changing kart selections or duration
// reprices the booking. Moving a booking to cancelled sends one
// cancellation notice.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*Result, error) {
	if err := validatePatch(p); err != nil {
		return nil, err
	}
	current, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prevStatus, prevDate := current.Status, current.Date
	b := current.Clone()

	if p.CustomerName != nil {
		b.CustomerName = strings.TrimSpace(*p.CustomerName)
	}
	if p.CustomerEmail != nil {
		b.CustomerEmail = strings.TrimSpace(*p.CustomerEmail)
	}
	if p.CustomerPhone != nil {
		b.CustomerPhone = strings.TrimSpace(*p.CustomerPhone)
	}
	if p.Date != nil {
		b.Date = strings.TrimSpace(*p.Date)
	}
	if p.StartTime != nil {
		b.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		b.EndTime = *p.EndTime
	}
	if p.Notes != nil {
		b.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.KartSelections != nil {
		selections, err := s.resolveSelections(ctx, current, *p.KartSelections)
		if err != nil {
			return nil, err
		}
		b.KartSelections = selections
		b.SlotKarts = slotKartsOf(selections)
	}
	if p.Duration != nil {
		b.Duration = *p.Duration
	}
	if p.KartSelections != nil || p.Duration != nil {
		b.TotalPrice = Price(b.KartSelections)
	}
	b.UpdatedAt = s.now().UTC()

	if err := s.Bookings.Replace(ctx, b, prevStatus); err != nil {
		return nil, err
	}
	log.Printf("[Booking] updated %s (status %s -> %s)", b.ID, prevStatus, b.Status)

	if prevDate != b.Date {
		s.publish(ctx, models.EventBookingUpdated, &models.Booking{ID: b.ID, Date: prevDate})
	}
	s.publish(ctx, models.EventBookingUpdated, b)

	res := &Result{Booking: b}
	if prevStatus != models.StatusCancelled && b.Status == models.StatusCancelled {
		if warning := s.cancelNotice(ctx, b); warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
	}
	return res, nil
}

func validatePatch(p Patch) error {
	if err := utils.Validate(p); err != nil {
		return reject(ReasonInvalidInput, "%s", utils.ValidationMessage(err))
	}
	if p.Status != nil && !models.ValidStatus(*p.Status) {
		return reject(ReasonInvalidStatus, "%q", *p.Status)
	}
	if p.KartSelections != nil {
		for _, sel := range *p.KartSelections {
			if sel.Quantity <= 0 {
				return reject(ReasonInvalidQuantity, "quantity %d for kart %s", sel.Quantity, sel.Kart)
			}
			if sel.PricePerSlot != nil && sel.PricePerSlot.IsNegative() {
				return reject(ReasonInvalidInput, "negative price for kart %s", sel.Kart)
			}
			if strings.TrimSpace(sel.Timeslot) != "" {
				if _, err := timeslot.Parse(sel.Timeslot); err != nil {
					return reject(ReasonMalformedTimeslot, "%q", sel.Timeslot)
				}
			}
		}
	}
	return nil
}

func (s *Service) resolveSelections(ctx context.Context, current *models.Booking, in []PatchSelection) ([]models.KartSelection, error) {
	snapshot := make(map[string]models.Money)
	for _, sel := range current.KartSelections {
		snapshot[sel.Kart] = sel.PricePerSlot
	}
	out := make([]models.KartSelection, 0, len(in))
	for _, sel := range in {
		ks := models.KartSelection{Kart: sel.Kart, Quantity: sel.Quantity}
		switch price, ok := snapshot[sel.Kart]; {
		case sel.PricePerSlot != nil:
			ks.PricePerSlot = *sel.PricePerSlot
		case ok:
			ks.PricePerSlot = price
		default:
			kart, err := s.Karts.GetByID(ctx, sel.Kart)
			if errors.Is(err, models.ErrNotFound) {
				return nil, reject(ReasonUnknownKart, "kart %s", sel.Kart)
			}
			if err != nil {
				return nil, fmt.Errorf("load kart %s: %w", sel.Kart, err)
			}
			ks.PricePerSlot = kart.PricePerSlot
		}
		if strings.TrimSpace(sel.Timeslot) != "" {
			k, _ := timeslot.Parse(sel.Timeslot)
			ks.Timeslot = &k
		}
		out = append(out, ks)
	}
	return out, nil
}

func slotKartsOf(selections []models.KartSelection) models.SlotKarts {
	out := make(models.SlotKarts)
	for _, sel := range selections {
		if sel.Timeslot == nil {
			continue
		}
		if out[*sel.Timeslot] == nil {
			out[*sel.Timeslot] = make(models.KartMix)
		}
		out[*sel.Timeslot][sel.Kart] += sel.Quantity
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (s *Service) cancelNotice(ctx context.Context, b *models.Booking) string {
	if s.Notifier == nil {
		return ""
	}
	nctx, cancel := s.notifyContext(ctx)
	defer cancel()
	if err := s.Notifier.SendBookingCancellation(nctx, b); err != nil {
		log.Printf("[Booking] cancellation email for %s failed: %v", b.ID, err)
		return "cancellation email could not be sent"
	}
	return ""
}

// Delete removes a booking permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Bookings.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[Booking] deleted %s", id)
	s.publish(ctx, models.EventBookingDeleted, b)
	return nil
}

// RetryLockKey serializes confirmation retries across every process that
// shares the Locker.
const RetryLockKey = "job:retry-confirmations"

// RetryUnsentConfirmations resends confirmations that failed earlier for
// bookings from today on, and returns how many went out. Bookings younger
// than the notify timeout are skipped since their first send may still be
// running.
func (s *Service) RetryUnsentConfirmations(ctx context.Context) (int, error) {
	if s.Notifier == nil {
		return 0, nil
	}
	if s.Locker != nil {
		unlock, err := s.Locker.Lock(ctx, RetryLockKey)
		if err != nil {
			return 0, fmt.Errorf("lock %s: %w", RetryLockKey, err)
		}
		defer unlock()
	}
	now := s.now()
	pending, err := s.Bookings.ListUnsent(ctx, dateOf(now).String(), now.Add(-s.notifyTimeout()))
	if err != nil {
		return 0, fmt.Errorf("list unsent: %w", err)
	}
	sent := 0
	for i := range pending {
		b := &pending[i]
		if s.confirm(ctx, b) == "" && b.EmailSent {
			sent++
		}
	}
	return sent, nil
}
