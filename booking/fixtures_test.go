package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"kartbook/memstore"
	"kartbook/models"
	"kartbook/settings"
)

// Sunday; 2025-06-02 is the following Monday.
var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const monday = "2025-06-02"

func adultKart() models.Kart {
	return models.Kart{ID: "adult", Name: "Adult", Type: "Adult", PricePerSlot: models.NewMoney(25), Quantity: 2, IsActive: true}
}

func childKart() models.Kart {
	return models.Kart{ID: "child", Name: "Child", Type: "Child", PricePerSlot: models.NewMoney(15), Quantity: 3, IsActive: true}
}

type fakeNotifier struct {
	mu            sync.Mutex
	confirmErr    error
	confirmations []string
	cancellations []string
}

func (n *fakeNotifier) SendBookingConfirmation(_ context.Context, b *models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.confirmErr != nil {
		return n.confirmErr
	}
	n.confirmations = append(n.confirmations, b.ID)
	return nil
}

func (n *fakeNotifier) SendBookingCancellation(_ context.Context, b *models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancellations = append(n.cancellations, b.ID)
	return nil
}

var errSMTPDown = errors.New("smtp unavailable")

type recordingEvents struct {
	mu     sync.Mutex
	events []models.BookingEvent
}

func (r *recordingEvents) Publish(_ context.Context, ev models.BookingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type fixture struct {
	svc      *Service
	karts    *memstore.Karts
	bookings *memstore.Bookings
	settings *memstore.Settings
	notifier *fakeNotifier
	events   *recordingEvents
}

func newFixture(karts ...models.Kart) *fixture {
	if len(karts) == 0 {
		karts = []models.Kart{adultKart()}
	}
	f := &fixture{
		karts:    memstore.NewKarts(karts...),
		bookings: memstore.NewBookings(),
		settings: memstore.NewSettings(settings.Defaults()),
		notifier: &fakeNotifier{},
		events:   &recordingEvents{},
	}
	f.svc = &Service{
		Clock:    FixedClock{T: testNow},
		Karts:    f.karts,
		Settings: f.settings,
		Bookings: f.bookings,
		Notifier: f.notifier,
		Events:   f.events,
		Locker:   NewLocalLocker(),
	}
	return f
}

func (f *fixture) updateSettings(fn func(*models.Settings)) {
	s, _ := f.settings.Current(context.Background())
	fn(s)
	f.settings.Save(context.Background(), s)
}

func request(date string, slots []string, selections ...RequestSelection) Request {
	return Request{
		CustomerName:      "Mari Tamm",
		CustomerEmail:     "mari@example.com",
		CustomerPhone:     "+372 5555 1234",
		Date:              date,
		SelectedTimeslots: slots,
		KartSelections:    selections,
	}
}
