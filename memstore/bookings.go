// Package memstore keeps kartbook data in process memory. It backs tests and
// STORE_DRIVER=memory runs; nothing survives a restart.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"kartbook/models"
)

type Bookings struct {
	mu   sync.RWMutex
	byID map[string]*models.Booking
}

func NewBookings() *Bookings {
	return &Bookings{byID: make(map[string]*models.Booking)}
}

func (s *Bookings) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[b.ID]; exists {
		return models.ErrConflict
	}
	s.byID[b.ID] = b.Clone()
	return nil
}

func (s *Bookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return b.Clone(), nil
}

func (s *Bookings) ListByDate(_ context.Context, date string) ([]models.Booking, error) {
	return s.filter(func(b *models.Booking) bool {
		return b.Date == date && b.Status != models.StatusCancelled
	}), nil
}

func (s *Bookings) List(_ context.Context, f models.BookingFilter) ([]models.Booking, error) {
	return s.filter(func(b *models.Booking) bool {
		if f.StartDate != "" && b.Date < f.StartDate {
			return false
		}
		if f.EndDate != "" && b.Date > f.EndDate {
			return false
		}
		return f.Status == "" || b.Status == f.Status
	}), nil
}

func (s *Bookings) ListUnsent(_ context.Context, fromDate string, createdBefore time.Time) ([]models.Booking, error) {
	return s.filter(func(b *models.Booking) bool {
		return b.Status == models.StatusConfirmed && !b.EmailSent && b.Date >= fromDate &&
			!b.CreatedAt.After(createdBefore)
	}), nil
}

func (s *Bookings) filter(keep func(*models.Booking) bool) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Booking, 0)
	for _, b := range s.byID {
		if keep(b) {
			out = append(out, *b.Clone())
		}
	}
	slices.SortFunc(out, func(a, b models.Booking) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.StartTime, b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Bookings) Replace(_ context.Context, b *models.Booking, prevStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[b.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Status != prevStatus {
		return models.ErrConflict
	}
	s.byID[b.ID] = b.Clone()
	return nil
}

func (s *Bookings) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Bookings) MarkEmailSent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	b.EmailSent = true
	return nil
}
