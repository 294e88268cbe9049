package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"kartbook/models"
)

type Karts struct {
	mu   sync.RWMutex
	byID map[string]models.Kart
}

func NewKarts(karts ...models.Kart) *Karts {
	s := &Karts{byID: make(map[string]models.Kart)}
	for _, k := range karts {
		s.byID[k.ID] = k
	}
	return s
}

func (s *Karts) list(activeOnly bool) []models.Kart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Kart, 0, len(s.byID))
	for _, k := range s.byID {
		if !activeOnly || k.IsActive {
			out = append(out, k)
		}
	}
	slices.SortFunc(out, func(a, b models.Kart) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (s *Karts) ListActive(context.Context) ([]models.Kart, error) { return s.list(true), nil }

func (s *Karts) ListAll(context.Context) ([]models.Kart, error) { return s.list(false), nil }

func (s *Karts) GetByID(_ context.Context, id string) (*models.Kart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &k, nil
}

func (s *Karts) Create(_ context.Context, k *models.Kart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[k.ID]; exists {
		return models.ErrConflict
	}
	s.byID[k.ID] = *k
	return nil
}

func (s *Karts) Update(_ context.Context, k *models.Kart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[k.ID]; !ok {
		return models.ErrNotFound
	}
	s.byID[k.ID] = *k
	return nil
}

func (s *Karts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type KartTypes struct {
	mu   sync.RWMutex
	byID map[string]models.KartType
}

func NewKartTypes() *KartTypes {
	return &KartTypes{byID: make(map[string]models.KartType)}
}

func (s *KartTypes) list(activeOnly bool) []models.KartType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.KartType, 0, len(s.byID))
	for _, t := range s.byID {
		if !activeOnly || t.IsActive {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.KartType) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (s *KartTypes) ListActive(context.Context) ([]models.KartType, error) { return s.list(true), nil }

func (s *KartTypes) ListAll(context.Context) ([]models.KartType, error) { return s.list(false), nil }

func (s *KartTypes) GetByID(_ context.Context, id string) (*models.KartType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

// nameTaken must be called with s.mu held.
func (s *KartTypes) nameTaken(name, exceptID string) bool {
	for id, t := range s.byID {
		if id != exceptID && strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

func (s *KartTypes) Create(_ context.Context, t *models.KartType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[t.ID]; exists || s.nameTaken(t.Name, "") {
		return models.ErrConflict
	}
	s.byID[t.ID] = *t
	return nil
}

func (s *KartTypes) Update(_ context.Context, t *models.KartType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[t.ID]; !ok {
		return models.ErrNotFound
	}
	if s.nameTaken(t.Name, t.ID) {
		return models.ErrConflict
	}
	s.byID[t.ID] = *t
	return nil
}

func (s *KartTypes) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}
