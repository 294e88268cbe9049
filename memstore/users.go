package memstore

import (
	"context"
	"strings"
	"sync"

	"kartbook/models"
)

type Users struct {
	mu   sync.RWMutex
	byID map[string]models.User
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]models.User)}
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.ErrConflict
		}
	}
	s.byID[u.ID] = *u
	return nil
}

func (s *Users) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return models.ErrNotFound
	}
	s.byID[u.ID] = *u
	return nil
}
