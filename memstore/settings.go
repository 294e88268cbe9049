package memstore

import (
	"context"
	"sync"

	"kartbook/models"
	"kartbook/settings"
)

// Settings holds the single settings document, created from
// settings.Defaults on first read.
type Settings struct {
	mu sync.Mutex
	s  *models.Settings
}

func NewSettings(initial *models.Settings) *Settings {
	return &Settings{s: initial}
}

func (st *Settings) Current(context.Context) (*models.Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s == nil {
		st.s = settings.Defaults()
	}
	return st.s.Clone(), nil
}

func (st *Settings) Save(_ context.Context, s *models.Settings) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	c := s.Clone()
	c.ID = models.SettingsID
	st.s = c
	return nil
}
