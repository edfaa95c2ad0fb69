package inmemory

import (
	"context"
	"sync"

	settingsdomain "koffa/internal/domain/settings"
)

// SettingsStore keeps family settings in process memory. Contents are lost on
// restart; use it for local runs and tests.
type SettingsStore struct {
	mu    sync.RWMutex
	items map[string]*settingsdomain.Settings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{
		items: make(map[string]*settingsdomain.Settings),
	}
}

func (s *SettingsStore) Load(_ context.Context, familyID string) (*settingsdomain.Settings, error) {
	s.mu.RLock()
	item, ok := s.items[familyID]
	s.mu.RUnlock()
	if !ok {
		return nil, settingsdomain.ErrSettingsNotFound
	}

	return item.Clone(), nil
}

func (s *SettingsStore) Save(_ context.Context, settings *settingsdomain.Settings) error {
	if settings == nil {
		return nil
	}

	s.mu.Lock()
	s.items[settings.FamilyID] = settings.Clone()
	s.mu.Unlock()
	return nil
}
