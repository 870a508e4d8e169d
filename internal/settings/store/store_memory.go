package store

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sync"

	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
)

// InMemoryStore keeps app settings and preferences in maps.
type InMemoryStore struct {
	mu          sync.RWMutex
	settings    map[string]string
	preferences map[id.PersonID]map[string]json.RawMessage
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		settings:    make(map[string]string),
		preferences: make(map[id.PersonID]map[string]json.RawMessage),
	}
}

func (s *InMemoryStore) GetSetting(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) SetSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *InMemoryStore) AllSettings(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.settings), nil
}

func (s *InMemoryStore) GetPreference(_ context.Context, personID id.PersonID, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.preferences[personID][key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(v), nil
}

func (s *InMemoryStore) SetPreference(_ context.Context, personID id.PersonID, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, ok := s.preferences[personID]
	if !ok {
		prefs = make(map[string]json.RawMessage)
		s.preferences[personID] = prefs
	}
	prefs[key] = slices.Clone(value)
	return nil
}

func (s *InMemoryStore) AllPreferences(_ context.Context, personID id.PersonID) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(s.preferences[personID]))
	for k, v := range s.preferences[personID] {
		out[k] = slices.Clone(v)
	}
	return out, nil
}
