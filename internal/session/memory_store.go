package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/casekit/case-gateway/internal/domain"
)

// MemoryStore is a map-backed Store for tests and single-process runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// SetToken stores the token string.
func (s *MemoryStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[keyToken] = token
	return nil
}

// GetToken returns the stored token if present.
func (s *MemoryStore) GetToken(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[keyToken]
	return val, ok, nil
}

// RemoveToken clears the token and the profile together.
func (s *MemoryStore) RemoveToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, keyToken)
	delete(s.values, keyUser)
	return nil
}

// SetUser serializes and stores the full profile.
func (s *MemoryStore) SetUser(_ context.Context, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[keyUser] = string(raw)
	return nil
}

// GetUser deserializes the stored profile; malformed data reads as
// absent.
func (s *MemoryStore) GetUser(_ context.Context) (*domain.User, bool, error) {
	s.mu.RLock()
	raw, ok := s.values[keyUser]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false, nil
	}
	return &user, true, nil
}

// SetPreference stores a cached UI preference.
func (s *MemoryStore) SetPreference(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// GetPreference returns a cached UI preference.
func (s *MemoryStore) GetPreference(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok, nil
}

// Clear removes every record the session owns.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, keyToken)
	delete(s.values, keyUser)
	for _, p := range PreferenceKeys() {
		delete(s.values, p)
	}
	return nil
}
