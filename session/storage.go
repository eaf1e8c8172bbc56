package session

import (
	"context"
	"sync"
)

const (
	// PendingLoginKey stores the nonce of the login in progress.
	PendingLoginKey = "linkedin_state"

	// SessionKey stores the serialized identity of the signed in user.
	SessionKey = "linkedin_user"
)

// Storage is the client's persistent string key-value store.
//
// Implementations must be concurrently safe.
type Storage interface {
	// Get returns the value for key.  ok is false when the key is not set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key.  Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// MemoryStorage is a Storage that lives only as long as the process.
type MemoryStorage struct {
	mu sync.Mutex
	m  map[string]string
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: map[string]string{}}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryStorage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
