// Package session keeps per-visitor state (applied coupon, order
// completion marker) in a pluggable key-value store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by a Store when the key does not exist
var ErrNotFound = errors.New("session key not found")

// Store is the key-value backend for sessions
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Take returns the value and removes it in one step
	Take(ctx context.Context, key string) ([]byte, error)
}

// Session is the state of one visitor, identified by an opaque token
type Session struct {
	ID    string
	store Store
	ttl   time.Duration
}

// New binds a session token to a store
func New(id string, store Store, ttl time.Duration) *Session {
	return &Session{ID: id, store: store, ttl: ttl}
}

func (s *Session) key(name string) string {
	return fmt.Sprintf("session:%s:%s", s.ID, name)
}

// Load decodes the named value into dest. It reports false when the
// value is absent.
func (s *Session) Load(ctx context.Context, name string, dest interface{}) (bool, error) {
	data, err := s.store.Get(ctx, s.key(name))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session value %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode session value %s: %w", name, err)
	}
	return true, nil
}

// Save stores value under name with the session TTL
func (s *Session) Save(ctx context.Context, name string, value interface{}) error {
	return s.SaveFor(ctx, name, value, s.ttl)
}

// SaveFor stores value under name with an explicit TTL
func (s *Session) SaveFor(ctx context.Context, name string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode session value %s: %w", name, err)
	}
	if err := s.store.Set(ctx, s.key(name), data, ttl); err != nil {
		return fmt.Errorf("failed to write session value %s: %w", name, err)
	}
	return nil
}

// Delete removes the named value
func (s *Session) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, s.key(name))
}

// Take decodes and removes the named value in one step, so that
// concurrent readers cannot both observe it.
func (s *Session) Take(ctx context.Context, name string, dest interface{}) (bool, error) {
	data, err := s.store.Take(ctx, s.key(name))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to take session value %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode session value %s: %w", name, err)
	}
	return true, nil
}
