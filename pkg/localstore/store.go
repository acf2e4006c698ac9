// Package localstore is the companion's persistent settings store: a typed
// key/value cache in front of durable storage. Values are JSON encoded.
// Unreadable entries fall back to the caller's default.
package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Keys used by the companion.
const (
	KeyRegisteredUser     = "registeredUser"
	KeyRegisteredGuide    = "registeredGuide"
	KeyUserAuthToken      = "userAuthToken"
	KeyGuideAuthToken     = "guideAuthToken"
	KeyUserProfileName    = "userProfileName"
	KeyUserProfileEmail   = "userProfileEmail"
	KeyDeviceConnected    = "isDeviceConnected"
	KeyAppSettings        = "userAppSettings"
	KeyAccessibilityPrefs = "accessibilityPrefs"
	KeySessionAccountID   = "sessionAccountId"
)

// Store caches decoded values in memory and writes through to a Backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
	cache   map[string]json.RawMessage
	logger  *slog.Logger
}

// New wraps backend. A nil logger uses slog.Default().
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, cache: make(map[string]json.RawMessage), logger: logger}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// raw returns the cached encoding of key, reading the backend on first access.
func (s *Store) raw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache[key]; ok {
		return v, v != nil
	}
	data, ok, err := s.backend.Load(key)
	if err != nil {
		s.logger.Debug("local store read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		s.cache[key] = nil
		return nil, false
	}
	s.cache[key] = data
	return data, true
}

func (s *Store) put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = data
	if err := s.backend.Save(key, data); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// Remove deletes key from memory and storage.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = nil
	return s.backend.Delete(key)
}

// Get returns the value stored under key, or def when the key is absent or
// its stored form cannot be decoded into T.
func Get[T any](s *Store, key string, def T) T {
	data, ok := s.raw(key)
	if !ok {
		return def
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Debug("local store value unreadable, using default", "key", key, "error", err)
		return def
	}
	return v
}

// Set updates the in-memory value and writes it through. The in-memory value
// is updated even when the write fails; the error is returned for reporting.
func Set[T any](s *Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.put(key, data)
}

// Value binds a key and default so screens can share one typed accessor.
type Value[T any] struct {
	store *Store
	key   string
	def   T
}

// Bind returns a Value for key with default def.
func Bind[T any](s *Store, key string, def T) Value[T] {
	return Value[T]{store: s, key: key, def: def}
}

func (v Value[T]) Get() T        { return Get(v.store, v.key, v.def) }
func (v Value[T]) Set(x T) error { return Set(v.store, v.key, x) }
func (v Value[T]) Key() string   { return v.key }
