package store

import (
	"strings"
	"sync"
	"time"

	"irisguide/pkg/domain"
)

// MemoryStore keeps accounts and faces in-process. Used by tests and
// single-node development runs without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account // key: account ID
	email    map[string]string         // normalized email -> account ID
	faces    map[string][]domain.Face  // owner ID -> faces in insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]domain.Account),
		email:    make(map[string]string),
		faces:    make(map[string][]domain.Face),
	}
}

func (m *MemoryStore) CreateAccount(a domain.Account) error {
	key := strings.ToLower(strings.TrimSpace(a.Email))
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.email[key]; exists {
		return ErrEmailTaken
	}
	a.Email = key
	a.Settings = a.Settings.Normalize()
	m.accounts[a.ID] = a
	m.email[key] = a.ID
	return nil
}

func (m *MemoryStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return domain.Account{}, false, nil
	}
	a, ok := m.accounts[id]
	return a, ok, nil
}

func (m *MemoryStore) GetAccountByID(id string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	return a, ok, nil
}

func (m *MemoryStore) UpdateSettings(id string, settings domain.Settings) (domain.Account, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.Account{}, false, nil
	}
	a.Settings = settings.Normalize()
	m.accounts[id] = a
	return a, true, nil
}

func (m *MemoryStore) UpdatePassword(id string, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Password = passwordHash
	m.accounts[id] = a
	return nil
}

func (m *MemoryStore) AccountCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts), nil
}

func (m *MemoryStore) SaveFace(f domain.Face) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.faces[f.UserID] {
		if existing.ID == f.ID {
			return nil
		}
	}
	m.faces[f.UserID] = append(m.faces[f.UserID], f)
	return nil
}

func (m *MemoryStore) ListFacesByUser(userID string) ([]domain.Face, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.faces[userID]
	res := make([]domain.Face, len(src))
	copy(res, src)
	return res, nil
}
