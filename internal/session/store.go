package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned for lookups of unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Store is the session registry. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(id string) (*Session, error)
	Put(s *Session)
	Delete(id string)
	Len() int
}

// MemoryStore keeps sessions in a map. Sessions live for the process
// lifetime; there is no eviction.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Manager resolves session IDs to sessions, minting new ones on demand.
type Manager struct {
	store  Store
	logger *zap.Logger

	mu sync.Mutex
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, logger: logger}
}

// GetOrCreate returns the session for id, creating it when missing. An
// empty id always mints a new session.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, err := m.store.Get(id); err == nil {
			return s
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	s := NewSession(id)
	m.store.Put(s)
	m.logger.Debug("session created", zap.String("session_id", id))
	return s
}

// Get returns an existing session only.
func (m *Manager) Get(id string) (*Session, error) {
	return m.store.Get(id)
}
