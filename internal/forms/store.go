package forms

import "sync"

// Store is the narrow interface over the per-user session map. Keeping it an
// injectable collaborator lets the in-memory map be swapped for a durable
// keyed store without touching the state-machine logic.
//
// Keys are transport user identities (Telegram chat IDs, web user IDs). At
// most one session exists per key; Put replaces any prior entry.
type Store interface {
	// Get returns the session for key, or (nil, false).
	Get(key string) (*Session, bool)
	// Put stores (or replaces) the session for key.
	Put(key string, s *Session)
	// Delete removes the session for key; absent keys are a no-op.
	Delete(key string)
}

// MemoryStore is the process-local Store used in production. Access is
// mutex-guarded; in practice each key sees one writer at a time because the
// transports process one update per user sequentially.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Get implements Store.
func (m *MemoryStore) Get(key string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Put implements Store.
func (m *MemoryStore) Put(key string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = s
}

// Delete implements Store.
func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}
