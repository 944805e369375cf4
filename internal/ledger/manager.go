package ledger

import "sync"

// Manager owns the live per-user stores: one Store from first use after
// login until logout or account deletion. There are no ambient globals;
// the session context is the (userID, Store) pair held here.
type Manager struct {
	persist Persister
	maxDesc int

	mu     sync.Mutex
	stores map[uint]*Store
}

func NewManager(persist Persister, maxDesc int) *Manager {
	return &Manager{
		persist: persist,
		maxDesc: maxDesc,
		stores:  make(map[uint]*Store),
	}
}

// Acquire returns the live store for userID, loading it from the document
// store on first use in this session.
func (m *Manager) Acquire(userID uint) (*Store, error) {
	m.mu.Lock()
	if s, ok := m.stores[userID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s := NewStore(userID, m.persist, m.maxDesc)
	if err := s.Load(); err != nil {
		s.Close()
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.stores[userID]; ok {
		// lost the race against a parallel first request
		s.Close()
		return existing, nil
	}
	m.stores[userID] = s
	return s, nil
}

// Release tears the store down (flushes the pending write). Called at
// logout and at account deletion.
func (m *Manager) Release(userID uint) {
	m.mu.Lock()
	s, ok := m.stores[userID]
	delete(m.stores, userID)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Reload re-reads the stored document into the live store, if one exists.
// Used after a backup restore.
func (m *Manager) Reload(userID uint) error {
	m.mu.Lock()
	s, ok := m.stores[userID]
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return s.Load()
}
