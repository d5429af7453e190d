package state

import (
	"log/slog"
	"sync"
)

// Manager hands out one Store per user, hydrating lazily on first use.
type Manager struct {
	persister Persister
	logger    *slog.Logger

	mu     sync.Mutex
	stores map[int64]*Store
}

func NewManager(p Persister, logger *slog.Logger) *Manager {
	return &Manager{
		persister: p,
		logger:    logger,
		stores:    make(map[int64]*Store),
	}
}

// ForUser returns the user's store, creating and hydrating it if needed.
func (m *Manager) ForUser(userID int64) (*Store, error) {
	m.mu.Lock()
	st, ok := m.stores[userID]
	m.mu.Unlock()
	if ok {
		return st, nil
	}

	st = NewStore(userID, m.persister, m.logger.With("user_id", userID))
	if err := st.Hydrate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have hydrated concurrently; keep the first.
	if existing, ok := m.stores[userID]; ok {
		return existing, nil
	}
	m.stores[userID] = st
	return st, nil
}

// Drop evicts a user's store, e.g. on signout. Pending saves still finish.
func (m *Manager) Drop(userID int64) {
	m.mu.Lock()
	st, ok := m.stores[userID]
	delete(m.stores, userID)
	m.mu.Unlock()
	if ok {
		go st.Flush()
	}
}

// Flush waits for every store's pending snapshot saves. Used on shutdown.
func (m *Manager) Flush() {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, st := range m.stores {
		stores = append(stores, st)
	}
	m.mu.Unlock()

	for _, st := range stores {
		st.Flush()
	}
}
