package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Persister is the durable snapshot backend. LoadState returns nil, nil when
// no snapshot exists for the user.
type Persister interface {
	SaveState(userID int64, data []byte) error
	LoadState(userID int64) ([]byte, error)
}

// Store owns one user's AppState. Every Dispatch runs the reducer and then
// writes a full snapshot in the background; stale writes are skipped so the
// latest state always wins. The reducer itself stays free of I/O.
type Store struct {
	userID    int64
	persister Persister
	logger    *slog.Logger

	mu    sync.Mutex
	state AppState
	gen   uint64

	saveMu    sync.Mutex
	lastSaved uint64
	wg        sync.WaitGroup
}

func NewStore(userID int64, p Persister, logger *slog.Logger) *Store {
	return &Store{userID: userID, persister: p, logger: logger}
}

// Hydrate loads the persisted snapshot and recomputes every derived field,
// never trusting aggregates stored in the blob. A missing snapshot yields a
// fresh state with IsNew set; an unreadable one is logged and discarded.
func (s *Store) Hydrate() error {
	data, err := s.persister.LoadState(s.userID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	var st AppState
	if data == nil {
		st.IsNew = true
	} else if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("discarding unreadable snapshot", "user_id", s.userID, "error", err)
		st = AppState{IsNew: true}
	}

	s.mu.Lock()
	s.state = Reheal(st)
	s.mu.Unlock()
	return nil
}

// Dispatch applies the action and schedules a snapshot save. The returned
// state is the post-action snapshot.
func (s *Store) Dispatch(a Action) AppState {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.gen++
	gen := s.gen
	snap := s.state
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.persist(gen, snap)
	}()
	return snap
}

// State returns the current snapshot.
func (s *Store) State() AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Flush blocks until all scheduled snapshot saves have finished.
func (s *Store) Flush() {
	s.wg.Wait()
}

func (s *Store) persist(gen uint64, snap AppState) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("marshal snapshot", "user_id", s.userID, "error", err)
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if gen <= s.lastSaved {
		// A newer snapshot already landed.
		return
	}
	if err := s.persister.SaveState(s.userID, data); err != nil {
		s.logger.Error("save snapshot", "user_id", s.userID, "error", err)
		return
	}
	s.lastSaved = gen
}
