package store

import (
	"database/sql"
	"fmt"
	"time"
)

// AppStateStore persists each user's full AppState snapshot as a single blob
// row, last write wins. It satisfies the state.Persister interface.
type AppStateStore struct {
	db *sql.DB
}

func NewAppStateStore(db *sql.DB) *AppStateStore {
	return &AppStateStore{db: db}
}

func (s *AppStateStore) SaveState(userID int64, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (user_id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		userID, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save app state: %w", err)
	}
	return nil
}

// LoadState returns nil, nil when the user has no snapshot yet.
func (s *AppStateStore) LoadState(userID int64) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT state FROM app_state WHERE user_id = ?`, userID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load app state: %w", err)
	}
	return data, nil
}
