package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/calebquinn/packlist/internal/model"
)

type AIUsageStore struct {
	db *sql.DB
}

func NewAIUsageStore(db *sql.DB) *AIUsageStore {
	return &AIUsageStore{db: db}
}

// CurrentMonth returns the usage bucket key for now, "2006-01".
func CurrentMonth() string {
	return time.Now().UTC().Format("2006-01")
}

// Get returns the user's usage for the month; a missing row counts as zero.
func (s *AIUsageStore) Get(userID int64, month string) (*model.AIUsage, error) {
	var u model.AIUsage
	err := s.db.QueryRow(
		`SELECT user_id, month, count, updated_at FROM ai_usage WHERE user_id = ? AND month = ?`,
		userID, month,
	).Scan(&u.UserID, &u.Month, &u.Count, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return &model.AIUsage{UserID: userID, Month: month}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ai usage: %w", err)
	}
	return &u, nil
}

// Increment bumps the user's counter for the month and returns the new value.
func (s *AIUsageStore) Increment(userID int64, month string) (*model.AIUsage, error) {
	_, err := s.db.Exec(
		`INSERT INTO ai_usage (user_id, month, count, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(user_id, month) DO UPDATE SET count = count + 1, updated_at = excluded.updated_at`,
		userID, month, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("increment ai usage: %w", err)
	}
	return s.Get(userID, month)
}
