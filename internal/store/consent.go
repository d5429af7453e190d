package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/calebquinn/packlist/internal/model"
)

type ConsentStore struct {
	db *sql.DB
}

func NewConsentStore(db *sql.DB) *ConsentStore {
	return &ConsentStore{db: db}
}

// Get returns the user's consent record. A user who has never answered gets
// an all-false record rather than nil.
func (s *ConsentStore) Get(userID int64) (*model.Consent, error) {
	var c model.Consent
	var aiDataUsage, analytics int
	err := s.db.QueryRow(
		`SELECT user_id, ai_data_usage, analytics, updated_at FROM user_consent WHERE user_id = ?`,
		userID,
	).Scan(&c.UserID, &aiDataUsage, &analytics, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return &model.Consent{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get consent: %w", err)
	}
	c.AIDataUsage = aiDataUsage != 0
	c.Analytics = analytics != 0
	return &c, nil
}

func (s *ConsentStore) Set(userID int64, aiDataUsage, analytics bool) (*model.Consent, error) {
	ai, an := 0, 0
	if aiDataUsage {
		ai = 1
	}
	if analytics {
		an = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO user_consent (user_id, ai_data_usage, analytics, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     ai_data_usage = excluded.ai_data_usage,
		     analytics = excluded.analytics,
		     updated_at = excluded.updated_at`,
		userID, ai, an, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("set consent: %w", err)
	}
	return s.Get(userID)
}
