package model

import "time"

// Consent records what the user has agreed to. AIDataUsage gates the
// assistant routes: without it no trip data is sent to the LLM provider.
type Consent struct {
	UserID      int64     `json:"user_id"`
	AIDataUsage bool      `json:"ai_data_usage"`
	Analytics   bool      `json:"analytics"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AIUsage is a per-user monthly counter of assistant calls.
type AIUsage struct {
	UserID    int64     `json:"user_id"`
	Month     string    `json:"month"` // "2006-01"
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}
