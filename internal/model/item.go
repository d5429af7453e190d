package model

import "time"

type ItemCategory struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a piece of gear in a user's inventory. Weight is stored
// canonically in pounds.
type Item struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	Weight     float64   `json:"weight"`
	Notes      string    `json:"notes,omitempty"`
	CategoryID *int64    `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
