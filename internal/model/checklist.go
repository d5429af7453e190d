package model

import "time"

// ChecklistItem is a single row on a checklist: one inventory item with a
// quantity and a completed (packed) flag. The referenced item is embedded as
// a snapshot under the historical "items" key.
type ChecklistItem struct {
	ID          int64 `json:"id"`
	ChecklistID int64 `json:"checklist_id"`
	ItemID      int64 `json:"item_id"`
	Completed   bool  `json:"completed"`
	Quantity    int   `json:"quantity"`
	Item        Item  `json:"items"`
}

// Completion is the cached aggregate tuple kept per checklist so consumers
// never have to re-sum the rows. Weights are quantity-weighted pounds.
type Completion struct {
	Completed     int     `json:"completed"`
	Total         int     `json:"total"`
	CurrentWeight float64 `json:"currentWeight"`
	TotalWeight   float64 `json:"totalWeight"`
}

type Checklist struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	Items      []ChecklistItem `json:"items"`
	Completion Completion      `json:"completion"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
