package model

import (
	"encoding/json"
	"time"
)

// ChecklistRef is the slim checklist row embedded in a trip-checklist link.
type ChecklistRef struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// ChecklistRefs normalizes the "checklists" field of a trip-checklist link,
// which upstream payloads deliver sometimes as a single object and sometimes
// as a one-element array. In memory it is always an array.
type ChecklistRefs []ChecklistRef

func (c *ChecklistRefs) UnmarshalJSON(data []byte) error {
	var list []ChecklistRef
	if err := json.Unmarshal(data, &list); err == nil {
		*c = list
		return nil
	}
	var one ChecklistRef
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*c = ChecklistRefs{one}
	return nil
}

// TripChecklist links a checklist to a trip and carries a denormalized copy
// of that checklist's completion counts.
type TripChecklist struct {
	ChecklistID    int64         `json:"checklist_id"`
	Checklists     ChecklistRefs `json:"checklists"`
	TotalItems     int           `json:"totalItems"`
	CompletedItems int           `json:"completedItems"`
}

type TripParticipant struct {
	ID        int64     `json:"id"`
	TripID    int64     `json:"trip_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type TripCategory struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type Trip struct {
	ID               int64             `json:"id"`
	UserID           int64             `json:"user_id"`
	Title            string            `json:"title"`
	Location         string            `json:"location"`
	Latitude         *float64          `json:"latitude"`
	Longitude        *float64          `json:"longitude"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	Notes            string            `json:"notes"`
	CategoryID       *int64            `json:"category_id"`
	TripChecklists   []TripChecklist   `json:"trip_checklists"`
	Participants     []TripParticipant `json:"participants,omitempty"`
	AIRecommendation string            `json:"ai_recommendation"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
