package state

import (
	"github.com/calebquinn/packlist/internal/model"
)

// AppState is the per-user aggregate tree: normalized inventory plus
// denormalized checklists and trips with cached completion aggregates.
// It is only ever replaced through Reduce, never mutated in place.
type AppState struct {
	Trips          []model.Trip         `json:"trips"`
	Checklists     []model.Checklist    `json:"checklists"`
	Items          []model.Item         `json:"items"`
	ItemCategories []model.ItemCategory `json:"item_categories"`
	UserSettings   map[string]string    `json:"user_settings"`
	NoTrips        bool                 `json:"noTrips"`
	NoChecklists   bool                 `json:"noChecklists"`
	NoItems        bool                 `json:"noItems"`
	IsNew          bool                 `json:"isNew"`
}

// ComputeCompletion re-sums a checklist's aggregates from its rows. Rows are
// quantity-weighted: a row with quantity 3 counts as 3 toward total and, when
// completed, 3 toward completed. Rows with a non-positive quantity count as 1.
func ComputeCompletion(rows []model.ChecklistItem) model.Completion {
	var c model.Completion
	for _, row := range rows {
		q := rowQuantity(row)
		w := row.Item.Weight * float64(q)
		c.Total += q
		c.TotalWeight += w
		if row.Completed {
			c.Completed += q
			c.CurrentWeight += w
		}
	}
	return c
}

// Reheal recomputes every derived field from the underlying rows: checklist
// completion aggregates, trip-checklist mirrors, and the empty-collection
// flags. Used on hydration so a stale or corrupted snapshot self-heals.
func Reheal(s AppState) AppState {
	lists := make([]model.Checklist, len(s.Checklists))
	for i, cl := range s.Checklists {
		cl.Completion = ComputeCompletion(cl.Items)
		lists[i] = cl
	}
	s.Checklists = lists
	s.Trips = syncTrips(s.Trips, s.Checklists)
	s.NoTrips = len(s.Trips) == 0
	s.NoChecklists = len(s.Checklists) == 0
	s.NoItems = len(s.Items) == 0
	return s
}

func rowQuantity(row model.ChecklistItem) int {
	if row.Quantity > 0 {
		return row.Quantity
	}
	return 1
}

// syncTrips rewrites every trip-checklist link's denormalized counts from the
// referenced checklist. Links to unknown checklists keep their stored counts.
func syncTrips(trips []model.Trip, checklists []model.Checklist) []model.Trip {
	if len(trips) == 0 {
		return trips
	}
	byID := make(map[int64]model.Completion, len(checklists))
	for _, cl := range checklists {
		byID[cl.ID] = cl.Completion
	}

	out := make([]model.Trip, len(trips))
	for i, t := range trips {
		links := make([]model.TripChecklist, len(t.TripChecklists))
		for j, link := range t.TripChecklists {
			if comp, ok := byID[link.ChecklistID]; ok {
				link.TotalItems = comp.Total
				link.CompletedItems = comp.Completed
			}
			links[j] = link
		}
		t.TripChecklists = links
		out[i] = t
	}
	return out
}

// applyTripDelta adjusts the denormalized counters on every link pointing at
// the given checklist.
func applyTripDelta(trips []model.Trip, checklistID int64, totalDelta, completedDelta int) []model.Trip {
	if len(trips) == 0 || (totalDelta == 0 && completedDelta == 0) {
		return trips
	}
	out := make([]model.Trip, len(trips))
	for i, t := range trips {
		touched := false
		for _, link := range t.TripChecklists {
			if link.ChecklistID == checklistID {
				touched = true
				break
			}
		}
		if touched {
			links := make([]model.TripChecklist, len(t.TripChecklists))
			for j, link := range t.TripChecklists {
				if link.ChecklistID == checklistID {
					link.TotalItems += totalDelta
					link.CompletedItems += completedDelta
				}
				links[j] = link
			}
			t.TripChecklists = links
		}
		out[i] = t
	}
	return out
}

// normalizeTrip ensures every embedded checklist ref is a non-nil array.
// Upstream payloads sometimes carry a bare object there; the custom
// unmarshaler in model handles the JSON side, this covers in-process callers.
func normalizeTrip(t model.Trip) model.Trip {
	links := make([]model.TripChecklist, len(t.TripChecklists))
	for i, link := range t.TripChecklists {
		if link.Checklists == nil {
			link.Checklists = model.ChecklistRefs{}
		}
		links[i] = link
	}
	t.TripChecklists = links
	return t
}
