package state

import (
	"maps"
	"slices"

	"github.com/calebquinn/packlist/internal/model"
)

// Reduce applies an action to the state and returns the next state. It is
// pure and total: the input state is never mutated, and every declared action
// yields a fully consistent state. Unrecognized actions return the state
// unchanged.
func Reduce(s AppState, a Action) AppState {
	switch a := a.(type) {
	case SetItems:
		s.Items = slices.Clone(a.Items)
		s.NoItems = len(s.Items) == 0

	case SetCategories:
		s.ItemCategories = slices.Clone(a.Categories)

	case SetUserSettings:
		s.UserSettings = maps.Clone(a.Settings)
		if s.UserSettings == nil {
			s.UserSettings = map[string]string{}
		}

	case SetChecklists:
		// Hydration path: never trust caller-supplied aggregates.
		lists := make([]model.Checklist, len(a.Checklists))
		for i, cl := range a.Checklists {
			cl.Items = slices.Clone(cl.Items)
			cl.Completion = ComputeCompletion(cl.Items)
			lists[i] = cl
		}
		s.Checklists = lists
		s.NoChecklists = len(lists) == 0
		s.Trips = syncTrips(s.Trips, s.Checklists)

	case SetTrips:
		trips := make([]model.Trip, len(a.Trips))
		for i, t := range a.Trips {
			trips[i] = normalizeTrip(t)
		}
		s.Trips = syncTrips(trips, s.Checklists)
		s.NoTrips = len(trips) == 0

	case AddItem:
		s.Items = append(slices.Clone(s.Items), a.Item)
		s.NoItems = false

	case AddBulkItems:
		if len(a.Items) > 0 {
			s.Items = append(slices.Clone(s.Items), a.Items...)
			s.NoItems = false
		}

	case UpdateItem:
		s = reduceUpdateItem(s, a.Item)

	case DeleteItem:
		// No cascade into checklists: dangling rows are cleaned up
		// server-side and resolved here on the next SET_CHECKLISTS.
		s.Items = slices.DeleteFunc(slices.Clone(s.Items), func(it model.Item) bool {
			return it.ID == a.ID
		})
		s.NoItems = len(s.Items) == 0

	case CheckItemInChecklist:
		s = reduceCheck(s, a)

	case AddItemsToChecklist:
		s = reduceAddRows(s, a.Rows)

	case RemoveItemFromChecklist:
		s = reduceRemoveRow(s, a.ChecklistID, a.ItemID)

	case RemoveChecklist:
		s.Checklists = slices.DeleteFunc(slices.Clone(s.Checklists), func(cl model.Checklist) bool {
			return cl.ID == a.ID
		})
		s.NoChecklists = len(s.Checklists) == 0

	case RemoveTrip:
		s.Trips = slices.DeleteFunc(slices.Clone(s.Trips), func(t model.Trip) bool {
			return t.ID == a.ID
		})
		s.NoTrips = len(s.Trips) == 0

	case UpdateTrip:
		trips := slices.Clone(s.Trips)
		updated := normalizeTrip(a.Trip)
		for i := range trips {
			if trips[i].ID == updated.ID {
				trips[i] = updated
			}
		}
		s.Trips = trips

	case UpdateUserSetting:
		settings := maps.Clone(s.UserSettings)
		if settings == nil {
			settings = map[string]string{}
		}
		settings[a.Key] = a.Value
		s.UserSettings = settings
	}

	return s
}

// reduceUpdateItem replaces the inventory item and refreshes its embedded
// snapshot in every checklist row referencing it. Weights are re-derived for
// affected checklists; completed counts are untouched.
func reduceUpdateItem(s AppState, item model.Item) AppState {
	items := slices.Clone(s.Items)
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
		}
	}
	s.Items = items

	lists := slices.Clone(s.Checklists)
	for i := range lists {
		if !slices.ContainsFunc(lists[i].Items, func(r model.ChecklistItem) bool {
			return r.ItemID == item.ID
		}) {
			continue
		}
		rows := slices.Clone(lists[i].Items)
		for j := range rows {
			if rows[j].ItemID != item.ID {
				continue
			}
			rows[j].Item.Name = item.Name
			rows[j].Item.Weight = item.Weight
			rows[j].Item.Notes = item.Notes
			rows[j].Item.Quantity = item.Quantity
			rows[j].Item.CategoryID = item.CategoryID
		}
		lists[i].Items = rows
		comp := ComputeCompletion(rows)
		lists[i].Completion.TotalWeight = comp.TotalWeight
		lists[i].Completion.CurrentWeight = comp.CurrentWeight
	}
	s.Checklists = lists
	return s
}

// reduceCheck toggles one row and applies the edge delta to the checklist's
// aggregates and the owning trips' mirrors. Re-asserting the current state is
// a no-op, so repeated toggles are idempotent at the bit level.
func reduceCheck(s AppState, a CheckItemInChecklist) AppState {
	var completedDelta int
	lists := slices.Clone(s.Checklists)
	for i := range lists {
		if lists[i].ID != a.ChecklistID {
			continue
		}
		rows := slices.Clone(lists[i].Items)
		for j := range rows {
			if rows[j].ItemID != a.ItemID || rows[j].Completed == a.Checked {
				continue
			}
			q := rowQuantity(rows[j])
			w := rows[j].Item.Weight * float64(q)
			if a.Checked {
				lists[i].Completion.Completed += q
				lists[i].Completion.CurrentWeight += w
				completedDelta += q
			} else {
				lists[i].Completion.Completed -= q
				lists[i].Completion.CurrentWeight -= w
				completedDelta -= q
			}
			rows[j].Completed = a.Checked
		}
		lists[i].Items = rows
	}
	s.Checklists = lists
	s.Trips = applyTripDelta(s.Trips, a.ChecklistID, 0, completedDelta)
	return s
}

// reduceAddRows appends new (uncompleted) rows, grouped by checklist, adding
// the batch quantity and weight sums into total/totalWeight once per
// checklist. Trips mirror the total deltas.
func reduceAddRows(s AppState, newRows []model.ChecklistItem) AppState {
	if len(newRows) == 0 {
		return s
	}

	type batch struct {
		rows     []model.ChecklistItem
		quantity int
		weight   float64
	}
	batches := make(map[int64]*batch)
	for _, row := range newRows {
		row.Completed = false
		b := batches[row.ChecklistID]
		if b == nil {
			b = &batch{}
			batches[row.ChecklistID] = b
		}
		q := rowQuantity(row)
		b.rows = append(b.rows, row)
		b.quantity += q
		b.weight += row.Item.Weight * float64(q)
	}

	lists := slices.Clone(s.Checklists)
	for i := range lists {
		b, ok := batches[lists[i].ID]
		if !ok {
			continue
		}
		lists[i].Items = append(slices.Clone(lists[i].Items), b.rows...)
		lists[i].Completion.Total += b.quantity
		lists[i].Completion.TotalWeight += b.weight
	}
	s.Checklists = lists

	trips := s.Trips
	for checklistID, b := range batches {
		trips = applyTripDelta(trips, checklistID, b.quantity, 0)
	}
	s.Trips = trips
	return s
}

// reduceRemoveRow drops one row, subtracting its quantity and weight from the
// totals and, when the row was completed, from the completed side as well.
func reduceRemoveRow(s AppState, checklistID, itemID int64) AppState {
	var totalDelta, completedDelta int
	lists := slices.Clone(s.Checklists)
	for i := range lists {
		if lists[i].ID != checklistID {
			continue
		}
		idx := slices.IndexFunc(lists[i].Items, func(r model.ChecklistItem) bool {
			return r.ItemID == itemID
		})
		if idx < 0 {
			continue
		}
		row := lists[i].Items[idx]
		q := rowQuantity(row)
		w := row.Item.Weight * float64(q)

		rows := slices.Clone(lists[i].Items)
		rows = slices.Delete(rows, idx, idx+1)
		lists[i].Items = rows

		lists[i].Completion.Total -= q
		lists[i].Completion.TotalWeight -= w
		totalDelta -= q
		if row.Completed {
			lists[i].Completion.Completed -= q
			lists[i].Completion.CurrentWeight -= w
			completedDelta -= q
		}
	}
	s.Checklists = lists
	s.Trips = applyTripDelta(s.Trips, checklistID, totalDelta, completedDelta)
	return s
}
