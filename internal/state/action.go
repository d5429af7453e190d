package state

import "github.com/calebquinn/packlist/internal/model"

// Action is the closed set of state transitions understood by Reduce.
// Anything else passed to Reduce is a silent no-op.
type Action interface {
	actionName() string
}

// SetItems replaces the inventory wholesale (hydration/refetch path).
type SetItems struct {
	Items []model.Item
}

// SetTrips replaces all trips wholesale, normalizing embedded checklist refs.
type SetTrips struct {
	Trips []model.Trip
}

// SetChecklists replaces all checklists wholesale. Completion aggregates in
// the payload are ignored and recomputed from the rows.
type SetChecklists struct {
	Checklists []model.Checklist
}

// SetCategories replaces the item category list.
type SetCategories struct {
	Categories []model.ItemCategory
}

// SetUserSettings replaces the settings map wholesale.
type SetUserSettings struct {
	Settings map[string]string
}

// AddItem appends one item to the inventory.
type AddItem struct {
	Item model.Item
}

// AddBulkItems appends a batch of items to the inventory.
type AddBulkItems struct {
	Items []model.Item
}

// UpdateItem replaces an inventory item and refreshes its snapshot in every
// checklist row that references it, re-deriving that checklist's weights.
type UpdateItem struct {
	Item model.Item
}

// DeleteItem removes an item from the inventory. Checklist rows referencing
// it are left alone; the server is the cleanup path.
type DeleteItem struct {
	ID int64
}

// CheckItemInChecklist toggles one row's completed flag and adjusts the
// owning checklist's aggregates by the edge delta.
type CheckItemInChecklist struct {
	ChecklistID int64
	ItemID      int64
	Checked     bool
}

// AddItemsToChecklist appends new rows, possibly spanning several checklists.
// New rows start uncompleted.
type AddItemsToChecklist struct {
	Rows []model.ChecklistItem
}

// RemoveItemFromChecklist removes the row for the given item from a checklist.
type RemoveItemFromChecklist struct {
	ChecklistID int64
	ItemID      int64
}

// RemoveChecklist drops a checklist by id.
type RemoveChecklist struct {
	ID int64
}

// RemoveTrip drops a trip by id.
type RemoveTrip struct {
	ID int64
}

// UpdateTrip replaces a trip after normalizing its checklist refs.
type UpdateTrip struct {
	Trip model.Trip
}

// UpdateUserSetting merges a single key into the settings map.
type UpdateUserSetting struct {
	Key   string
	Value string
}

func (SetItems) actionName() string                { return "SET_ITEMS" }
func (SetTrips) actionName() string                { return "SET_TRIPS" }
func (SetChecklists) actionName() string           { return "SET_CHECKLISTS" }
func (SetCategories) actionName() string           { return "SET_CATEGORIES" }
func (SetUserSettings) actionName() string         { return "SET_USER_SETTINGS" }
func (AddItem) actionName() string                 { return "ADD_ITEM" }
func (AddBulkItems) actionName() string            { return "ADD_BULK_ITEMS" }
func (UpdateItem) actionName() string              { return "UPDATE_ITEM" }
func (DeleteItem) actionName() string              { return "DELETE_ITEM" }
func (CheckItemInChecklist) actionName() string    { return "CHECK_ITEM_IN_CHECKLIST" }
func (AddItemsToChecklist) actionName() string     { return "ADD_ITEM_TO_CHECKLIST" }
func (RemoveItemFromChecklist) actionName() string { return "REMOVE_ITEM_FROM_CHECKLIST" }
func (RemoveChecklist) actionName() string         { return "REMOVE_CHECKLIST" }
func (RemoveTrip) actionName() string              { return "REMOVE_TRIP" }
func (UpdateTrip) actionName() string              { return "UPDATE_TRIP" }
func (UpdateUserSetting) actionName() string       { return "UPDATE_USER_SETTING" }
