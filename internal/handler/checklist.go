package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebquinn/packlist/internal/auth"
	"github.com/calebquinn/packlist/internal/model"
	"github.com/calebquinn/packlist/internal/state"
	"github.com/calebquinn/packlist/internal/store"
	"github.com/calebquinn/packlist/internal/websocket"
)

type ChecklistHandler struct {
	checklistStore *store.ChecklistStore
	itemStore      *store.ItemStore
	manager        *state.Manager
	hub            *websocket.Hub
	logger         *slog.Logger
}

func NewChecklistHandler(cs *store.ChecklistStore, is *store.ItemStore, m *state.Manager, hub *websocket.Hub, logger *slog.Logger) *ChecklistHandler {
	return &ChecklistHandler{checklistStore: cs, itemStore: is, manager: m, hub: hub, logger: logger}
}

// loadUserChecklists reads the user's checklists and derives their completion
// aggregates from the rows. Stored aggregates are never trusted.
func (h *ChecklistHandler) loadUserChecklists(userID int64) ([]model.Checklist, error) {
	lists, err := h.checklistStore.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		lists[i].Completion = state.ComputeCompletion(lists[i].Items)
	}
	return lists, nil
}

// getOwned returns the checklist with rows and derived completion, or nil
// when missing or owned by someone else.
func (h *ChecklistHandler) getOwned(id, userID int64) (*model.Checklist, error) {
	cl, err := h.checklistStore.GetByID(id)
	if err != nil || cl == nil {
		return cl, err
	}
	if cl.UserID != userID {
		return nil, nil
	}
	rows, err := h.checklistStore.ListRows(id)
	if err != nil {
		return nil, err
	}
	cl.Items = rows
	cl.Completion = state.ComputeCompletion(rows)
	return cl, nil
}

// refreshState reloads the user's checklists into the state cache.
func (h *ChecklistHandler) refreshState(userID int64) {
	lists, err := h.loadUserChecklists(userID)
	if err != nil {
		h.logger.Error("refresh checklist state", "user_id", userID, "error", err)
		return
	}
	dispatch(h.manager, h.logger, userID, state.SetChecklists{Checklists: lists})
}

func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	lists, err := h.loadUserChecklists(userID)
	if err != nil {
		h.logger.Error("list checklists", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list checklists")
		return
	}
	if lists == nil {
		lists = []model.Checklist{}
	}

	dispatch(h.manager, h.logger, userID, state.SetChecklists{Checklists: lists})

	writeJSON(w, http.StatusOK, lists)
}

type checklistRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req checklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	cl, err := h.checklistStore.Create(userID, req.Title, req.Category)
	if err != nil {
		h.logger.Error("create checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create checklist")
		return
	}
	cl.Items = []model.ChecklistItem{}

	h.refreshState(userID)
	h.hub.Send(userID, websocket.NewMessage("checklist", "created", cl.ID, nil))

	writeJSON(w, http.StatusCreated, cl)
}

func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	cl, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get checklist")
		return
	}
	if cl == nil {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}

	writeJSON(w, http.StatusOK, cl)
}

func (h *ChecklistHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get checklist")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}

	var req checklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	cl, err := h.checklistStore.Update(id, req.Title, req.Category)
	if err != nil {
		h.logger.Error("update checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update checklist")
		return
	}

	h.refreshState(userID)
	h.hub.Send(userID, websocket.NewMessage("checklist", "updated", id, nil))

	writeJSON(w, http.StatusOK, cl)
}

func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get checklist")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}

	if err := h.checklistStore.Delete(id); err != nil {
		h.logger.Error("delete checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete checklist")
		return
	}

	dispatch(h.manager, h.logger, userID, state.RemoveChecklist{ID: id})
	h.hub.Send(userID, websocket.NewMessage("checklist", "deleted", id, nil))

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type addRowsRequest struct {
	Items []store.NewRow `json:"items"`
}

func (h *ChecklistHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get checklist")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}

	var req addRowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items are required")
		return
	}
	for _, row := range req.Items {
		item, err := h.itemStore.GetByID(row.ItemID)
		if err != nil {
			h.logger.Error("check item", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to check item")
			return
		}
		if item == nil || item.UserID != userID {
			writeError(w, http.StatusBadRequest, "item not found")
			return
		}
	}

	rows, err := h.checklistStore.AddRows(id, req.Items)
	if err != nil {
		h.logger.Error("add checklist rows", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add items")
		return
	}

	dispatch(h.manager, h.logger, userID, state.AddItemsToChecklist{Rows: rows})
	h.hub.Send(userID, websocket.NewMessage("checklist", "items_added", id, map[string]any{"count": len(rows)}))

	writeJSON(w, http.StatusCreated, rows)
}

type toggleRequest struct {
	Completed bool `json:"completed"`
}

func (h *ChecklistHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	itemID, err := parseIDParam(r, "itemId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	existing, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get checklist")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	row, err := h.checklistStore.SetCompleted(id, itemID, req.Completed)
	if err != nil {
		h.logger.Error("toggle checklist row", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if row == nil {
		writeError(w, http.StatusNotFound, "item not on checklist")
		return
	}

	dispatch(h.manager, h.logger, userID, state.CheckItemInChecklist{
		ChecklistID: id,
		ItemID:      itemID,
		Checked:     req.Completed,
	})
	h.hub.Send(userID, websocket.NewMessage("checklist", "item_toggled", id, map[string]any{
		"item_id":   itemID,
		"completed": req.Completed,
	}))

	writeJSON(w, http.StatusOK, row)
}

func (h *ChecklistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	itemID, err := parseIDParam(r, "itemId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	existing, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get checklist")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}

	removed, err := h.checklistStore.RemoveRow(id, itemID)
	if err != nil {
		h.logger.Error("remove checklist row", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}
	if removed == nil {
		writeError(w, http.StatusNotFound, "item not on checklist")
		return
	}

	dispatch(h.manager, h.logger, userID, state.RemoveItemFromChecklist{
		ChecklistID: id,
		ItemID:      itemID,
	})
	h.hub.Send(userID, websocket.NewMessage("checklist", "item_removed", id, map[string]any{"item_id": itemID}))

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

type bulkRemoveRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

func (h *ChecklistHandler) BulkRemove(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get checklist")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "checklist not found")
		return
	}

	var req bulkRemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.ItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, "item_ids are required")
		return
	}

	removed, err := h.checklistStore.RemoveRows(id, req.ItemIDs)
	if err != nil {
		h.logger.Error("bulk remove checklist rows", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove items")
		return
	}

	for _, itemID := range req.ItemIDs {
		dispatch(h.manager, h.logger, userID, state.RemoveItemFromChecklist{
			ChecklistID: id,
			ItemID:      itemID,
		})
	}
	h.hub.Send(userID, websocket.NewMessage("checklist", "items_removed", id, map[string]any{"count": removed}))

	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}
