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

type ItemHandler struct {
	itemStore *store.ItemStore
	manager   *state.Manager
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewItemHandler(is *store.ItemStore, m *state.Manager, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{itemStore: is, manager: m, hub: hub, logger: logger}
}

type itemRequest struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Weight     float64 `json:"weight"`
	Notes      string  `json:"notes"`
	CategoryID *int64  `json:"category_id"`
}

// List returns the user's inventory along with the category list, and
// refreshes the state cache from what was read.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	items, err := h.itemStore.ListByUser(userID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	categories, err := h.itemStore.ListCategories(userID)
	if err != nil {
		h.logger.Error("list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	if categories == nil {
		categories = []model.ItemCategory{}
	}

	dispatch(h.manager, h.logger, userID, state.SetItems{Items: items})
	dispatch(h.manager, h.logger, userID, state.SetCategories{Categories: categories})

	writeJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"categories": categories,
	})
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	item, err := h.itemStore.Create(userID, req.Name, req.Quantity, req.Weight, req.Notes, req.CategoryID)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	dispatch(h.manager, h.logger, userID, state.AddItem{Item: *item})
	h.hub.Send(userID, websocket.NewMessage("item", "created", item.ID, nil))

	writeJSON(w, http.StatusCreated, item)
}

type bulkItemsRequest struct {
	Items []itemRequest `json:"items"`
}

func (h *ItemHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req bulkItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items are required")
		return
	}

	inputs := make([]model.Item, 0, len(req.Items))
	for _, in := range req.Items {
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			writeError(w, http.StatusBadRequest, "every item needs a name")
			return
		}
		if in.Quantity <= 0 {
			in.Quantity = 1
		}
		inputs = append(inputs, model.Item{
			Name:       in.Name,
			Quantity:   in.Quantity,
			Weight:     in.Weight,
			Notes:      in.Notes,
			CategoryID: in.CategoryID,
		})
	}

	created, err := h.itemStore.CreateBulk(userID, inputs)
	if err != nil {
		h.logger.Error("bulk create items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create items")
		return
	}

	dispatch(h.manager, h.logger, userID, state.AddBulkItems{Items: created})
	h.hub.Send(userID, websocket.NewMessage("item", "bulk_created", 0, map[string]any{"count": len(created)}))

	writeJSON(w, http.StatusCreated, created)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.itemStore.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil || existing.UserID != userID {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	item, err := h.itemStore.Update(id, req.Name, req.Quantity, req.Weight, req.Notes, req.CategoryID)
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	dispatch(h.manager, h.logger, userID, state.UpdateItem{Item: *item})
	h.hub.Send(userID, websocket.NewMessage("item", "updated", item.ID, nil))

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.itemStore.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil || existing.UserID != userID {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.itemStore.Delete(id); err != nil {
		h.logger.Error("delete item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	dispatch(h.manager, h.logger, userID, state.DeleteItem{ID: id})
	h.hub.Send(userID, websocket.NewMessage("item", "deleted", id, nil))

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
