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
	"github.com/calebquinn/packlist/internal/weather"
	"github.com/calebquinn/packlist/internal/websocket"
)

type TripHandler struct {
	tripStore      *store.TripStore
	checklistStore *store.ChecklistStore
	weather        *weather.Service
	manager        *state.Manager
	hub            *websocket.Hub
	logger         *slog.Logger
}

func NewTripHandler(ts *store.TripStore, cs *store.ChecklistStore, ws *weather.Service, m *state.Manager, hub *websocket.Hub, logger *slog.Logger) *TripHandler {
	return &TripHandler{tripStore: ts, checklistStore: cs, weather: ws, manager: m, hub: hub, logger: logger}
}

func (h *TripHandler) getOwned(id, userID int64) (*model.Trip, error) {
	trip, err := h.tripStore.GetByID(id)
	if err != nil || trip == nil {
		return trip, err
	}
	if trip.UserID != userID {
		return nil, nil
	}
	return trip, nil
}

// refreshState reloads the user's trips into the state cache.
func (h *TripHandler) refreshState(userID int64) {
	trips, err := h.tripStore.ListByUser(userID)
	if err != nil {
		h.logger.Error("refresh trip state", "user_id", userID, "error", err)
		return
	}
	dispatch(h.manager, h.logger, userID, state.SetTrips{Trips: trips})
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	trips, err := h.tripStore.ListByUser(userID)
	if err != nil {
		h.logger.Error("list trips", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list trips")
		return
	}
	if trips == nil {
		trips = []model.Trip{}
	}

	dispatch(h.manager, h.logger, userID, state.SetTrips{Trips: trips})

	writeJSON(w, http.StatusOK, trips)
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req store.TripInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	trip, err := h.tripStore.Create(userID, req)
	if err != nil {
		h.logger.Error("create trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create trip")
		return
	}

	h.refreshState(userID)
	h.hub.Send(userID, websocket.NewMessage("trip", "created", trip.ID, nil))

	writeJSON(w, http.StatusCreated, trip)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	trip, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if trip == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	var req store.TripInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	trip, err := h.tripStore.Update(id, req)
	if err != nil {
		h.logger.Error("update trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update trip")
		return
	}

	dispatch(h.manager, h.logger, userID, state.UpdateTrip{Trip: *trip})
	h.hub.Send(userID, websocket.NewMessage("trip", "updated", id, nil))

	writeJSON(w, http.StatusOK, trip)
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	if err := h.tripStore.Delete(id); err != nil {
		h.logger.Error("delete trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete trip")
		return
	}

	dispatch(h.manager, h.logger, userID, state.RemoveTrip{ID: id})
	h.hub.Send(userID, websocket.NewMessage("trip", "deleted", id, nil))

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type linkChecklistRequest struct {
	ChecklistID int64 `json:"checklist_id"`
}

func (h *TripHandler) LinkChecklist(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	trip, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if trip == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	var req linkChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	cl, err := h.checklistStore.GetByID(req.ChecklistID)
	if err != nil {
		h.logger.Error("get checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check checklist")
		return
	}
	if cl == nil || cl.UserID != userID {
		writeError(w, http.StatusBadRequest, "checklist not found")
		return
	}

	if err := h.tripStore.LinkChecklist(id, req.ChecklistID); err != nil {
		h.logger.Error("link checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to link checklist")
		return
	}

	h.refreshState(userID)
	h.hub.Send(userID, websocket.NewMessage("trip", "checklist_linked", id, map[string]any{"checklist_id": req.ChecklistID}))

	writeJSON(w, http.StatusCreated, map[string]string{"status": "linked"})
}

func (h *TripHandler) UnlinkChecklist(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	trip, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if trip == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	var req linkChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.tripStore.UnlinkChecklist(id, req.ChecklistID); err != nil {
		h.logger.Error("unlink checklist", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to unlink checklist")
		return
	}

	h.refreshState(userID)
	h.hub.Send(userID, websocket.NewMessage("trip", "checklist_unlinked", id, map[string]any{"checklist_id": req.ChecklistID}))

	writeJSON(w, http.StatusOK, map[string]string{"status": "unlinked"})
}

func (h *TripHandler) Weather(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	trip, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if trip == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}
	if trip.Latitude == nil || trip.Longitude == nil {
		writeError(w, http.StatusBadRequest, "trip has no coordinates")
		return
	}

	fc, err := h.weather.Forecast(r.Context(), *trip.Latitude, *trip.Longitude, trip.StartDate, trip.EndDate)
	if err != nil {
		h.logger.Error("fetch forecast", "trip_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "weather unavailable")
		return
	}

	writeJSON(w, http.StatusOK, fc)
}

func (h *TripHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.tripStore.ListCategories()
	if err != nil {
		h.logger.Error("list trip categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list trip categories")
		return
	}
	if categories == nil {
		categories = []model.TripCategory{}
	}
	writeJSON(w, http.StatusOK, categories)
}

type participantRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (h *TripHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	trip, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if trip == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p, err := h.tripStore.AddParticipant(id, req.Name, req.Role)
	if err != nil {
		h.logger.Error("add participant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add participant")
		return
	}

	h.refreshState(userID)
	h.hub.Send(userID, websocket.NewMessage("trip", "participant_added", id, nil))

	writeJSON(w, http.StatusCreated, p)
}

func (h *TripHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	participantID, err := parseIDParam(r, "participantId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant id")
		return
	}

	trip, err := h.getOwned(id, userID)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if trip == nil {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	if err := h.tripStore.DeleteParticipant(participantID); err != nil {
		h.logger.Error("remove participant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove participant")
		return
	}

	h.refreshState(userID)
	h.hub.Send(userID, websocket.NewMessage("trip", "participant_removed", id, nil))

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
