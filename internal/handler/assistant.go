package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/calebquinn/packlist/internal/assistant"
	"github.com/calebquinn/packlist/internal/auth"
	"github.com/calebquinn/packlist/internal/state"
	"github.com/calebquinn/packlist/internal/store"
	"github.com/calebquinn/packlist/internal/weather"
	"github.com/calebquinn/packlist/internal/websocket"
)

type AssistantHandler struct {
	assistant      *assistant.Service
	weather        *weather.Service
	tripStore      *store.TripStore
	checklistStore *store.ChecklistStore
	itemStore      *store.ItemStore
	consentStore   *store.ConsentStore
	usageStore     *store.AIUsageStore
	monthlyCap     int
	manager        *state.Manager
	hub            *websocket.Hub
	logger         *slog.Logger
}

func NewAssistantHandler(
	svc *assistant.Service,
	ws *weather.Service,
	ts *store.TripStore,
	cs *store.ChecklistStore,
	is *store.ItemStore,
	cons *store.ConsentStore,
	usage *store.AIUsageStore,
	monthlyCap int,
	m *state.Manager,
	hub *websocket.Hub,
	logger *slog.Logger,
) *AssistantHandler {
	return &AssistantHandler{
		assistant:      svc,
		weather:        ws,
		tripStore:      ts,
		checklistStore: cs,
		itemStore:      is,
		consentStore:   cons,
		usageStore:     usage,
		monthlyCap:     monthlyCap,
		manager:        m,
		hub:            hub,
		logger:         logger,
	}
}

type recommendRequest struct {
	TripID int64 `json:"trip_id"`
}

func (h *AssistantHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if !h.assistant.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}

	consent, err := h.consentStore.Get(userID)
	if err != nil {
		h.logger.Error("get consent", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check consent")
		return
	}
	if !consent.AIDataUsage {
		writeError(w, http.StatusForbidden, "AI data usage consent required")
		return
	}

	month := store.CurrentMonth()
	usage, err := h.usageStore.Get(userID, month)
	if err != nil {
		h.logger.Error("get ai usage", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check usage")
		return
	}
	if usage != nil && usage.Count >= h.monthlyCap {
		writeError(w, http.StatusTooManyRequests, "monthly AI usage limit reached")
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	trip, err := h.tripStore.GetByID(req.TripID)
	if err != nil {
		h.logger.Error("get trip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get trip")
		return
	}
	if trip == nil || trip.UserID != userID {
		writeError(w, http.StatusNotFound, "trip not found")
		return
	}

	recReq := assistant.RecommendRequest{
		TripName:  trip.Title,
		Location:  trip.Location,
		StartDate: trip.StartDate,
		EndDate:   trip.EndDate,
	}

	categories, err := h.itemStore.ListCategories(userID)
	if err == nil {
		for _, c := range categories {
			recReq.Categories = append(recReq.Categories, c.Name)
		}
	}

	items, err := h.itemStore.ListByUser(userID)
	if err == nil {
		for _, it := range items {
			recReq.Inventory = append(recReq.Inventory, it.Name)
		}
	}

	for _, link := range trip.TripChecklists {
		rows, err := h.checklistStore.ListRows(link.ChecklistID)
		if err != nil {
			continue
		}
		for _, row := range rows {
			recReq.PackedItems = append(recReq.PackedItems, row.Item.Name)
		}
	}

	// Forecast context is best effort; the recommendation works without it.
	if trip.Latitude != nil && trip.Longitude != nil {
		fc, err := h.weather.Forecast(r.Context(), *trip.Latitude, *trip.Longitude, trip.StartDate, trip.EndDate)
		if err == nil && len(fc.Days) > 0 {
			first := fc.Days[0]
			recReq.WeatherSummary = fmt.Sprintf("around %.0f-%.0f°%s, %s",
				first.LowTemp, first.HighTemp, fc.Unit, first.Description)
		}
	}

	rec, err := h.assistant.Recommend(r.Context(), recReq)
	if err != nil {
		h.logger.Error("generate recommendation", "trip_id", trip.ID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate recommendation")
		return
	}

	if err := h.tripStore.SetRecommendation(trip.ID, rec.Markdown); err != nil {
		h.logger.Error("store recommendation", "trip_id", trip.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store recommendation")
		return
	}

	updated, err := h.usageStore.Increment(userID, month)
	if err != nil {
		h.logger.Error("increment ai usage", "error", err)
	}

	if fresh, err := h.tripStore.GetByID(trip.ID); err == nil && fresh != nil {
		dispatch(h.manager, h.logger, userID, state.UpdateTrip{Trip: *fresh})
	}
	h.hub.Send(userID, websocket.NewMessage("trip", "recommendation", trip.ID, nil))

	resp := map[string]any{"recommendation": rec}
	if updated != nil {
		resp["usage"] = map[string]any{
			"month": updated.Month,
			"count": updated.Count,
			"limit": h.monthlyCap,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Usage returns the current month's AI request count and the cap.
func (h *AssistantHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	month := store.CurrentMonth()
	usage, err := h.usageStore.Get(userID, month)
	if err != nil {
		h.logger.Error("get ai usage", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get usage")
		return
	}

	count := 0
	if usage != nil {
		count = usage.Count
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month,
		"count": count,
		"limit": h.monthlyCap,
	})
}
