package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebquinn/packlist/internal/auth"
	"github.com/calebquinn/packlist/internal/state"
	"github.com/calebquinn/packlist/internal/store"
	"github.com/calebquinn/packlist/internal/websocket"
)

type SettingsHandler struct {
	settingsStore *store.UserSettingsStore
	consentStore  *store.ConsentStore
	manager       *state.Manager
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.UserSettingsStore, cs *store.ConsentStore, m *state.Manager, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, consentStore: cs, manager: m, hub: hub, logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	settings, err := h.settingsStore.GetAll(userID)
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}

	dispatch(h.manager, h.logger, userID, state.SetUserSettings{Settings: settings})

	writeJSON(w, http.StatusOK, settings)
}

type settingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	if err := h.settingsStore.Set(userID, req.Key, req.Value); err != nil {
		h.logger.Error("set setting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save setting")
		return
	}

	dispatch(h.manager, h.logger, userID, state.UpdateUserSetting{Key: req.Key, Value: req.Value})
	h.hub.Send(userID, websocket.NewMessage("setting", "updated", 0, map[string]any{"key": req.Key}))

	writeJSON(w, http.StatusOK, map[string]string{req.Key: req.Value})
}

func (h *SettingsHandler) GetConsent(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	consent, err := h.consentStore.Get(userID)
	if err != nil {
		h.logger.Error("get consent", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get consent")
		return
	}

	writeJSON(w, http.StatusOK, consent)
}

type consentRequest struct {
	AIDataUsage bool `json:"ai_data_usage"`
	Analytics   bool `json:"analytics"`
}

func (h *SettingsHandler) UpdateConsent(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req consentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	consent, err := h.consentStore.Set(userID, req.AIDataUsage, req.Analytics)
	if err != nil {
		h.logger.Error("set consent", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save consent")
		return
	}

	h.hub.Send(userID, websocket.NewMessage("consent", "updated", 0, nil))

	writeJSON(w, http.StatusOK, consent)
}
