package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/calebquinn/packlist/internal/state"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// dispatch applies an action to the user's state store. Mutations have
// already hit the database; a dispatch failure only delays the cache, so it
// is logged and swallowed.
func dispatch(m *state.Manager, logger *slog.Logger, userID int64, a state.Action) {
	st, err := m.ForUser(userID)
	if err != nil {
		logger.Error("hydrate state store", "user_id", userID, "error", err)
		return
	}
	st.Dispatch(a)
}
