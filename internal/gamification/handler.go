package gamification

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tkrell/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// GetLeaderboard handles GET /leaderboard. Public: no auth required so
// the rankings page can render before sign-in.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	county := r.URL.Query().Get("county")
	school := r.URL.Query().Get("school")
	limit := intQueryParam(r, "limit", 50)

	entries, err := h.store.GetLeaderboard(county, school, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load leaderboard"})
		return
	}

	writeJSON(w, http.StatusOK, models.LeaderboardResponse{Entries: entries, County: county, School: school})
}

func intQueryParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
