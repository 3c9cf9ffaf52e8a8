package tutor

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/tkrell/backend/internal/generator"
	"github.com/tkrell/backend/internal/models"
)

type Handler struct {
	store *Store
	gen   *generator.Generator
}

func NewHandler(store *Store, gen *generator.Generator) *Handler {
	return &Handler{store: store, gen: gen}
}

// Ask handles POST /tutor. The reply is persisted alongside the
// question so the history survives reloads.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	var req models.TutorMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Message is required"})
		return
	}
	if len(req.Message) > 2000 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Message is too long"})
		return
	}

	response, err := h.gen.TutorReply(r.Context(), req.Message)
	if err != nil {
		log.Printf("[tutor] reply failed for user %d: %v", userID, err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Mr. T is unavailable right now, please try again"})
		return
	}

	if _, err := h.store.Save(userID, req.Message, response); err != nil {
		// The student still gets their answer; only the history entry
		// is lost.
		log.Printf("[tutor] failed to save chat for user %d: %v", userID, err)
	}

	writeJSON(w, http.StatusOK, models.TutorMessageResponse{Response: response})
}

// History handles GET /tutor/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	chats, err := h.store.History(userID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load tutor history"})
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
