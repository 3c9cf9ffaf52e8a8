package papers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tkrell/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// List handles GET /papers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	gradeLevel := r.URL.Query().Get("grade_level")
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	papers, err := h.store.List(subject, gradeLevel, year)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load past papers"})
		return
	}
	writeJSON(w, http.StatusOK, papers)
}

// Get handles GET /papers/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	paperID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid paper id"})
		return
	}

	paper, err := h.store.Get(paperID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load paper"})
		return
	}
	if paper == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Paper not found"})
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
