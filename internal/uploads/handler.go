package uploads

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tkrell/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Create handles POST /uploads. The file itself lives in object
// storage; this records its metadata.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	var req models.CreateUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.FileURL = strings.TrimSpace(req.FileURL)
	if req.Title == "" || req.FileURL == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Title and file_url are required"})
		return
	}
	if req.Visibility != "" && req.Visibility != models.VisibilityPublic && req.Visibility != models.VisibilityPrivate {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Visibility must be public or private"})
		return
	}

	upload, err := h.store.Create(userID, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save upload"})
		return
	}
	writeJSON(w, http.StatusCreated, upload)
}

// ListMine handles GET /uploads/mine.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	uploads, err := h.store.ListMine(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load uploads"})
		return
	}
	writeJSON(w, http.StatusOK, uploads)
}

// ListPublic handles GET /uploads.
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	gradeLevel := r.URL.Query().Get("grade_level")
	limit := intQueryParam(r, "limit", 20)
	offset := intQueryParam(r, "offset", 0)

	uploads, err := h.store.ListPublic(subject, gradeLevel, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load uploads"})
		return
	}
	writeJSON(w, http.StatusOK, uploads)
}

// Get handles GET /uploads/{id}. Viewing counts.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	uploadID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid upload id"})
		return
	}

	upload, err := h.store.Get(uploadID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load upload"})
		return
	}
	if upload == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Upload not found"})
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

// Update handles PUT /uploads/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	uploadID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid upload id"})
		return
	}

	var req models.UpdateUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Visibility != nil && *req.Visibility != models.VisibilityPublic && *req.Visibility != models.VisibilityPrivate {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Visibility must be public or private"})
		return
	}

	upload, err := h.store.Update(uploadID, userID, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update upload"})
		return
	}
	if upload == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Upload not found"})
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

// Delete handles DELETE /uploads/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	uploadID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid upload id"})
		return
	}

	deleted, err := h.store.Delete(uploadID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete upload"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Upload not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ToggleLike handles POST /uploads/{id}/like.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	uploadID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid upload id"})
		return
	}

	liked, err := h.store.ToggleLike(uploadID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to toggle like"})
		return
	}
	writeJSON(w, http.StatusOK, models.ToggleLikeResponse{Liked: liked})
}

// Download handles POST /uploads/{id}/download. Returns the file URL
// and counts the download.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	uploadID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid upload id"})
		return
	}

	fileURL, err := h.store.RecordDownload(uploadID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to record download"})
		return
	}
	if fileURL == "" {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Upload not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file_url": fileURL})
}

func getUserID(r *http.Request) int64 {
	return r.Context().Value("user_id").(int64)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
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
