package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tkrell/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Generate handles POST /quizzes/generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	var req models.GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Topic is required"})
		return
	}
	if req.Count == 0 {
		req.Count = 7
	}
	if req.Count < 1 || req.Count > 20 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Count must be between 1 and 20"})
		return
	}

	resp, err := h.service.GenerateQuiz(r.Context(), userID, req.Topic, req.GradeLevel, req.Count)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Quiz generation failed, please try again"})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /quizzes.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	limit := intQueryParam(r, "limit", 20)
	offset := intQueryParam(r, "offset", 0)

	quizzes, err := h.service.ListQuizzes(userID, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quizzes"})
		return
	}

	writeJSON(w, http.StatusOK, quizzes)
}

// Get handles GET /quizzes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	quizID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid quiz id"})
		return
	}

	resp, err := h.service.GetQuiz(quizID, userID)
	if errors.Is(err, ErrQuizNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quiz"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Grade handles POST /quizzes/{id}/grade.
func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	quizID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid quiz id"})
		return
	}

	var req models.GradeQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Grade(quizID, userID, req.Answers)
	if errors.Is(err, ErrQuizNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	if errors.Is(err, ErrNoQuestions) {
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "Quiz has no questions to grade"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to grade quiz"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Results handles GET /results.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	limit := intQueryParam(r, "limit", 20)

	results, err := h.service.ListResults(userID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load results"})
		return
	}

	writeJSON(w, http.StatusOK, results)
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
