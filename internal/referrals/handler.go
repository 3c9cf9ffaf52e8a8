package referrals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tkrell/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Create handles POST /referrals. The user's name seeds the code
// prefix, so look it up first.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	name, err := h.store.UserName(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create referral"})
		return
	}

	resp, err := h.store.Create(userID, name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create referral"})
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /referrals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	referrals, err := h.store.List(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load referrals"})
		return
	}
	writeJSON(w, http.StatusOK, referrals)
}

// Redeem handles POST /referrals/redeem.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	var req models.RedeemReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Code is required"})
		return
	}

	coins, err := h.store.Redeem(req.Code, userID)
	switch {
	case errors.Is(err, ErrCodeNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Invalid referral code"})
		return
	case errors.Is(err, ErrAlreadyRedeemed):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Referral code already used"})
		return
	case errors.Is(err, ErrOwnCode):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Cannot use your own referral code"})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to redeem referral"})
		return
	}

	writeJSON(w, http.StatusOK, models.RedeemReferralResponse{Success: true, CoinsEarned: coins})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
