package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/tkrell/backend/internal/models"
)

type Handler struct {
	store  *Store
	client *MpesaClient
}

func NewHandler(store *Store, client *MpesaClient) *Handler {
	return &Handler{store: store, client: client}
}

// Initiate handles POST /payments/mpesa/initiate. It records a pending
// payment and fires the STK push so the prompt appears on the user's
// phone.
func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	var req models.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.PhoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "phone_number is required"})
		return
	}
	if !models.ValidPaidTiers[req.Tier] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Tier must be premium or vip"})
		return
	}
	if req.Amount < 100 || req.Amount > 100000 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Amount must be between 100 and 100000 KSH"})
		return
	}

	transactionRef := TransactionRef(userID, string(req.Tier), time.Now())
	phone := FormatPhone(req.PhoneNumber)

	paymentID, err := h.store.CreatePending(userID, transactionRef, req.Amount, req.Tier, phone)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to record payment"})
		return
	}

	result, err := h.client.STKPush(r.Context(), phone, req.Amount, transactionRef,
		fmt.Sprintf("Tkrell %s subscription", req.Tier))
	if err != nil {
		log.Printf("[payments] STK push failed for user %d: %v", userID, err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Failed to initiate payment. Please try again."})
		return
	}

	if err := h.store.SetCheckoutRequestID(paymentID, result.CheckoutRequestID); err != nil {
		log.Printf("[payments] failed to save checkout id for payment %d: %v", paymentID, err)
	}

	writeJSON(w, http.StatusOK, models.InitiatePaymentResponse{
		Success:           result.ResponseCode == "0",
		CheckoutRequestID: result.CheckoutRequestID,
		MerchantRequestID: result.MerchantRequestID,
		Message:           result.CustomerMessage,
	})
}

// Status handles GET /payments/mpesa/status/{checkoutRequestID} by
// querying Daraja directly.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	checkoutRequestID := mux.Vars(r)["checkoutRequestID"]
	if checkoutRequestID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "A checkout request id is required"})
		return
	}

	result, err := h.client.QuerySTKStatus(r.Context(), checkoutRequestID)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Failed to check payment status"})
		return
	}

	writeJSON(w, http.StatusOK, models.PaymentStatusResponse{
		Success:    result.ResultCode == "0",
		Status:     result.ResultDesc,
		ResultCode: result.ResultCode,
	})
}

// stkCallback mirrors the Daraja callback body shape.
type stkCallback struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// Callback handles POST /payments/mpesa/callback. Safaricom calls this
// directly, so it sits outside the auth middleware; the HMAC signature
// header stands in for auth when a secret is configured.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Failed to read callback body"})
		return
	}

	if secret := os.Getenv("MPESA_CALLBACK_SECRET"); secret != "" {
		signature := r.Header.Get("X-Mpesa-Signature")
		if !ValidateCallbackSignature(signature, body, secret) {
			log.Printf("[payments] rejected callback with bad signature")
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid signature"})
			return
		}
	}

	var cb stkCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid callback body"})
		return
	}

	result := cb.Body.StkCallback
	if result.ResultCode != 0 {
		log.Printf("[payments] payment failed for checkout %s: %s", result.CheckoutRequestID, result.ResultDesc)
		if err := h.store.MarkFailed(result.CheckoutRequestID); err != nil {
			log.Printf("[payments] failed to mark payment failed: %v", err)
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	var transactionRef, mpesaReceipt string
	for _, item := range result.CallbackMetadata.Item {
		switch item.Name {
		case "AccountReference":
			transactionRef, _ = item.Value.(string)
		case "MpesaReceiptNumber":
			mpesaReceipt, _ = item.Value.(string)
		}
	}

	// Some sandbox callbacks omit AccountReference; fall back to the
	// checkout request id lookup.
	if transactionRef == "" {
		payment, err := h.store.GetByCheckoutRequestID(result.CheckoutRequestID)
		if err == nil && payment != nil {
			transactionRef = payment.TransactionRef
		}
	}
	if transactionRef == "" {
		log.Printf("[payments] callback for unknown checkout %s", result.CheckoutRequestID)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	if err := h.store.CompletePayment(transactionRef, mpesaReceipt); err != nil {
		log.Printf("[payments] failed to complete payment %s: %v", transactionRef, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to process callback"})
		return
	}

	log.Printf("[payments] completed payment %s (receipt %s)", transactionRef, mpesaReceipt)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// History handles GET /payments/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	payments, err := h.store.History(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load payment history"})
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// SubscriptionStatus handles GET /payments/subscription.
func (h *Handler) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	sub, err := h.store.GetSubscription(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load subscription"})
		return
	}

	if sub == nil {
		writeJSON(w, http.StatusOK, models.SubscriptionStatusResponse{
			Tier:   models.TierFree,
			Status: "active",
		})
		return
	}

	now := time.Now()
	status := "expired"
	if sub.ExpiresAt.After(now) {
		status = "active"
	}

	daysRemaining := int(math.Ceil(sub.ExpiresAt.Sub(now).Hours() / 24))
	if daysRemaining < 0 {
		daysRemaining = 0
	}
	expiresAt := sub.ExpiresAt.Format(time.RFC3339)

	writeJSON(w, http.StatusOK, models.SubscriptionStatusResponse{
		Tier:          sub.Tier,
		Status:        status,
		ExpiresAt:     &expiresAt,
		DaysRemaining: &daysRemaining,
	})
}

// CancelSubscription handles DELETE /payments/subscription.
func (h *Handler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	if err := h.store.CancelSubscription(userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to cancel subscription"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
