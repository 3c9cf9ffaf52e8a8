package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierVIP     Tier = "vip"
)

var ValidPaidTiers = map[Tier]bool{
	TierPremium: true,
	TierVIP:     true,
}

type Payment struct {
	ID                int64         `json:"id"`
	UserID            int64         `json:"user_id"`
	Amount            int           `json:"amount"`
	Currency          string        `json:"currency"`
	Status            PaymentStatus `json:"status"`
	TransactionRef    string        `json:"transaction_ref"`
	MpesaReceipt      string        `json:"mpesa_receipt,omitempty"`
	CheckoutRequestID string        `json:"checkout_request_id,omitempty"`
	PhoneNumber       string        `json:"phone_number,omitempty"`
	Tier              Tier          `json:"tier"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

type Subscription struct {
	UserID    int64     `json:"user_id"`
	Tier      Tier      `json:"tier"`
	ExpiresAt time.Time `json:"expires_at"`
	PaymentID *int64    `json:"payment_id,omitempty"`
}

type InitiatePaymentRequest struct {
	PhoneNumber string `json:"phone_number"`
	Tier        Tier   `json:"tier"`
	Amount      int    `json:"amount"`
}

type InitiatePaymentResponse struct {
	Success           bool   `json:"success"`
	CheckoutRequestID string `json:"checkout_request_id"`
	MerchantRequestID string `json:"merchant_request_id"`
	Message           string `json:"message"`
}

type PaymentStatusResponse struct {
	Success    bool   `json:"success"`
	Status     string `json:"status"`
	ResultCode string `json:"result_code"`
}

type SubscriptionStatusResponse struct {
	Tier          Tier    `json:"tier"`
	Status        string  `json:"status"`
	ExpiresAt     *string `json:"expires_at"`
	DaysRemaining *int    `json:"days_remaining"`
}
