package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"712345678", "254712345678"},
		{" 0712345678 ", "254712345678"},
	}

	for _, tt := range tests {
		if got := FormatPhone(tt.in); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTransactionRef(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	got := TransactionRef(42, "premium", now)
	want := "TKR42PREMIUM1700000000000"
	if got != want {
		t.Errorf("TransactionRef() = %q, want %q", got, want)
	}
}

func TestMpesaTimestamp(t *testing.T) {
	ts := time.Date(2026, 8, 30, 14, 5, 9, 123456789, time.UTC)
	if got := mpesaTimestamp(ts); got != "20260830140509" {
		t.Errorf("mpesaTimestamp() = %q, want 20260830140509", got)
	}
}

func TestStkPassword(t *testing.T) {
	got := stkPassword("174379", "passkey", "20260830140509")
	want := base64.StdEncoding.EncodeToString([]byte("174379passkey20260830140509"))
	if got != want {
		t.Errorf("stkPassword() = %q, want %q", got, want)
	}
}

func TestValidateCallbackSignature(t *testing.T) {
	body := []byte(`{"Body":{"stkCallback":{"ResultCode":0}}}`)
	secret := "shared-secret"

	// Signature computed the same way the sender would.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	valid := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !ValidateCallbackSignature(valid, body, secret) {
		t.Error("valid signature rejected")
	}
	if ValidateCallbackSignature(valid, []byte("tampered"), secret) {
		t.Error("tampered body accepted")
	}
	if ValidateCallbackSignature("bogus", body, secret) {
		t.Error("bogus signature accepted")
	}
}

func TestSTKPushFlow(t *testing.T) {
	tokenCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			tokenCalls++
			user, pass, ok := r.BasicAuth()
			if !ok || user != "key" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})

		case "/mpesa/stkpush/v1/processrequest":
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var payload map[string]interface{}
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["PhoneNumber"] != "254712345678" {
				t.Errorf("PhoneNumber = %v, want 254712345678", payload["PhoneNumber"])
			}
			if payload["TransactionType"] != "CustomerPayBillOnline" {
				t.Errorf("TransactionType = %v", payload["TransactionType"])
			}
			json.NewEncoder(w).Encode(STKPushResponse{
				MerchantRequestID:   "merchant-1",
				CheckoutRequestID:   "checkout-1",
				ResponseCode:        "0",
				ResponseDescription: "Success",
				CustomerMessage:     "Request accepted",
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewMpesaClient(MpesaConfig{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		PassKey:        "passkey",
		CallbackURL:    "https://example.com/callback",
		BaseURL:        server.URL,
	})

	resp, err := client.STKPush(context.Background(), "0712345678", 500, "TKR1PREMIUM123", "Tkrell premium subscription")
	if err != nil {
		t.Fatalf("STKPush() error = %v", err)
	}
	if resp.CheckoutRequestID != "checkout-1" || resp.ResponseCode != "0" {
		t.Errorf("unexpected response: %+v", resp)
	}

	// A second call must reuse the cached token.
	if _, err := client.STKPush(context.Background(), "0712345678", 500, "TKR1PREMIUM124", "Tkrell premium subscription"); err != nil {
		t.Fatalf("second STKPush() error = %v", err)
	}
	if tokenCalls != 1 {
		t.Errorf("token endpoint called %d times, want 1", tokenCalls)
	}
}
