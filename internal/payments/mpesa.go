package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Daraja sandbox endpoints. Point MPESA_BASE_URL at
// https://api.safaricom.co.ke for production.
const defaultBaseURL = "https://sandbox.safaricom.co.ke"

// Access tokens last 3600 seconds; refresh a little early.
const tokenLifetime = 3500 * time.Second

type MpesaConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	PassKey        string
	CallbackURL    string
	BaseURL        string
}

func ConfigFromEnv() MpesaConfig {
	cfg := MpesaConfig{
		ConsumerKey:    os.Getenv("MPESA_CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("MPESA_CONSUMER_SECRET"),
		ShortCode:      os.Getenv("MPESA_SHORTCODE"),
		PassKey:        os.Getenv("MPESA_PASSKEY"),
		CallbackURL:    os.Getenv("MPESA_CALLBACK_URL"),
		BaseURL:        os.Getenv("MPESA_BASE_URL"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return cfg
}

// MpesaClient talks to the Safaricom Daraja API. The OAuth token is
// cached across calls and refreshed before it expires.
type MpesaClient struct {
	config MpesaConfig
	http   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewMpesaClient(config MpesaConfig) *MpesaClient {
	return &MpesaClient{
		config: config,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type STKQueryResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

func (c *MpesaClient) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.config.BaseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.config.ConsumerKey, c.config.ConsumerSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("m-pesa auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("m-pesa auth failed with status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding m-pesa auth response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("m-pesa auth returned empty token")
	}

	c.accessToken = body.AccessToken
	c.tokenExpiry = time.Now().Add(tokenLifetime)
	return c.accessToken, nil
}

func (c *MpesaClient) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("m-pesa request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("m-pesa request %s failed with status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// STKPush shows the Lipa Na M-Pesa payment prompt on the user's phone.
func (c *MpesaClient) STKPush(ctx context.Context, phoneNumber string, amount int, accountRef, description string) (*STKPushResponse, error) {
	timestamp := mpesaTimestamp(time.Now())
	phone := FormatPhone(phoneNumber)

	payload := map[string]interface{}{
		"BusinessShortCode": c.config.ShortCode,
		"Password":          stkPassword(c.config.ShortCode, c.config.PassKey, timestamp),
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            phone,
		"PartyB":            c.config.ShortCode,
		"PhoneNumber":       phone,
		"CallBackURL":       c.config.CallbackURL,
		"AccountReference":  accountRef,
		"TransactionDesc":   description,
	}

	var resp STKPushResponse
	if err := c.postJSON(ctx, "/mpesa/stkpush/v1/processrequest", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QuerySTKStatus checks whether the user completed an STK payment.
func (c *MpesaClient) QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*STKQueryResponse, error) {
	timestamp := mpesaTimestamp(time.Now())

	payload := map[string]interface{}{
		"BusinessShortCode": c.config.ShortCode,
		"Password":          stkPassword(c.config.ShortCode, c.config.PassKey, timestamp),
		"Timestamp":         timestamp,
		"CheckoutRequestID": checkoutRequestID,
	}

	var resp STKQueryResponse
	if err := c.postJSON(ctx, "/mpesa/stkpushquery/v1/query", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterC2BURLs registers the confirmation and validation URLs for
// receiving direct paybill payments.
func (c *MpesaClient) RegisterC2BURLs(ctx context.Context, confirmationURL, validationURL string) error {
	payload := map[string]interface{}{
		"ShortCode":       c.config.ShortCode,
		"ResponseType":    "Completed",
		"ConfirmationURL": confirmationURL,
		"ValidationURL":   validationURL,
	}

	var resp map[string]interface{}
	return c.postJSON(ctx, "/mpesa/c2b/v1/registerurl", payload, &resp)
}

// mpesaTimestamp renders the Daraja timestamp format, YYYYMMDDHHmmss
// in UTC.
func mpesaTimestamp(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

// stkPassword is Base64(ShortCode + PassKey + Timestamp), per the
// Daraja docs.
func stkPassword(shortCode, passKey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passKey + timestamp))
}

// FormatPhone normalises a Kenyan phone number to the 254XXXXXXXXX
// form M-Pesa expects.
func FormatPhone(phone string) string {
	formatted := strings.TrimSpace(phone)
	formatted = strings.TrimPrefix(formatted, "+")
	if strings.HasPrefix(formatted, "0") {
		return "254" + formatted[1:]
	}
	if !strings.HasPrefix(formatted, "254") {
		return "254" + formatted
	}
	return formatted
}

// TransactionRef builds a unique payment reference.
func TransactionRef(userID int64, tier string, now time.Time) string {
	return fmt.Sprintf("TKR%d%s%d", userID, strings.ToUpper(tier), now.UnixMilli())
}

// ValidateCallbackSignature checks the HMAC-SHA256 signature on a
// callback body against the shared secret.
func ValidateCallbackSignature(signature string, body []byte, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
