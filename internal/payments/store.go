package payments

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tkrell/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreatePending(userID int64, transactionRef string, amount int, tier models.Tier, phoneNumber string) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO payments (user_id, amount, status, transaction_ref, phone_number, tier)
		 VALUES ($1, $2, 'pending', $3, $4, $5) RETURNING id`,
		userID, amount, transactionRef, phoneNumber, tier,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting pending payment: %w", err)
	}
	return id, nil
}

func (s *Store) SetCheckoutRequestID(paymentID int64, checkoutRequestID string) error {
	_, err := s.db.Exec(
		`UPDATE payments SET checkout_request_id = $2, updated_at = NOW() WHERE id = $1`,
		paymentID, checkoutRequestID,
	)
	if err != nil {
		return fmt.Errorf("saving checkout request id: %w", err)
	}
	return nil
}

func (s *Store) GetByCheckoutRequestID(checkoutRequestID string) (*models.Payment, error) {
	return s.getOne(`checkout_request_id = $1`, checkoutRequestID)
}

func (s *Store) GetByRef(transactionRef string) (*models.Payment, error) {
	return s.getOne(`transaction_ref = $1`, transactionRef)
}

func (s *Store) getOne(where string, arg interface{}) (*models.Payment, error) {
	var p models.Payment
	var receipt, checkoutID, phone sql.NullString
	err := s.db.QueryRow(
		`SELECT id, user_id, amount, currency, status, transaction_ref, mpesa_receipt,
		        checkout_request_id, phone_number, tier, created_at, updated_at
		 FROM payments WHERE `+where, arg,
	).Scan(&p.ID, &p.UserID, &p.Amount, &p.Currency, &p.Status, &p.TransactionRef,
		&receipt, &checkoutID, &phone, &p.Tier, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying payment: %w", err)
	}
	p.MpesaReceipt = receipt.String
	p.CheckoutRequestID = checkoutID.String
	p.PhoneNumber = phone.String
	return &p, nil
}

func (s *Store) History(userID int64) ([]models.Payment, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, amount, currency, status, transaction_ref,
		        COALESCE(mpesa_receipt, ''), tier, created_at, updated_at
		 FROM payments WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.Amount, &p.Currency, &p.Status, &p.TransactionRef,
			&p.MpesaReceipt, &p.Tier, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// MarkFailed records a failed payment attempt.
func (s *Store) MarkFailed(checkoutRequestID string) error {
	_, err := s.db.Exec(
		`UPDATE payments SET status = 'failed', updated_at = NOW()
		 WHERE checkout_request_id = $1 AND status = 'pending'`,
		checkoutRequestID,
	)
	if err != nil {
		return fmt.Errorf("marking payment failed: %w", err)
	}
	return nil
}

// CompletePayment marks a payment completed and activates the one
// month subscription it paid for, atomically. Replaying a callback is
// a no-op: only pending payments transition.
func (s *Store) CompletePayment(transactionRef, mpesaReceipt string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning completion tx: %w", err)
	}
	defer tx.Rollback()

	var paymentID, userID int64
	var tier models.Tier
	err = tx.QueryRow(
		`UPDATE payments SET status = 'completed', mpesa_receipt = $2, updated_at = NOW()
		 WHERE transaction_ref = $1 AND status = 'pending'
		 RETURNING id, user_id, tier`,
		transactionRef, mpesaReceipt,
	).Scan(&paymentID, &userID, &tier)
	if err == sql.ErrNoRows {
		// Unknown ref or already processed.
		return nil
	}
	if err != nil {
		return fmt.Errorf("completing payment: %w", err)
	}

	expiresAt := time.Now().AddDate(0, 1, 0)
	_, err = tx.Exec(
		`INSERT INTO subscriptions (user_id, tier, expires_at, payment_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		    tier = EXCLUDED.tier,
		    expires_at = EXCLUDED.expires_at,
		    payment_id = EXCLUDED.payment_id,
		    updated_at = NOW()`,
		userID, tier, expiresAt, paymentID,
	)
	if err != nil {
		return fmt.Errorf("activating subscription: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing completion tx: %w", err)
	}
	return nil
}

func (s *Store) GetSubscription(userID int64) (*models.Subscription, error) {
	var sub models.Subscription
	var paymentID sql.NullInt64
	err := s.db.QueryRow(
		`SELECT user_id, tier, expires_at, payment_id FROM subscriptions WHERE user_id = $1`,
		userID,
	).Scan(&sub.UserID, &sub.Tier, &sub.ExpiresAt, &paymentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying subscription: %w", err)
	}
	if paymentID.Valid {
		sub.PaymentID = &paymentID.Int64
	}
	return &sub, nil
}

func (s *Store) CancelSubscription(userID int64) error {
	_, err := s.db.Exec(`DELETE FROM subscriptions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("cancelling subscription: %w", err)
	}
	return nil
}
