package referrals

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/lib/pq"
	"github.com/tkrell/backend/internal/models"
)

const redeemReward = 50

var (
	ErrCodeNotFound    = errors.New("invalid referral code")
	ErrAlreadyRedeemed = errors.New("referral code already used")
	ErrOwnCode         = errors.New("cannot use your own referral code")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// generateCode builds a referral code from the first three letters of
// the user's name plus a random hex suffix, e.g. "WAN3F9A1C".
func generateCode(name string) (string, error) {
	prefix := ""
	for _, r := range name {
		if unicode.IsLetter(r) {
			prefix += strings.ToUpper(string(r))
			if len(prefix) >= 3 {
				break
			}
		}
	}
	if len(prefix) < 3 {
		prefix = "TKR"
	}

	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating referral suffix: %w", err)
	}
	return prefix + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// UserName looks up the display name used to prefix referral codes.
func (s *Store) UserName(userID int64) (string, error) {
	var name string
	if err := s.db.QueryRow(`SELECT name FROM users WHERE id = $1`, userID).Scan(&name); err != nil {
		return "", fmt.Errorf("loading user name: %w", err)
	}
	return name, nil
}

// Create issues a new referral code for the user.
func (s *Store) Create(userID int64, userName string) (*models.CreateReferralResponse, error) {
	// Retry on the rare code collision.
	for attempt := 0; attempt < 3; attempt++ {
		code, err := generateCode(userName)
		if err != nil {
			return nil, err
		}

		var id int64
		err = s.db.QueryRow(
			`INSERT INTO referrals (referrer_id, code) VALUES ($1, $2)
			 ON CONFLICT (code) DO NOTHING RETURNING id`,
			userID, code,
		).Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("inserting referral: %w", err)
		}
		return &models.CreateReferralResponse{Code: code, ReferralID: id}, nil
	}
	return nil, fmt.Errorf("could not generate a unique referral code")
}

// List returns the user's issued referral codes.
func (s *Store) List(userID int64) ([]models.Referral, error) {
	rows, err := s.db.Query(
		`SELECT id, referrer_id, code, redeemed, referred_id, created_at
		 FROM referrals WHERE referrer_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing referrals: %w", err)
	}
	defer rows.Close()

	referrals := []models.Referral{}
	for rows.Next() {
		var ref models.Referral
		var referredID sql.NullInt64
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.Code, &ref.Redeemed, &referredID, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning referral: %w", err)
		}
		if referredID.Valid {
			ref.ReferredID = &referredID.Int64
		}
		referrals = append(referrals, ref)
	}
	return referrals, rows.Err()
}

// Redeem marks a code as used and credits both the referrer and the
// redeemer 50 coins, all in one transaction.
func (s *Store) Redeem(code string, userID int64) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning redeem tx: %w", err)
	}
	defer tx.Rollback()

	var referrerID int64
	var redeemed bool
	err = tx.QueryRow(
		`SELECT referrer_id, redeemed FROM referrals WHERE code = $1 FOR UPDATE`,
		code,
	).Scan(&referrerID, &redeemed)
	if err == sql.ErrNoRows {
		return 0, ErrCodeNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("loading referral: %w", err)
	}
	if redeemed {
		return 0, ErrAlreadyRedeemed
	}
	if referrerID == userID {
		return 0, ErrOwnCode
	}

	if _, err := tx.Exec(
		`UPDATE referrals SET redeemed = TRUE, referred_id = $2 WHERE code = $1`,
		code, userID,
	); err != nil {
		return 0, fmt.Errorf("redeeming referral: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE users SET coins = coins + $2, updated_at = NOW() WHERE id = ANY($1)`,
		pq.Array([]int64{referrerID, userID}), redeemReward,
	); err != nil {
		return 0, fmt.Errorf("crediting referral reward: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing redeem tx: %w", err)
	}
	return redeemReward, nil
}
