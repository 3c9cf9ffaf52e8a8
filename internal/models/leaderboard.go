package models

import "time"

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	TotalXP  int64  `json:"total_xp"`
	Level    int    `json:"level"`
	County   string `json:"county,omitempty"`
	School   string `json:"school,omitempty"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
	County  string             `json:"county,omitempty"`
	School  string             `json:"school,omitempty"`
}

type Referral struct {
	ID         int64     `json:"id"`
	ReferrerID int64     `json:"referrer_id"`
	Code       string    `json:"code"`
	Redeemed   bool      `json:"redeemed"`
	ReferredID *int64    `json:"referred_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateReferralResponse struct {
	Code       string `json:"code"`
	ReferralID int64  `json:"referral_id"`
}

type RedeemReferralRequest struct {
	Code string `json:"code"`
}

type RedeemReferralResponse struct {
	Success     bool `json:"success"`
	CoinsEarned int  `json:"coins_earned"`
}
