package gamification

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 14, 30, 0, 0, time.UTC)
	}

	tests := []struct {
		name        string
		streak      int
		tokens      int
		lastActive  time.Time
		now         time.Time
		wantStreak  int
		wantTokens  int
	}{
		{"first ever activity", 0, 2, time.Time{}, day(10), 1, 2},
		{"same day keeps streak", 5, 2, day(10), day(10), 5, 2},
		{"next day extends", 5, 2, day(10), day(11), 6, 2},
		{"missed day with token", 5, 2, day(10), day(12), 6, 1},
		{"missed day without token", 5, 0, day(10), day(12), 1, 0},
		{"two missed days resets", 5, 3, day(10), day(13), 1, 3},
		{"late night then early morning", 7, 1, time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC), time.Date(2026, 3, 11, 0, 10, 0, 0, time.UTC), 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, tokens := NextStreak(tt.streak, tt.tokens, tt.lastActive, tt.now)
			if streak != tt.wantStreak || tokens != tt.wantTokens {
				t.Errorf("NextStreak() = (%d, %d), want (%d, %d)", streak, tokens, tt.wantStreak, tt.wantTokens)
			}
		})
	}
}
