package gamification

import "testing"

func TestComputeRewards(t *testing.T) {
	tests := []struct {
		name        string
		score       int
		totalPoints int
		wantXP      int
		wantCoins   int
	}{
		{"perfect single question", 10, 10, 70, 21},
		{"zero score", 0, 10, 0, 0},
		{"high score bonus", 80, 100, 180, 18},
		{"just below high bonus", 79, 100, 158, 7},
		{"perfect full quiz", 100, 100, 250, 30},
		{"mid score no bonus", 50, 100, 100, 5},
		{"zero total points", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xp, coins := ComputeRewards(tt.score, tt.totalPoints)
			if xp != tt.wantXP {
				t.Errorf("ComputeRewards(%d, %d) xp = %d, want %d", tt.score, tt.totalPoints, xp, tt.wantXP)
			}
			if coins != tt.wantCoins {
				t.Errorf("ComputeRewards(%d, %d) coins = %d, want %d", tt.score, tt.totalPoints, coins, tt.wantCoins)
			}
		})
	}
}

func TestComputeRewardsBonusesNeverStack(t *testing.T) {
	// A perfect score must get only the perfect bonus, not both tiers.
	xp, coins := ComputeRewards(100, 100)
	base := 200
	if xp != base+perfectBonusXP {
		t.Errorf("perfect score xp = %d, want %d", xp, base+perfectBonusXP)
	}
	if coins != 10+perfectBonusCoins {
		t.Errorf("perfect score coins = %d, want %d", coins, 10+perfectBonusCoins)
	}
}

func TestLevelFromXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{900, 4},
		{2500, 6},
		{-5, 1},
	}

	for _, tt := range tests {
		if got := LevelFromXP(tt.xp); got != tt.want {
			t.Errorf("LevelFromXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelFromXPMonotonic(t *testing.T) {
	prev := LevelFromXP(0)
	for xp := int64(1); xp <= 10000; xp += 37 {
		got := LevelFromXP(xp)
		if got < prev {
			t.Fatalf("LevelFromXP(%d) = %d, below previous level %d", xp, got, prev)
		}
		prev = got
	}
}
