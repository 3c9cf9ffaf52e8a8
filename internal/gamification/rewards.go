package gamification

import "math"

// Bonus thresholds applied on top of the base quiz rewards.
const (
	perfectBonusXP    = 50
	perfectBonusCoins = 20
	highScorePercent  = 80.0
	highBonusXP       = 20
	highBonusCoins    = 10
)

// ComputeRewards converts a quiz score into XP and coins. A perfect
// score earns the big bonus; 80% or better earns the smaller one. The
// two bonuses never stack.
func ComputeRewards(score, totalPoints int) (xp, coins int) {
	xp = score * 2
	coins = score / 10

	if totalPoints <= 0 {
		return xp, coins
	}

	percentage := float64(score) / float64(totalPoints) * 100
	if percentage == 100 {
		xp += perfectBonusXP
		coins += perfectBonusCoins
	} else if percentage >= highScorePercent {
		xp += highBonusXP
		coins += highBonusCoins
	}
	return xp, coins
}

// LevelFromXP maps lifetime XP to a level. Level 1 starts at 0 XP and
// each level costs quadratically more than the last.
func LevelFromXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}
