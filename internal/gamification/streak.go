package gamification

import "time"

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// NextStreak advances a daily activity streak. Same-day activity keeps
// the streak unchanged, the next day extends it, and a single missed
// day can be covered by spending a freeze token. Anything longer
// resets the streak to 1.
func NextStreak(streak, freezeTokens int, lastActive, now time.Time) (int, int) {
	if streak == 0 {
		return 1, freezeTokens
	}

	switch gap := daysBetween(lastActive, now); {
	case gap <= 0:
		return streak, freezeTokens
	case gap == 1:
		return streak + 1, freezeTokens
	case gap == 2 && freezeTokens > 0:
		return streak + 1, freezeTokens - 1
	default:
		return 1, freezeTokens
	}
}
