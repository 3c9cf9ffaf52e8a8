package gamification

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

// GetLeaderboard returns the top entries ordered by total XP. County
// and school filters narrow the ranking; ranks are computed within the
// filtered set.
func (s *Store) GetLeaderboard(county, school string, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT ROW_NUMBER() OVER (ORDER BY l.total_xp DESC, l.user_id ASC) AS rank,
		       l.user_id, u.name, l.total_xp, u.level,
		       COALESCE(l.county, ''), COALESCE(l.school, '')
		FROM leaderboard l
		JOIN users u ON u.id = l.user_id
		WHERE ($1 = '' OR l.county = $1)
		  AND ($2 = '' OR l.school = $2)
		ORDER BY l.total_xp DESC, l.user_id ASC
		LIMIT $3`

	rows, err := s.db.Query(query, county, school, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Rank, &e.UserID, &e.UserName, &e.TotalXP, &e.Level, &e.County, &e.School); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateStreak advances the user's daily streak based on their last
// recorded activity. Called after any qualifying activity (grading a
// quiz, chatting with the tutor).
func (s *Store) UpdateStreak(userID int64) error {
	var streak, tokens int
	var lastUpdate sql.NullTime
	err := s.db.QueryRow(
		`SELECT streak, streak_freeze_tokens, last_streak_update FROM users WHERE id = $1`,
		userID,
	).Scan(&streak, &tokens, &lastUpdate)
	if err != nil {
		return fmt.Errorf("loading streak state: %w", err)
	}

	last := time.Time{}
	if lastUpdate.Valid {
		last = lastUpdate.Time
	}
	if !lastUpdate.Valid {
		streak = 0
	}

	newStreak, newTokens := NextStreak(streak, tokens, last, time.Now())

	_, err = s.db.Exec(
		`UPDATE users SET streak = $2, streak_freeze_tokens = $3, last_streak_update = NOW(), updated_at = NOW()
		 WHERE id = $1`,
		userID, newStreak, newTokens,
	)
	if err != nil {
		return fmt.Errorf("saving streak state: %w", err)
	}
	return nil
}
