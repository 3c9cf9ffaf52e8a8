package tutor

import (
	"database/sql"
	"fmt"

	"github.com/tkrell/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Save(userID int64, message, response string) (*models.TutorChat, error) {
	var chat models.TutorChat
	err := s.db.QueryRow(
		`INSERT INTO tutor_chats (user_id, message, response)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, message, response, created_at`,
		userID, message, response,
	).Scan(&chat.ID, &chat.UserID, &chat.Message, &chat.Response, &chat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving tutor chat: %w", err)
	}
	return &chat, nil
}

// History returns the user's recent tutor exchanges, newest first.
func (s *Store) History(userID int64, limit int) ([]models.TutorChat, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, user_id, message, response, created_at
		 FROM tutor_chats WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tutor chats: %w", err)
	}
	defer rows.Close()

	chats := []models.TutorChat{}
	for rows.Next() {
		var chat models.TutorChat
		if err := rows.Scan(&chat.ID, &chat.UserID, &chat.Message, &chat.Response, &chat.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tutor chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}
