package notes

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

func (s *Store) List(userID int64) ([]models.Note, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, content, COALESCE(subject, ''), COALESCE(grade_level, ''), is_public, created_at, updated_at
		 FROM notes WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Subject, &n.GradeLevel, &n.IsPublic, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *Store) Create(userID int64, req models.CreateNoteRequest) (*models.Note, error) {
	var n models.Note
	err := s.db.QueryRow(
		`INSERT INTO notes (user_id, title, content, subject, grade_level, is_public)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		 RETURNING id, user_id, title, content, COALESCE(subject, ''), COALESCE(grade_level, ''), is_public, created_at, updated_at`,
		userID, req.Title, req.Content, req.Subject, req.GradeLevel, req.IsPublic,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Subject, &n.GradeLevel, &n.IsPublic, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting note: %w", err)
	}
	return &n, nil
}

// Delete removes a note. Returns false when the note does not exist or
// belongs to another user.
func (s *Store) Delete(noteID, userID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return false, fmt.Errorf("deleting note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
