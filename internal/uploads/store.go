package uploads

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tkrell/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const uploadColumns = `id, user_id, title, COALESCE(description, ''), file_url, COALESCE(file_type, ''),
	COALESCE(file_size, 0), COALESCE(subject, ''), COALESCE(topic, ''), COALESCE(grade_level, ''),
	visibility, tags, views, likes, downloads, created_at, updated_at`

func scanUpload(row interface{ Scan(...interface{}) error }) (*models.Upload, error) {
	var u models.Upload
	var tagsJSON []byte
	err := row.Scan(&u.ID, &u.UserID, &u.Title, &u.Description, &u.FileURL, &u.FileType,
		&u.FileSize, &u.Subject, &u.Topic, &u.GradeLevel,
		&u.Visibility, &tagsJSON, &u.Views, &u.Likes, &u.Downloads, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &u.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	return &u, nil
}

func (s *Store) Create(userID int64, req models.CreateUploadRequest) (*models.Upload, error) {
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	var tagsJSON []byte
	if len(req.Tags) > 0 {
		var err error
		tagsJSON, err = json.Marshal(req.Tags)
		if err != nil {
			return nil, fmt.Errorf("encoding tags: %w", err)
		}
	}

	row := s.db.QueryRow(
		`INSERT INTO uploads (user_id, title, description, file_url, file_type, file_size, subject, topic, grade_level, visibility, tags)
		 VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, 0), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11)
		 RETURNING `+uploadColumns,
		userID, req.Title, req.Description, req.FileURL, req.FileType, req.FileSize,
		req.Subject, req.Topic, req.GradeLevel, visibility, tagsJSON,
	)
	u, err := scanUpload(row)
	if err != nil {
		return nil, fmt.Errorf("inserting upload: %w", err)
	}
	return u, nil
}

func (s *Store) ListMine(userID int64) ([]models.Upload, error) {
	rows, err := s.db.Query(
		`SELECT `+uploadColumns+` FROM uploads WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	defer rows.Close()
	return collectUploads(rows)
}

// ListPublic returns public uploads, newest first, with optional
// subject and grade level filters.
func (s *Store) ListPublic(subject, gradeLevel string, limit, offset int) ([]models.Upload, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT `+uploadColumns+` FROM uploads
		 WHERE visibility = 'public'
		   AND ($1 = '' OR subject = $1)
		   AND ($2 = '' OR grade_level = $2)
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		subject, gradeLevel, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing public uploads: %w", err)
	}
	defer rows.Close()
	return collectUploads(rows)
}

func collectUploads(rows *sql.Rows) ([]models.Upload, error) {
	uploads := []models.Upload{}
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning upload: %w", err)
		}
		uploads = append(uploads, *u)
	}
	return uploads, rows.Err()
}

// Get returns an upload, bumping its view counter. Private uploads are
// only visible to their owner.
func (s *Store) Get(uploadID, viewerID int64) (*models.Upload, error) {
	row := s.db.QueryRow(
		`UPDATE uploads SET views = views + 1
		 WHERE id = $1 AND (visibility = 'public' OR user_id = $2)
		 RETURNING `+uploadColumns,
		uploadID, viewerID,
	)
	u, err := scanUpload(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying upload: %w", err)
	}
	return u, nil
}

// Update applies the non-nil fields of req to the owner's upload.
func (s *Store) Update(uploadID, userID int64, req models.UpdateUploadRequest) (*models.Upload, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{uploadID, userID}
	next := 3

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, next))
		args = append(args, value)
		next++
	}

	if req.Title != nil {
		addSet("title", *req.Title)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.Subject != nil {
		addSet("subject", *req.Subject)
	}
	if req.Topic != nil {
		addSet("topic", *req.Topic)
	}
	if req.GradeLevel != nil {
		addSet("grade_level", *req.GradeLevel)
	}
	if req.Visibility != nil {
		addSet("visibility", *req.Visibility)
	}
	if req.Tags != nil {
		tagsJSON, err := json.Marshal(req.Tags)
		if err != nil {
			return nil, fmt.Errorf("encoding tags: %w", err)
		}
		addSet("tags", tagsJSON)
	}

	query := fmt.Sprintf(
		`UPDATE uploads SET %s WHERE id = $1 AND user_id = $2 RETURNING %s`,
		strings.Join(sets, ", "), uploadColumns,
	)
	u, err := scanUpload(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating upload: %w", err)
	}
	return u, nil
}

func (s *Store) Delete(uploadID, userID int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM uploads WHERE id = $1 AND user_id = $2`, uploadID, userID)
	if err != nil {
		return false, fmt.Errorf("deleting upload: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ToggleLike flips a user's like on an upload and keeps the denormalised
// counter in step, all in one transaction.
func (s *Store) ToggleLike(uploadID, userID int64) (liked bool, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning like tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM upload_likes WHERE user_id = $1 AND upload_id = $2`, userID, uploadID)
	if err != nil {
		return false, fmt.Errorf("removing like: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if removed > 0 {
		if _, err := tx.Exec(`UPDATE uploads SET likes = likes - 1 WHERE id = $1`, uploadID); err != nil {
			return false, fmt.Errorf("decrementing like counter: %w", err)
		}
	} else {
		if _, err := tx.Exec(`INSERT INTO upload_likes (user_id, upload_id) VALUES ($1, $2)`, userID, uploadID); err != nil {
			return false, fmt.Errorf("adding like: %w", err)
		}
		if _, err := tx.Exec(`UPDATE uploads SET likes = likes + 1 WHERE id = $1`, uploadID); err != nil {
			return false, fmt.Errorf("incrementing like counter: %w", err)
		}
		liked = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing like tx: %w", err)
	}
	return liked, nil
}

// RecordDownload bumps the download counter and returns the file URL.
func (s *Store) RecordDownload(uploadID, viewerID int64) (string, error) {
	var fileURL string
	err := s.db.QueryRow(
		`UPDATE uploads SET downloads = downloads + 1
		 WHERE id = $1 AND (visibility = 'public' OR user_id = $2)
		 RETURNING file_url`,
		uploadID, viewerID,
	).Scan(&fileURL)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("recording download: %w", err)
	}
	return fileURL, nil
}
