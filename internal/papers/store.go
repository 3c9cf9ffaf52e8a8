package papers

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/tkrell/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Seed loads the starter paper catalogue. Safe to run on every boot.
func (s *Store) Seed() error {
	inserted := 0
	for _, p := range seedPapers {
		res, err := s.db.Exec(
			`INSERT INTO past_papers (title, subject, grade_level, exam_board, year)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (title, year) DO NOTHING`,
			p.Title, p.Subject, p.GradeLevel, p.ExamBoard, p.Year,
		)
		if err != nil {
			return fmt.Errorf("seeding paper %q: %w", p.Title, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	if inserted > 0 {
		log.Printf("[papers] seeded %d past papers", inserted)
	}
	return nil
}

// List returns papers filtered by subject, grade level, and year.
func (s *Store) List(subject, gradeLevel string, year int) ([]models.PastPaper, error) {
	rows, err := s.db.Query(
		`SELECT id, title, subject, grade_level, COALESCE(exam_board, ''), COALESCE(year, 0),
		        COALESCE(file_url, ''), uploaded_by, created_at
		 FROM past_papers
		 WHERE ($1 = '' OR subject = $1)
		   AND ($2 = '' OR grade_level = $2)
		   AND ($3 = 0 OR year = $3)
		 ORDER BY year DESC, subject ASC`,
		subject, gradeLevel, year,
	)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	papers := []models.PastPaper{}
	for rows.Next() {
		var p models.PastPaper
		var uploadedBy sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Title, &p.Subject, &p.GradeLevel, &p.ExamBoard, &p.Year, &p.FileURL, &uploadedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if uploadedBy.Valid {
			p.UploadedBy = &uploadedBy.Int64
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

func (s *Store) Get(paperID int64) (*models.PastPaper, error) {
	var p models.PastPaper
	var uploadedBy sql.NullInt64
	err := s.db.QueryRow(
		`SELECT id, title, subject, grade_level, COALESCE(exam_board, ''), COALESCE(year, 0),
		        COALESCE(file_url, ''), uploaded_by, created_at
		 FROM past_papers WHERE id = $1`,
		paperID,
	).Scan(&p.ID, &p.Title, &p.Subject, &p.GradeLevel, &p.ExamBoard, &p.Year, &p.FileURL, &uploadedBy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying paper: %w", err)
	}
	if uploadedBy.Valid {
		p.UploadedBy = &uploadedBy.Int64
	}
	return &p, nil
}
