package quiz

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tkrell/backend/internal/gamification"
	"github.com/tkrell/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateQuiz(userID int64, topic, gradeLevel string, source models.QuizSource) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO quizzes (user_id, topic, grade_level, source)
		 VALUES ($1, $2, NULLIF($3, ''), $4) RETURNING id`,
		userID, topic, gradeLevel, source,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting quiz: %w", err)
	}
	return id, nil
}

func (s *Store) InsertQuestions(quizID int64, questions []models.Question) ([]models.Question, error) {
	stmt, err := s.db.Prepare(
		`INSERT INTO questions (quiz_id, question, question_type, options, correct_answer, explanation, points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`)
	if err != nil {
		return nil, fmt.Errorf("preparing question insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		var optionsJSON []byte
		if len(q.Options) > 0 {
			optionsJSON, err = json.Marshal(q.Options)
			if err != nil {
				return nil, fmt.Errorf("encoding options: %w", err)
			}
		}

		q.QuizID = quizID
		err = stmt.QueryRow(quizID, q.Question, q.QuestionType, optionsJSON, q.CorrectAnswer, q.Explanation, q.Points).Scan(&q.ID)
		if err != nil {
			return nil, fmt.Errorf("inserting question: %w", err)
		}
		inserted = append(inserted, q)
	}
	return inserted, nil
}

// GetQuiz returns the quiz row if it exists and belongs to the user.
func (s *Store) GetQuiz(quizID, userID int64) (*models.Quiz, error) {
	var q models.Quiz
	var gradeLevel sql.NullString
	err := s.db.QueryRow(
		`SELECT id, user_id, topic, grade_level, source, created_at
		 FROM quizzes WHERE id = $1 AND user_id = $2`,
		quizID, userID,
	).Scan(&q.ID, &q.UserID, &q.Topic, &gradeLevel, &q.Source, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying quiz: %w", err)
	}
	q.GradeLevel = gradeLevel.String
	return &q, nil
}

// GetQuestions returns a quiz's questions in insertion order.
func (s *Store) GetQuestions(quizID int64) ([]models.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, quiz_id, question, question_type, options, correct_answer, explanation, points
		 FROM questions WHERE quiz_id = $1 ORDER BY id ASC`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		var optionsJSON []byte
		var explanation sql.NullString
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Question, &q.QuestionType, &optionsJSON, &q.CorrectAnswer, &explanation, &q.Points); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		if len(optionsJSON) > 0 {
			if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
				return nil, fmt.Errorf("decoding options: %w", err)
			}
		}
		q.Explanation = explanation.String
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) ListUserQuizzes(userID int64, limit, offset int) ([]models.Quiz, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, user_id, topic, grade_level, source, created_at
		 FROM quizzes WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []models.Quiz{}
	for rows.Next() {
		var q models.Quiz
		var gradeLevel sql.NullString
		if err := rows.Scan(&q.ID, &q.UserID, &q.Topic, &gradeLevel, &q.Source, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning quiz: %w", err)
		}
		q.GradeLevel = gradeLevel.String
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func (s *Store) GetUserResults(userID int64, limit int) ([]models.Result, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, quiz_id, user_id, score, total_points, xp_earned, coins_earned, completed_at
		 FROM results WHERE user_id = $1
		 ORDER BY completed_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	results := []models.Result{}
	for rows.Next() {
		var r models.Result
		if err := rows.Scan(&r.ID, &r.QuizID, &r.UserID, &r.Score, &r.TotalPoints, &r.XPEarned, &r.CoinsEarned, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// GradingOutcome is what ApplyGrading persisted.
type GradingOutcome struct {
	ResultID int64
	NewXP    int64
	NewLevel int
}

// ApplyGrading records a graded attempt atomically: the user's XP and
// coin balances, their level, the leaderboard row, and the result all
// commit together or not at all. Increments are done in SQL so two
// concurrent grades never lose an update.
func (s *Store) ApplyGrading(result models.Result, xpEarned, coinsEarned int) (*GradingOutcome, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning grading tx: %w", err)
	}
	defer tx.Rollback()

	var newXP, newCoins int64
	err = tx.QueryRow(
		`UPDATE users SET xp = xp + $2, coins = coins + $3, updated_at = NOW()
		 WHERE id = $1 RETURNING xp, coins`,
		result.UserID, xpEarned, coinsEarned,
	).Scan(&newXP, &newCoins)
	if err != nil {
		return nil, fmt.Errorf("updating user balances: %w", err)
	}

	newLevel := gamification.LevelFromXP(newXP)
	if _, err := tx.Exec(`UPDATE users SET level = $2 WHERE id = $1`, result.UserID, newLevel); err != nil {
		return nil, fmt.Errorf("updating user level: %w", err)
	}

	// County and school carry through from the profile when present,
	// otherwise any previously stored values survive the upsert.
	_, err = tx.Exec(
		`INSERT INTO leaderboard (user_id, total_xp, total_coins, county, school, updated_at)
		 SELECT u.id, u.xp, u.coins, p.county, p.school, NOW()
		 FROM users u
		 LEFT JOIN student_profiles p ON p.user_id = u.id
		 WHERE u.id = $1
		 ON CONFLICT (user_id) DO UPDATE SET
		    total_xp = EXCLUDED.total_xp,
		    total_coins = EXCLUDED.total_coins,
		    county = COALESCE(EXCLUDED.county, leaderboard.county),
		    school = COALESCE(EXCLUDED.school, leaderboard.school),
		    updated_at = NOW()`,
		result.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting leaderboard: %w", err)
	}

	feedbackJSON, err := json.Marshal(result.Feedback)
	if err != nil {
		return nil, fmt.Errorf("encoding feedback: %w", err)
	}

	var resultID int64
	err = tx.QueryRow(
		`INSERT INTO results (quiz_id, user_id, score, total_points, xp_earned, coins_earned, feedback)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		result.QuizID, result.UserID, result.Score, result.TotalPoints, xpEarned, coinsEarned, feedbackJSON,
	).Scan(&resultID)
	if err != nil {
		return nil, fmt.Errorf("inserting result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing grading tx: %w", err)
	}

	return &GradingOutcome{ResultID: resultID, NewXP: newXP, NewLevel: newLevel}, nil
}
