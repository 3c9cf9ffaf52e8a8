package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/tkrell/backend/internal/gamification"
	"github.com/tkrell/backend/internal/generator"
	"github.com/tkrell/backend/internal/models"
)

// ErrQuizNotFound covers both a missing quiz and a quiz owned by
// someone else. Callers cannot tell the two apart.
var ErrQuizNotFound = errors.New("quiz not found")

// ErrNoQuestions means a quiz has no questions and cannot be graded.
var ErrNoQuestions = errors.New("quiz has no questions")

type Service struct {
	store        *Store
	gen          *generator.Generator
	gamification *gamification.Store
}

func NewService(store *Store, gen *generator.Generator, gamStore *gamification.Store) *Service {
	return &Service{store: store, gen: gen, gamification: gamStore}
}

// GenerateQuiz asks the model for questions and persists the quiz.
func (s *Service) GenerateQuiz(ctx context.Context, userID int64, topic, gradeLevel string, count int) (*models.GenerateQuizResponse, error) {
	parsed, err := s.gen.GenerateQuiz(ctx, topic, gradeLevel, count)
	if err != nil {
		return nil, err
	}
	if len(parsed) > count {
		parsed = parsed[:count]
	}

	quizID, err := s.store.CreateQuiz(userID, topic, gradeLevel, models.SourceAI)
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(parsed))
	for _, p := range parsed {
		questions = append(questions, models.Question{
			Question:      p.Question,
			QuestionType:  models.QuestionType(p.Type),
			Options:       p.Options,
			CorrectAnswer: p.Answer,
			Explanation:   p.Explanation,
			Points:        p.Points,
		})
	}

	inserted, err := s.store.InsertQuestions(quizID, questions)
	if err != nil {
		return nil, err
	}

	// Answers stay server-side until the quiz is graded.
	for i := range inserted {
		inserted[i].CorrectAnswer = ""
		inserted[i].Explanation = ""
	}

	log.Printf("[quiz] generated quiz %d for user %d: %q, %d questions", quizID, userID, topic, len(inserted))
	return &models.GenerateQuizResponse{QuizID: quizID, Questions: inserted}, nil
}

// GetQuiz returns a quiz with its questions, answers stripped.
func (s *Service) GetQuiz(quizID, userID int64) (*models.QuizDetailResponse, error) {
	q, err := s.store.GetQuiz(quizID, userID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuizNotFound
	}

	questions, err := s.store.GetQuestions(quizID)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].CorrectAnswer = ""
		questions[i].Explanation = ""
	}

	return &models.QuizDetailResponse{Quiz: *q, Questions: questions}, nil
}

func (s *Service) ListQuizzes(userID int64, limit, offset int) ([]models.Quiz, error) {
	return s.store.ListUserQuizzes(userID, limit, offset)
}

func (s *Service) ListResults(userID int64, limit int) ([]models.Result, error) {
	return s.store.GetUserResults(userID, limit)
}

// Grade scores a submission against the stored questions, persists the
// attempt with its rewards, and advances the user's streak.
func (s *Service) Grade(quizID, userID int64, answers []models.SubmittedAnswer) (*models.GradeQuizResponse, error) {
	q, err := s.store.GetQuiz(quizID, userID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuizNotFound
	}

	questions, err := s.store.GetQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	byQuestion := make(map[int64]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Answer
	}

	score, totalPoints := 0, 0
	feedback := make([]models.FeedbackEntry, 0, len(questions))
	for _, question := range questions {
		entry, points := GradeAnswer(question, byQuestion[question.ID])
		score += points
		totalPoints += question.Points
		feedback = append(feedback, entry)
	}

	xpEarned, coinsEarned := gamification.ComputeRewards(score, totalPoints)

	outcome, err := s.store.ApplyGrading(models.Result{
		QuizID:      quizID,
		UserID:      userID,
		Score:       score,
		TotalPoints: totalPoints,
		Feedback:    feedback,
	}, xpEarned, coinsEarned)
	if err != nil {
		return nil, fmt.Errorf("persisting grade: %w", err)
	}

	if err := s.gamification.UpdateStreak(userID); err != nil {
		// The grade already committed; a streak hiccup is not worth
		// failing the request over.
		log.Printf("[quiz] streak update failed for user %d: %v", userID, err)
	}

	message := "Nice work! Keep learning! 🔥"
	if score == totalPoints {
		message = "Perfect! +50 XP bonus! 🎉"
	}

	percentage := 0.0
	if totalPoints > 0 {
		percentage = float64(score) / float64(totalPoints) * 100
	}

	log.Printf("[quiz] graded quiz %d for user %d: %d/%d, +%d xp, +%d coins", quizID, userID, score, totalPoints, xpEarned, coinsEarned)
	return &models.GradeQuizResponse{
		Score:       score,
		TotalPoints: totalPoints,
		Percentage:  percentage,
		XPEarned:    xpEarned,
		CoinsEarned: coinsEarned,
		NewLevel:    outcome.NewLevel,
		Feedback:    feedback,
		Message:     message,
	}, nil
}
