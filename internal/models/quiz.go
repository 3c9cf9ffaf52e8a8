package models

import "time"

type QuestionType string

const (
	QuestionMCQ   QuestionType = "mcq"
	QuestionShort QuestionType = "short"
	QuestionEssay QuestionType = "essay"
)

var ValidQuestionTypes = map[QuestionType]bool{
	QuestionMCQ:   true,
	QuestionShort: true,
	QuestionEssay: true,
}

type QuizSource string

const (
	SourceAI     QuizSource = "ai"
	SourceUpload QuizSource = "upload"
	SourceSeed   QuizSource = "seed"
)

// ── Core Structs ───────────────────────────────────────

type Quiz struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Topic      string     `json:"topic"`
	GradeLevel string     `json:"grade_level,omitempty"`
	Source     QuizSource `json:"source"`
	Metadata   string     `json:"metadata,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Question struct {
	ID            int64        `json:"id"`
	QuizID        int64        `json:"quiz_id"`
	Question      string       `json:"question"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
	Points        int          `json:"points"`
}

type Result struct {
	ID          int64           `json:"id"`
	QuizID      int64           `json:"quiz_id"`
	UserID      int64           `json:"user_id"`
	Score       int             `json:"score"`
	TotalPoints int             `json:"total_points"`
	XPEarned    int             `json:"xp_earned"`
	CoinsEarned int             `json:"coins_earned"`
	Feedback    []FeedbackEntry `json:"feedback,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}

// FeedbackEntry is the per-question breakdown returned after grading.
type FeedbackEntry struct {
	QuestionID    int64  `json:"question_id"`
	Correct       bool   `json:"correct"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
	Points        int    `json:"points"`
}

// ── Request Types ─────────────────────────────────────

type GenerateQuizRequest struct {
	Topic      string `json:"topic"`
	GradeLevel string `json:"grade_level,omitempty"`
	Count      int    `json:"count"`
}

type SubmittedAnswer struct {
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
}

type GradeQuizRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

// ── Response Types ────────────────────────────────────

type GenerateQuizResponse struct {
	QuizID    int64      `json:"quiz_id"`
	Questions []Question `json:"questions"`
}

type QuizDetailResponse struct {
	Quiz      Quiz       `json:"quiz"`
	Questions []Question `json:"questions"`
}

type GradeQuizResponse struct {
	Score       int             `json:"score"`
	TotalPoints int             `json:"total_points"`
	Percentage  float64         `json:"percentage"`
	XPEarned    int             `json:"xp_earned"`
	CoinsEarned int             `json:"coins_earned"`
	NewLevel    int             `json:"new_level"`
	Feedback    []FeedbackEntry `json:"feedback"`
	Message     string          `json:"message"`
}
