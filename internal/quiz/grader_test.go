package quiz

import (
	"strings"
	"testing"

	"github.com/tkrell/backend/internal/models"
)

func mcq(points int) models.Question {
	return models.Question{
		ID:            1,
		QuestionType:  models.QuestionMCQ,
		CorrectAnswer: "Paris",
		Explanation:   "Paris is the capital of France.",
		Points:        points,
	}
}

func TestGradeAnswerMCQ(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		wantOK     bool
		wantPoints int
	}{
		{"exact match", "Paris", true, 10},
		{"case insensitive", "paris", true, 10},
		{"surrounding whitespace", "  Paris  ", true, 10},
		{"wrong answer", "London", false, 0},
		{"partial match not enough", "Par", false, 0},
		{"empty answer", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, points := GradeAnswer(mcq(10), tt.answer)
			if entry.Correct != tt.wantOK || points != tt.wantPoints {
				t.Errorf("GradeAnswer(%q) = (correct=%v, points=%d), want (%v, %d)",
					tt.answer, entry.Correct, points, tt.wantOK, tt.wantPoints)
			}
		})
	}
}

func TestGradeAnswerShort(t *testing.T) {
	q := models.Question{
		ID:            2,
		QuestionType:  models.QuestionShort,
		CorrectAnswer: "photosynthesis",
		Points:        10,
	}

	tests := []struct {
		name   string
		answer string
		wantOK bool
	}{
		{"exact", "photosynthesis", true},
		{"answer contains expected", "the photosynthesis process", true},
		{"expected contains answer", "photo", true},
		{"case insensitive", "PHOTOSYNTHESIS", true},
		{"unrelated", "respiration", false},
		{"blank never matches", "   ", false},
		{"empty never matches", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, points := GradeAnswer(q, tt.answer)
			if entry.Correct != tt.wantOK {
				t.Errorf("GradeAnswer(%q) correct = %v, want %v", tt.answer, entry.Correct, tt.wantOK)
			}
			if tt.wantOK && points != 10 {
				t.Errorf("GradeAnswer(%q) points = %d, want 10", tt.answer, points)
			}
			if !tt.wantOK && points != 0 {
				t.Errorf("GradeAnswer(%q) points = %d, want 0", tt.answer, points)
			}
		})
	}
}

func TestGradeAnswerEssay(t *testing.T) {
	q := models.Question{
		ID:            3,
		QuestionType:  models.QuestionEssay,
		CorrectAnswer: "A model answer about the water cycle.",
		Points:        20,
	}

	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}

	tests := []struct {
		name       string
		answer     string
		wantPoints int
	}{
		{"35 words earns 6", words(35), 6},
		{"9 words earns nothing", words(9), 0},
		{"10 words earns 2", words(10), 2},
		{"long essay capped at question value", words(500), 20},
		{"empty earns nothing", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, points := GradeAnswer(q, tt.answer)
			if points != tt.wantPoints {
				t.Errorf("essay points = %d, want %d", points, tt.wantPoints)
			}
			if entry.Correct {
				t.Error("essays must never be marked correct")
			}
		})
	}
}

func TestGradeAnswerFeedbackEchoesCorrectAnswer(t *testing.T) {
	entry, _ := GradeAnswer(mcq(10), "London")
	if entry.CorrectAnswer != "Paris" {
		t.Errorf("feedback correct_answer = %q, want %q", entry.CorrectAnswer, "Paris")
	}
	if entry.UserAnswer != "London" {
		t.Errorf("feedback user_answer = %q, want %q", entry.UserAnswer, "London")
	}
	if entry.Explanation == "" {
		t.Error("feedback lost the explanation")
	}
}
