package generator

import (
	"strings"
	"testing"
)

func TestQuizSystemPrompt(t *testing.T) {
	prompt := QuizSystemPrompt()

	required := []string{"Mr. T", "Kenyan", "JSON array", "mcq", "short", "essay", "explanation", "points"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("quiz system prompt missing keyword %q", keyword)
		}
	}
}

func TestBuildQuizUserPrompt(t *testing.T) {
	prompt := BuildQuizUserPrompt("the water cycle", "grade 6", 7)

	required := []string{"7", "the water cycle", "grade 6", "JSON array"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("quiz user prompt missing keyword %q", keyword)
		}
	}
}

func TestTutorSystemPrompt(t *testing.T) {
	prompt := TutorSystemPrompt()

	required := []string{"Mr. T", "Kenyan", "tutor"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("tutor system prompt missing keyword %q", keyword)
		}
	}
}
