package quiz

import (
	"strings"

	"github.com/tkrell/backend/internal/models"
)

// GradeAnswer scores a single submitted answer against its question
// and returns the feedback entry plus the points awarded.
//
// Short answers are matched by substring containment in either
// direction, so "photosynthesis process" is accepted for an expected
// answer of "photosynthesis" and vice versa. This is intentionally
// forgiving; students type partial phrases all the time.
func GradeAnswer(q models.Question, answer string) (models.FeedbackEntry, int) {
	entry := models.FeedbackEntry{
		QuestionID:    q.ID,
		UserAnswer:    answer,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}

	// A blank submission never earns points. This check has to come
	// before the type rules: strings.Contains(x, "") is always true.
	if strings.TrimSpace(answer) == "" {
		return entry, 0
	}

	switch q.QuestionType {
	case models.QuestionMCQ:
		if strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer)) {
			entry.Correct = true
			entry.Points = q.Points
		}

	case models.QuestionShort:
		got := strings.ToLower(strings.TrimSpace(answer))
		want := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
		if strings.Contains(got, want) || strings.Contains(want, got) {
			entry.Correct = true
			entry.Points = q.Points
		}

	case models.QuestionEssay:
		// Essays earn 2 points per 10 words written, capped at the
		// question value. They are never marked "correct"; the model
		// answer in the feedback is the real teaching tool here.
		words := len(strings.Fields(answer))
		points := (words / 10) * 2
		if points > q.Points {
			points = q.Points
		}
		entry.Points = points
	}

	return entry, entry.Points
}
