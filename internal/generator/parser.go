package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tkrell/backend/internal/models"
)

// ParsedQuestion is one question as emitted by the model, before it is
// persisted.
type ParsedQuestion struct {
	Question    string   `json:"question"`
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	Points      int      `json:"points"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseQuestions extracts and validates the JSON question array from a
// raw model response.
func ParseQuestions(responseBody string) ([]ParsedQuestion, error) {
	cleaned := stripCodeFences(responseBody)

	// Models occasionally wrap the array in a sentence or two. Trim to
	// the outermost array before unmarshalling.
	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}
	cleaned = cleaned[start : end+1]

	var questions []ParsedQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	// Points default by type when the model omits them.
	for i := range questions {
		if questions[i].Points <= 0 {
			if questions[i].Type == string(models.QuestionEssay) {
				questions[i].Points = 20
			} else {
				questions[i].Points = 10
			}
		}
	}

	return questions, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateQuestions(questions []ParsedQuestion) error {
	var errs []string

	if len(questions) == 0 {
		return &ValidationError{Errors: []string{"no questions in response"}}
	}

	for i, q := range questions {
		qNum := i + 1

		if strings.TrimSpace(q.Question) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty question text", qNum))
		}

		if !models.ValidQuestionTypes[models.QuestionType(q.Type)] {
			errs = append(errs, fmt.Sprintf("question %d: invalid type %q", qNum, q.Type))
			continue
		}

		if strings.TrimSpace(q.Answer) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty answer", qNum))
		}

		if q.Type == string(models.QuestionMCQ) {
			if len(q.Options) < 2 {
				errs = append(errs, fmt.Sprintf("question %d: mcq needs at least 2 options, got %d", qNum, len(q.Options)))
				continue
			}
			found := false
			for _, opt := range q.Options {
				if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(q.Answer)) {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, fmt.Sprintf("question %d: answer %q not among options", qNum, q.Answer))
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
