package generator

import (
	"strings"
	"testing"
)

const validResponse = `[
	{"question":"What is the capital of Kenya?","type":"mcq","options":["Nairobi","Mombasa","Kisumu","Nakuru"],"answer":"Nairobi","explanation":"Nairobi has been the capital since 1907.","points":10},
	{"question":"Name the process plants use to make food.","type":"short","answer":"photosynthesis","explanation":"Plants convert sunlight into energy through photosynthesis.","points":10},
	{"question":"Explain the water cycle in your own words.","type":"essay","answer":"A paragraph covering evaporation, condensation, and precipitation.","explanation":"Marks for covering all three stages.","points":20}
]`

func TestParseQuestionsValid(t *testing.T) {
	questions, err := ParseQuestions(validResponse)
	if err != nil {
		t.Fatalf("ParseQuestions() error = %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
	if questions[0].Type != "mcq" || len(questions[0].Options) != 4 {
		t.Errorf("mcq question parsed wrong: %+v", questions[0])
	}
	if questions[2].Points != 20 {
		t.Errorf("essay points = %d, want 20", questions[2].Points)
	}
}

func TestParseQuestionsCodeFenced(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	questions, err := ParseQuestions(fenced)
	if err != nil {
		t.Fatalf("ParseQuestions() error = %v", err)
	}
	if len(questions) != 3 {
		t.Errorf("got %d questions, want 3", len(questions))
	}
}

func TestParseQuestionsWithSurroundingProse(t *testing.T) {
	wrapped := "Here is your quiz:\n" + validResponse + "\nGood luck!"
	questions, err := ParseQuestions(wrapped)
	if err != nil {
		t.Fatalf("ParseQuestions() error = %v", err)
	}
	if len(questions) != 3 {
		t.Errorf("got %d questions, want 3", len(questions))
	}
}

func TestParseQuestionsDefaultsPoints(t *testing.T) {
	resp := `[
		{"question":"2 + 2?","type":"short","answer":"4","explanation":"Basic addition."},
		{"question":"Describe rain.","type":"essay","answer":"Water falling from clouds.","explanation":"Any reasonable description."}
	]`
	questions, err := ParseQuestions(resp)
	if err != nil {
		t.Fatalf("ParseQuestions() error = %v", err)
	}
	if questions[0].Points != 10 {
		t.Errorf("short default points = %d, want 10", questions[0].Points)
	}
	if questions[1].Points != 20 {
		t.Errorf("essay default points = %d, want 20", questions[1].Points)
	}
}

func TestParseQuestionsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no array", "sorry, I cannot do that", "no JSON array"},
		{"empty array", "[]", "no questions"},
		{"bad type", `[{"question":"q","type":"truefalse","answer":"yes","explanation":"e"}]`, "invalid type"},
		{"mcq answer not in options", `[{"question":"q","type":"mcq","options":["a","b","c","d"],"answer":"e","explanation":"x"}]`, "not among options"},
		{"mcq too few options", `[{"question":"q","type":"mcq","options":["a"],"answer":"a","explanation":"x"}]`, "at least 2 options"},
		{"empty answer", `[{"question":"q","type":"short","answer":"  ","explanation":"x"}]`, "empty answer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuestions(tt.body)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParseQuestionsMCQAnswerCaseInsensitive(t *testing.T) {
	resp := `[{"question":"Capital?","type":"mcq","options":["Nairobi","Mombasa"],"answer":"nairobi","explanation":"x"}]`
	if _, err := ParseQuestions(resp); err != nil {
		t.Errorf("case-differing mcq answer rejected: %v", err)
	}
}

func TestMockClientOutputParses(t *testing.T) {
	questions, err := ParseQuestions(buildMockJSON())
	if err != nil {
		t.Fatalf("mock output failed to parse: %v", err)
	}
	if len(questions) != 7 {
		t.Errorf("mock produced %d questions, want 7", len(questions))
	}
}
