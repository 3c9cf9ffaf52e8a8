package generator

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// LLMClient is the interface both generator implementations satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator wraps an LLMClient with quiz and tutor helpers.
type Generator struct {
	llm   LLMClient
	cache *Cache
	model string
}

func NewGenerator(cache *Cache) *Generator {
	var llm LLMClient
	model := "mock"

	if os.Getenv("MOCK_GENERATOR") == "true" {
		llm = NewMockClient()
		log.Println("[generator] using mock data")
	} else {
		model = os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		llm = NewAPIClient(model)
		log.Println("[generator] using Anthropic API:", model)
	}

	return &Generator{llm: llm, cache: cache, model: model}
}

func (g *Generator) ModelName() string {
	return g.model
}

// GenerateQuiz produces a batch of parsed questions for a topic. The
// raw model output is cached so repeated requests for the same topic,
// grade, and count skip the API call.
func (g *Generator) GenerateQuiz(ctx context.Context, topic, gradeLevel string, count int) ([]ParsedQuestion, error) {
	systemPrompt := QuizSystemPrompt()
	userPrompt := BuildQuizUserPrompt(topic, gradeLevel, count)

	if cached, ok := g.cache.Get(ctx, systemPrompt, userPrompt); ok {
		questions, err := ParseQuestions(cached)
		if err == nil {
			return questions, nil
		}
		// Stale or malformed cache entry, fall through to the model.
		log.Printf("[generator] discarding bad cache entry: %v", err)
	}

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	questions, err := ParseQuestions(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}

	g.cache.Set(ctx, systemPrompt, userPrompt, resp.Content)
	return questions, nil
}

// TutorReply answers a free-form student question in the Mr. T persona.
func (g *Generator) TutorReply(ctx context.Context, message string) (string, error) {
	resp, err := g.llm.Generate(ctx, TutorSystemPrompt(), message)
	if err != nil {
		return "", fmt.Errorf("tutor reply: %w", err)
	}
	return resp.Content, nil
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("[generator] retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("[generator] Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── MockClient — Local Development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{
		Content:      buildMockJSON(),
		PromptTokens: 800,
		OutputTokens: 1500,
	}, nil
}

func buildMockJSON() string {
	topics := []string{
		"the water cycle", "Kenyan counties", "fractions",
		"photosynthesis", "the digestive system", "simple interest",
		"Swahili grammar",
	}

	questions := "["
	for i := 0; i < 7; i++ {
		topic := topics[i%len(topics)]
		if i > 0 {
			questions += ","
		}

		switch i % 3 {
		case 0:
			questions += fmt.Sprintf(`{"question":"[Mock] Which of the following best describes %s?","type":"mcq","options":["A key natural process","An unrelated concept","A historical event","A type of measurement"],"answer":"A key natural process","explanation":"[Mock] This option correctly summarises %s as covered in the syllabus.","points":10}`, topic, topic)
		case 1:
			questions += fmt.Sprintf(`{"question":"[Mock] In one or two words, name the main idea behind %s.","type":"short","answer":"%s","explanation":"[Mock] The expected term comes directly from the lesson on %s.","points":10}`, topic, topic, topic)
		default:
			questions += fmt.Sprintf(`{"question":"[Mock] Write a short paragraph explaining %s in your own words.","type":"essay","answer":"A full explanation of %s covering its definition, how it works, and one everyday example.","explanation":"[Mock] Marks are awarded for depth and clarity when discussing %s.","points":20}`, topic, topic, topic)
		}
	}
	questions += "]"

	return questions
}
