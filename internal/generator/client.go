package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	openai "github.com/sashabaranov/go-openai"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/config"
	"github.com/studysphere/backend/internal/logger"
)

// ErrNoProvider is returned by every call when no AI key is configured.
var ErrNoProvider = apperr.Misconfigured("AI provider is not configured")

// Prompt is a single-turn request. An empty System is omitted.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// LLMClient is the interface every model backend satisfies.
type LLMClient interface {
	Generate(ctx context.Context, p Prompt) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// NewClient picks the backend named by cfg.LLMProvider. A provider without a key
// yields an UnconfiguredClient so the server still starts.
func NewClient(cfg *config.Config, log *logger.Logger) LLMClient {
	switch cfg.LLMProvider {
	case config.ProviderMock:
		log.Info("LLM client using mock data")
		return NewMockClient()
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			log.Error("ANTHROPIC_API_KEY is not set; AI features disabled")
			return UnconfiguredClient{}
		}
		log.Info("LLM client using Anthropic API", "model", cfg.AnthropicModel)
		return NewAPIClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	default:
		if cfg.GroqAPIKey == "" {
			log.Error("GROQ_API_KEY is not set; AI features disabled")
			return UnconfiguredClient{}
		}
		log.Info("LLM client using Groq", "model", cfg.GroqModel, "base_url", cfg.GroqBaseURL)
		return NewOpenAIClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
	}
}

// ── OpenAIClient: Groq and other OpenAI-compatible APIs ───

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cc.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cc), model: model}
}

func (c *OpenAIClient) Generate(ctx context.Context, p Prompt) (*LLMResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if p.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(p.Temperature),
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty chat response")
	}

	return &LLMResponse{
		Content:      resp.Choices[0].Message.Content,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// ── APIClient: Anthropic SDK ──────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(apiKey, model string) *APIClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, p Prompt) (*LLMResponse, error) {
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: param.NewOpt(p.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	}
	if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      text,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// ── UnconfiguredClient ─────────────────────────────────────

type UnconfiguredClient struct{}

func (UnconfiguredClient) Generate(ctx context.Context, p Prompt) (*LLMResponse, error) {
	return nil, ErrNoProvider
}

// ── MockClient: Local Development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, p Prompt) (*LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content := "[Mock] This option matches the definition in the study material, while the other options describe related but different ideas."
	if strings.Contains(p.User, `"correctIndex"`) || strings.Contains(p.User, `"answerIndex"`) {
		content = buildMockJSON(mockCount(p.User))
	}
	return &LLMResponse{Content: content, PromptTokens: len(p.User) / 4, OutputTokens: len(content) / 4}, nil
}

// mockCount reads the "exactly N" instruction back out of a quiz prompt.
func mockCount(prompt string) int {
	var n int
	if i := strings.Index(prompt, "exactly "); i >= 0 {
		fmt.Sscanf(prompt[i+len("exactly "):], "%d", &n)
	}
	if n < 1 {
		n = 5
	}
	return n
}

func buildMockJSON(n int) string {
	topics := []string{"photosynthesis", "normalization", "supply and demand", "the water cycle", "recursion"}
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		topic := topics[i%len(topics)]
		fmt.Fprintf(&sb,
			`{"question":"[Mock] Which statement best describes %s?","options":["A correct description of %s","A common misconception about %s","An unrelated definition","A reversed cause and effect"],"correctIndex":%d,"answerIndex":%d}`,
			topic, topic, topic, 0, 0)
	}
	sb.WriteString("]")
	return sb.String()
}
