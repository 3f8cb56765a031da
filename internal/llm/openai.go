// Package llm generates chat replies with an OpenAI-compatible model.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/gcbaptista/space-chatbot/internal/errors"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultTimeout   = 20 * time.Second
	DefaultMaxTokens = 800

	// DefaultSystemPrompt sets the assistant persona.
	DefaultSystemPrompt = "Bạn là trợ lý thiên văn học thân thiện, chuyên trả lời bằng tiếng Việt về Hệ Mặt Trời và chương trình vũ trụ Việt Nam. " +
		"Chỉ dùng thông tin trong ngữ cảnh được cung cấp khi có thể, trả lời ngắn gọn và chính xác."
)

// Config configures the OpenAI generator.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	Temperature  float32
	MaxTokens    int
	SystemPrompt string
}

// OpenAIGenerator calls the chat completions API.
type OpenAIGenerator struct {
	client       *openai.Client
	model        string
	timeout      time.Duration
	temperature  float32
	maxTokens    int
	systemPrompt string
	logger       *slog.Logger
}

// NewOpenAIGenerator creates a generator. It returns errors.ErrGeneratorUnavailable
// when no API key is configured.
func NewOpenAIGenerator(cfg Config, logger *slog.Logger) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai api key not set: %w", errors.ErrGeneratorUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	logger.Info("Initializing OpenAI generator", slog.String("model", cfg.Model))
	return &OpenAIGenerator{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        cfg.Model,
		timeout:      cfg.Timeout,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		systemPrompt: cfg.SystemPrompt,
		logger:       logger.With(slog.String("component", "llm")),
	}, nil
}

// Generate sends prompt as the user message and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	g.logger.Debug("Generating reply", slog.String("model", g.model), slog.Int("prompt_length", len(prompt)))
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w: %v", errors.ErrGeneratorUnavailable, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai returned no content: %w", errors.ErrGeneratorUnavailable)
	}

	g.logger.Debug("Received reply", slog.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Disabled is a generator that always fails, used when no model is configured.
type Disabled struct{}

// Generate always returns errors.ErrGeneratorUnavailable.
func (Disabled) Generate(context.Context, string) (string, error) {
	return "", errors.ErrGeneratorUnavailable
}
