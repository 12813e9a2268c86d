// Package llm provides the chat-completion client used for translation.
// It talks to DeepSeek through its OpenAI-compatible API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
	defaultTimeout = 60 * time.Second
)

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("translation API key not set (DEEPSEEK_API_KEY)")
	// ErrInvalidResponse is returned when a response does not have the expected shape.
	ErrInvalidResponse = errors.New("invalid completion response")
)

// Config configures a Client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32
}

// Client sends single-message chat completions.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	maxTok  int
	temp    float32
	logger  *slog.Logger
}

// NewClient creates a client. Empty fields of cfg fall back to the DeepSeek defaults.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	// Trim any whitespace/newlines that might have snuck in
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	apiCfg := openai.DefaultConfig(key)
	apiCfg.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   model,
		timeout: timeout,
		maxTok:  cfg.MaxTokens,
		temp:    cfg.Temperature,
		logger:  logger.With("component", "llm"),
	}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTok,
		Temperature: c.temp,
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("API error (status %d): %w", apiErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("making request: %w", err)
	}

	content, err := validateResponse(resp)
	if err != nil {
		return "", err
	}

	c.logger.Debug("completion received",
		slog.String("model", resp.Model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.Duration("elapsed", time.Since(start)))

	return content, nil
}

// validateResponse checks the decoded response against the shape the
// translation flow relies on before any field is read.
func validateResponse(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}

	msg := resp.Choices[0].Message
	if msg.Role != "" && msg.Role != openai.ChatMessageRoleAssistant {
		return "", fmt.Errorf("%w: unexpected role %q", ErrInvalidResponse, msg.Role)
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}
	return content, nil
}
