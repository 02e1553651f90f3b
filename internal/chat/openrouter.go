package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"samarkand-dashboard/internal/common/config"
	commonhttp "samarkand-dashboard/internal/common/http"
	"samarkand-dashboard/internal/common/observability"
)

var (
	ErrModelUnavailable  = errors.New("LLM_UNAVAILABLE")
	ErrCompletionFailed  = errors.New("LLM_REQUEST_FAILED")
	ErrCompletionTimeout = errors.New("LLM_TIMEOUT")
)

// Completer sends one system+user exchange to a completion model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenRouterClient calls an OpenAI-compatible chat completions endpoint.
type OpenRouterClient struct {
	client      *commonhttp.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

func NewOpenRouterClient(cfg config.ChatConfig) *OpenRouterClient {
	return &OpenRouterClient{
		// no client timeout: the deadline comes from the request context
		client:      commonhttp.NewClient(0),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     config.GetDuration(cfg.Timeout),
	}
}

// Configured reports whether an API key is present.
func (c *OpenRouterClient) Configured() bool {
	return c.apiKey != ""
}

func (c *OpenRouterClient) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", ErrModelUnavailable
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := observability.StartSpan(ctx, "chat.completion", attribute.String("model", c.model))
	defer span.End()

	req := completionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	var resp completionResponse
	if err := c.client.PostJSON(ctx, c.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		span.RecordError(err)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrCompletionTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrCompletionFailed)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty content", ErrCompletionFailed)
	}
	return content, nil
}
