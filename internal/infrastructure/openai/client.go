package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hairstory/backend/internal/domain"
	"github.com/rs/zerolog/log"
	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultChatModel is used for profile extraction, questions and recommendations
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel matches the reviews corpus
	DefaultEmbeddingModel = "text-embedding-3-small"

	maxAttempts = 3
)

// Config holds OpenAI client settings
type Config struct {
	APIKey            string
	BaseURL           string // optional, for proxies and tests
	ChatModel         string
	EmbeddingModel    string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client implements domain.Embedder and domain.ChatCompleter on the OpenAI API
type Client struct {
	api            *goopenai.Client
	chatModel      string
	embeddingModel string
	rateLimiter    *rate.Limiter
	backoff        func(attempt int) time.Duration
}

// NewClient creates a new OpenAI client
func NewClient(cfg Config) *Client {
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}

	return &Client{
		api:            goopenai.NewClientWithConfig(apiCfg),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		rateLimiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		backoff:        backoff,
	}
}

// WithEmbeddingModel returns a client embedding with a different model. The
// rate limiter is shared with the receiver. Each corpus must be queried with
// the model it was indexed with.
func (c *Client) WithEmbeddingModel(model string) *Client {
	clone := *c
	if model != "" {
		clone.embeddingModel = model
	}
	return &clone
}

// Embed returns the embedding vector for text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp goopenai.EmbeddingResponse
	err := c.retry(ctx, "embedding", func() error {
		var err error
		resp, err = c.api.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
			Input: []string{text},
			Model: goopenai.EmbeddingModel(c.embeddingModel),
		})
		return err
	})
	if err != nil {
		return nil, wrap(domain.ErrEmbedding, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", domain.ErrEmbedding)
	}
	return resp.Data[0].Embedding, nil
}

// Complete returns the first choice of a chat completion
func (c *Client) Complete(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    make([]goopenai.ChatCompletionMessage, len(messages)),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for i, m := range messages {
		req.Messages[i] = goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	start := time.Now()
	var resp goopenai.ChatCompletionResponse
	err := c.retry(ctx, "completion", func() error {
		var err error
		resp, err = c.api.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return "", wrap(domain.ErrCompletion, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", domain.ErrCompletion)
	}

	log.Debug().
		Str("model", c.chatModel).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("[OPENAI] completion received")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// retry runs call up to maxAttempts times, retrying only transient failures
func (c *Client) retry(ctx context.Context, op string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == maxAttempts {
			break
		}

		log.Warn().Err(lastErr).Str("op", op).Int("attempt", attempt).Msg("[OPENAI] request failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff(attempt)):
		}
	}
	return lastErr
}

// statusCode extracts the HTTP status from a go-openai error, or 0
func statusCode(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	code := statusCode(err)
	return code == 0 || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func wrap(kind, err error) error {
	if statusCode(err) == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: %v", kind, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", kind, err)
}

func backoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}
