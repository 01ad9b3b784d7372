package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hairstory/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	apiVersion  = "2024-07"
	maxAttempts = 3
)

// Client queries one Pinecone index over the data-plane REST API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	host        string
	namespace   string
	rateLimiter *rate.Limiter
	debug       bool
	backoff     func(attempt int) time.Duration
}

// NewClient creates a new Pinecone index client. host is the index host,
// with or without scheme.
func NewClient(apiKey, host, namespace string) *Client {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey:      apiKey,
		host:        strings.TrimRight(host, "/"),
		namespace:   namespace,
		rateLimiter: rate.NewLimiter(rate.Limit(20), 40),
		backoff:     exponentialBackoff,
	}
}

// SetDebug enables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []domain.VectorMatch `json:"matches"`
}

// Search returns the topK nearest records to vector with their metadata
func (c *Client) Search(ctx context.Context, vector []float32, topK int) ([]domain.VectorMatch, error) {
	if len(vector) == 0 || topK <= 0 {
		return nil, fmt.Errorf("%w: empty vector or topK %d", domain.ErrInvalidRequest, topK)
	}

	payload, err := json.Marshal(queryRequest{
		Vector:          vector,
		TopK:            topK,
		Namespace:       c.namespace,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrSearch, err)
		}

		body, status, err := c.doRequest(ctx, payload)
		switch {
		case err != nil:
			lastErr = err
		case status == http.StatusOK:
			var resp queryResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrSearch, err)
			}
			if c.debug {
				log.Debug().Int("top_k", topK).Int("matches", len(resp.Matches)).Msg("[PINECONE] query complete")
			}
			return resp.Matches, nil
		case status == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: %w", domain.ErrSearch, domain.ErrRateLimited)
		case status >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSearch, status)
		default:
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrSearch, status, string(body))
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSearch, ctx.Err())
		}
		if attempt < maxAttempts {
			log.Warn().Err(lastErr).Int("attempt", attempt).Msg("[PINECONE] query failed, retrying")
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrSearch, ctx.Err())
			case <-time.After(c.backoff(attempt)):
			}
		}
	}

	return nil, lastErr
}

// doRequest posts a query and returns the body and status code
func (c *Client) doRequest(ctx context.Context, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/query", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Pinecone-API-Version", apiVersion)
	req.Header.Set("User-Agent", "Hairstory/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrSearch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to read response: %v", domain.ErrSearch, err)
	}
	return body, resp.StatusCode, nil
}

// exponentialBackoff returns the wait before retry attempt+1
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}
