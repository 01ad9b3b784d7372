package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Embedder turns text into a fixed-dimension embedding vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher finds the nearest records to a query vector in one corpus
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]VectorMatch, error)
}

// ChatCompleter generates text from a list of messages
type ChatCompleter interface {
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
}

// EventPublisher publishes domain events to a message bus
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}
