package events

import (
	"context"
	"testing"

	"github.com/hairstory/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ domain.EventPublisher = (*NATSPublisher)(nil)
	_ domain.EventPublisher = LogPublisher{}
)

func TestEncode(t *testing.T) {
	data, err := encode(domain.RecommendationEvent{ID: "evt-1", Products: []string{"Hair Balm"}, Messages: 4})

	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "evt-1", "products": ["Hair Balm"], "messages": 4, "timestamp": ""}`, string(data))

	_, err = encode(make(chan int))
	assert.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	var p LogPublisher

	assert.NoError(t, p.Publish(context.Background(), "hairstory.recommendations", map[string]string{"id": "evt-1"}))
	assert.Error(t, p.Publish(context.Background(), "hairstory.recommendations", func() {}))
}

func TestNATSPublisher_RejectsUnencodablePayload(t *testing.T) {
	p := &NATSPublisher{}

	err := p.Publish(context.Background(), "hairstory.recommendations", make(chan int))

	assert.ErrorContains(t, err, "marshal payload")
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	p := &NATSPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, "hairstory.recommendations", map[string]string{"id": "evt-1"})

	assert.ErrorIs(t, err, context.Canceled)
}
