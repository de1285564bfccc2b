package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coalwatch/coalwatch/internal/domain"
)

// BlobStore is the put-by-path storage the snapshot is published to.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Publisher serializes a snapshot and writes it to its fixed blob location,
// overwriting the previous one. A publish failure is fatal to the refresh
// run; the caller decides how to signal that.
type Publisher struct {
	store BlobStore
	key   string
}

func NewPublisher(store BlobStore, key string) *Publisher {
	return &Publisher{store: store, key: key}
}

// Publish writes data as JSON and returns the resolved snapshot URL.
func (p *Publisher) Publish(ctx context.Context, data *domain.FacilityData) (string, error) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	url, err := p.store.Put(ctx, p.key, body, "application/json")
	if err != nil {
		return "", fmt.Errorf("publish snapshot: %w", err)
	}
	return url, nil
}
