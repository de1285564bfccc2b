package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coalwatch/coalwatch/internal/domain"
)

// BlobGetter reads raw bytes back from the blob store.
type BlobGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// SnapshotReader fetches and decodes the latest published snapshot for the
// render path. It holds no state between calls.
type SnapshotReader struct {
	store BlobGetter
	key   string
}

func NewSnapshotReader(store BlobGetter, key string) *SnapshotReader {
	return &SnapshotReader{store: store, key: key}
}

func (r *SnapshotReader) Latest(ctx context.Context) (*domain.FacilityData, error) {
	body, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	var data domain.FacilityData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &data, nil
}
