package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coalwatch/coalwatch/internal/domain"
)

type fakeBlobStore struct {
	objects map[string][]byte
	putErr  error
	getErr  error
	puts    int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts++
	f.objects[key] = data
	return "https://blob.test/" + key, nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func sampleData() *domain.FacilityData {
	zone := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, zone)
	power := 500.0
	factor := 75.76
	return &domain.FacilityData{
		LastUpdated: now,
		Facilities: []domain.Facility{{
			Code:        "BAYSW",
			Name:        "Bayswater Power Station",
			Region:      "NSW1",
			LastUpdated: now,
			Units: []domain.Unit{{
				Code:           "A1",
				Capacity:       660,
				LastSeen:       now.Add(-30 * time.Minute),
				Status:         "operating",
				Active:         true,
				CurrentPower:   &power,
				CapacityFactor: &factor,
				LatestInterval: now.Add(-10 * time.Minute),
			}},
		}},
	}
}

func TestPublishOverwritesFixedKey(t *testing.T) {
	store := newFakeBlobStore()
	p := NewPublisher(store, "data/facilities.json")

	url, err := p.Publish(context.Background(), sampleData())
	require.NoError(t, err)
	assert.Equal(t, "https://blob.test/data/facilities.json", url)

	// A second publish replaces the object at the same key.
	_, err = p.Publish(context.Background(), &domain.FacilityData{LastUpdated: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 2, store.puts)
	assert.Len(t, store.objects, 1)
}

func TestPublishFailureIsFatal(t *testing.T) {
	store := newFakeBlobStore()
	store.putErr = errors.New("write denied")
	p := NewPublisher(store, "data/facilities.json")

	_, err := p.Publish(context.Background(), sampleData())
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newFakeBlobStore()
	p := NewPublisher(store, "data/facilities.json")
	r := NewSnapshotReader(store, "data/facilities.json")

	want := sampleData()
	_, err := p.Publish(context.Background(), want)
	require.NoError(t, err)

	got, err := r.Latest(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Facilities, 1)
	require.Len(t, got.Facilities[0].Units, 1)
	wu := want.Facilities[0].Units[0]
	gu := got.Facilities[0].Units[0]
	assert.Equal(t, wu.Code, gu.Code)
	assert.Equal(t, wu.Capacity, gu.Capacity)
	assert.Equal(t, wu.Active, gu.Active)
	require.NotNil(t, gu.CurrentPower)
	assert.Equal(t, *wu.CurrentPower, *gu.CurrentPower)
	require.NotNil(t, gu.CapacityFactor)
	assert.Equal(t, 75.76, *gu.CapacityFactor, "capacity factor must survive the round trip exactly")
	assert.True(t, gu.LastSeen.Equal(wu.LastSeen))
	assert.True(t, gu.LatestInterval.Equal(wu.LatestInterval))
	assert.True(t, got.LastUpdated.Equal(want.LastUpdated))
}

func TestSnapshotReaderMissingObject(t *testing.T) {
	r := NewSnapshotReader(newFakeBlobStore(), "data/facilities.json")
	_, err := r.Latest(context.Background())
	assert.Error(t, err)
}
