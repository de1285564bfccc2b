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

type fakePowerSource struct {
	samples  []domain.PowerSample
	err      error
	calls    int
	gotCodes []string
	gotStart string
}

func (f *fakePowerSource) PowerData(_ context.Context, codes []string, dateStart string) ([]domain.PowerSample, error) {
	f.calls++
	f.gotCodes = codes
	f.gotStart = dateStart
	return f.samples, f.err
}

func TestResolveLatestPowerPicksNewestValidReading(t *testing.T) {
	times := domain.NewTimebase(10, true)
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, times.Zone())

	src := &fakePowerSource{samples: []domain.PowerSample{
		{UnitCode: "A1", Power: 400, Interval: end.Add(-20 * time.Minute)},
		{UnitCode: "A1", Power: 500, Interval: end.Add(-10 * time.Minute)},
		{UnitCode: "A1", Power: 450, Interval: end.Add(-15 * time.Minute)},
	}}
	r := NewResolver(src, times)

	got := r.ResolveLatestPower(context.Background(), []string{"FAC1"}, end)
	require.Contains(t, got, "A1")
	assert.Equal(t, 500.0, got["A1"].Power)
	assert.True(t, got["A1"].Interval.Equal(end.Add(-10*time.Minute)))
}

func TestResolveLatestPowerSkipsNegativeReadings(t *testing.T) {
	times := domain.NewTimebase(10, true)
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, times.Zone())

	src := &fakePowerSource{samples: []domain.PowerSample{
		// Newest reading is a sentinel; the resolver must fall back to the
		// next one, not clamp to zero.
		{UnitCode: "A1", Power: -1, Interval: end.Add(-5 * time.Minute)},
		{UnitCode: "A1", Power: 320, Interval: end.Add(-10 * time.Minute)},
		{UnitCode: "B2", Power: -100, Interval: end.Add(-5 * time.Minute)},
	}}
	r := NewResolver(src, times)

	got := r.ResolveLatestPower(context.Background(), []string{"FAC1"}, end)
	require.Contains(t, got, "A1")
	assert.Equal(t, 320.0, got["A1"].Power)
	// All of B2's readings are invalid, so it is omitted rather than zeroed.
	assert.NotContains(t, got, "B2")
}

func TestResolveLatestPowerAcceptsZero(t *testing.T) {
	times := domain.NewTimebase(10, true)
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, times.Zone())

	src := &fakePowerSource{samples: []domain.PowerSample{
		{UnitCode: "A1", Power: 0, Interval: end.Add(-5 * time.Minute)},
	}}
	r := NewResolver(src, times)

	got := r.ResolveLatestPower(context.Background(), []string{"FAC1"}, end)
	require.Contains(t, got, "A1")
	assert.Equal(t, 0.0, got["A1"].Power)
}

func TestResolveLatestPowerWindowStart(t *testing.T) {
	times := domain.NewTimebase(10, true)
	end := time.Date(2025, 6, 1, 12, 0, 0, 0, times.Zone())

	src := &fakePowerSource{}
	r := NewResolver(src, times)
	r.ResolveLatestPower(context.Background(), []string{"FAC1", "FAC2"}, end)

	assert.Equal(t, []string{"FAC1", "FAC2"}, src.gotCodes)
	assert.Equal(t, "2025-06-01T11:00:00", src.gotStart)
}

func TestResolveLatestPowerUpstreamFailure(t *testing.T) {
	times := domain.NewTimebase(10, true)
	src := &fakePowerSource{err: errors.New("upstream down")}
	r := NewResolver(src, times)

	got := r.ResolveLatestPower(context.Background(), []string{"FAC1"}, times.Now())
	assert.Empty(t, got)
}

func TestResolveLatestPowerNoFacilities(t *testing.T) {
	times := domain.NewTimebase(10, true)
	src := &fakePowerSource{}
	r := NewResolver(src, times)

	got := r.ResolveLatestPower(context.Background(), nil, times.Now())
	assert.Empty(t, got)
	assert.Zero(t, src.calls)
}
