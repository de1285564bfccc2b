package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func completeRecord() SourceRecord {
	return SourceRecord{
		FacilityCode:   "BAYSW",
		FacilityName:   "Bayswater",
		FacilityRegion: "NSW1",
		UnitCode:       strPtr("A1"),
		UnitCapacity:   f64Ptr(660),
		UnitLastSeen:   strPtr("2025-06-01T12:00:00"),
		UnitStatus:     strPtr("operating"),
	}
}

func TestSourceRecordValidate(t *testing.T) {
	assert.NoError(t, completeRecord().Validate())

	tests := []struct {
		name   string
		mutate func(*SourceRecord)
	}{
		{"null unit_code", func(r *SourceRecord) { r.UnitCode = nil }},
		{"null unit_capacity", func(r *SourceRecord) { r.UnitCapacity = nil }},
		{"null unit_last_seen", func(r *SourceRecord) { r.UnitLastSeen = nil }},
		{"null unit_status", func(r *SourceRecord) { r.UnitStatus = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := completeRecord()
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestUnitJSONShape(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, zone)

	active := Unit{
		Code:           "A1",
		Capacity:       660,
		LastSeen:       now.Add(-30 * time.Minute),
		Status:         "operating",
		Active:         true,
		CurrentPower:   f64Ptr(500),
		CapacityFactor: f64Ptr(75.76),
		LatestInterval: now.Add(-10 * time.Minute),
	}
	body, err := json.Marshal(active)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"capacityFactor":75.76`)
	assert.Contains(t, string(body), `"currentPower":500`)

	inactive := Unit{
		Code:           "B2",
		Capacity:       500,
		LastSeen:       now.Add(-2 * time.Hour),
		Status:         "operating",
		LatestInterval: now.Add(-2 * time.Hour),
	}
	body, err = json.Marshal(inactive)
	require.NoError(t, err)
	// Power fields are absent, not null, on inactive units.
	assert.False(t, strings.Contains(string(body), "currentPower"))
	assert.False(t, strings.Contains(string(body), "capacityFactor"))

	var back Unit
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Nil(t, back.CurrentPower)
	assert.True(t, back.LastSeen.Equal(inactive.LastSeen))
}
