package domain

import (
	"fmt"
	"time"
)

// SourceRecord is one row of the upstream facility listing: one generating
// unit, flattened together with its parent facility. Numeric, timestamp and
// status fields are nullable upstream.
type SourceRecord struct {
	FacilityCode    string   `json:"facility_code"`
	FacilityName    string   `json:"facility_name"`
	FacilityNetwork string   `json:"facility_network"`
	FacilityRegion  string   `json:"facility_region"`
	UnitCode        *string  `json:"unit_code"`
	UnitCapacity    *float64 `json:"unit_capacity"`
	UnitLastSeen    *string  `json:"unit_last_seen"`
	UnitStatus      *string  `json:"unit_status"`
}

// Validate reports whether the record carries every field a unit needs.
// Records failing validation are dropped whole, not patched.
func (r SourceRecord) Validate() error {
	switch {
	case r.UnitCode == nil:
		return fmt.Errorf("record for facility %s: null unit_code", r.FacilityCode)
	case r.UnitCapacity == nil:
		return fmt.Errorf("unit %s: null unit_capacity", *r.UnitCode)
	case r.UnitLastSeen == nil:
		return fmt.Errorf("unit %s: null unit_last_seen", *r.UnitCode)
	case r.UnitStatus == nil:
		return fmt.Errorf("unit %s: null unit_status", *r.UnitCode)
	}
	return nil
}

// PowerSample is one 5-minute power reading from the upstream data table.
type PowerSample struct {
	UnitCode string
	Power    float64
	Interval time.Time
}

// Reading is the latest valid power reading resolved for a unit.
type Reading struct {
	Power    float64
	Interval time.Time
}

// Unit is a single generator within a facility. CurrentPower and
// CapacityFactor are present iff the unit is active with a resolved reading.
type Unit struct {
	Code           string    `json:"code"`
	Capacity       float64   `json:"capacity"`
	LastSeen       time.Time `json:"lastSeen"`
	Status         string    `json:"status"`
	Active         bool      `json:"active"`
	CurrentPower   *float64  `json:"currentPower,omitempty"`
	CapacityFactor *float64  `json:"capacityFactor,omitempty"`
	LatestInterval time.Time `json:"latestInterval"`
}

// Facility is a physical power station. Units keep the order the source
// records arrived in.
type Facility struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Region      string    `json:"region"`
	Units       []Unit    `json:"units"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// FacilityData is the published snapshot. Each refresh run replaces the
// previous snapshot entirely.
type FacilityData struct {
	Facilities  []Facility `json:"facilities"`
	LastUpdated time.Time  `json:"lastUpdated"`
}
