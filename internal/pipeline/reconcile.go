package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coalwatch/coalwatch/internal/domain"
)

// Alerter receives out-of-band warnings for anomalous readings. May be nil.
type Alerter interface {
	AnomalousReading(ctx context.Context, facilityName, unitCode string, power, capacity float64) error
}

// Reconciler merges raw source records with resolved power readings into a
// normalized facility snapshot.
type Reconciler struct {
	resolver *Resolver
	alerts   Alerter
	times    domain.Timebase
}

func NewReconciler(resolver *Resolver, alerts Alerter, times domain.Timebase) *Reconciler {
	return &Reconciler{resolver: resolver, alerts: alerts, times: times}
}

// Reconcile groups source records into facilities and attaches activity and
// power-derived fields to each unit.
//
// Activity is decided in two passes: first by clock (last seen within the
// hour), then confirmed by telemetry. A unit that looks recently seen but
// has no power series must not be shown as generating, so it is downgraded
// to inactive with its own lastSeen standing in for the latest interval.
func (r *Reconciler) Reconcile(ctx context.Context, records []domain.SourceRecord, now time.Time) *domain.FacilityData {
	var order []string
	facilities := make(map[string]*domain.Facility)
	var maxLastSeen time.Time

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			log.Debug().Err(err).Msg("skipping record with null values")
			continue
		}
		lastSeen, err := r.times.ParseUpstream(*rec.UnitLastSeen)
		if err != nil {
			log.Debug().Err(err).Str("unit", *rec.UnitCode).
				Msg("skipping record with unparseable last seen")
			continue
		}

		f, ok := facilities[rec.FacilityCode]
		if !ok {
			f = &domain.Facility{
				Code:        rec.FacilityCode,
				Name:        rec.FacilityName,
				Region:      rec.FacilityRegion,
				LastUpdated: now,
			}
			facilities[rec.FacilityCode] = f
			order = append(order, rec.FacilityCode)
		}
		f.Units = append(f.Units, domain.Unit{
			Code:     *rec.UnitCode,
			Capacity: *rec.UnitCapacity,
			LastSeen: lastSeen,
			Status:   *rec.UnitStatus,
		})
		if lastSeen.After(maxLastSeen) {
			maxLastSeen = lastSeen
		}
	}

	data := &domain.FacilityData{LastUpdated: now}
	if len(order) == 0 {
		return data
	}

	// One batched power fetch across all facilities, windowed on the latest
	// telemetry we know about.
	readings := r.resolver.ResolveLatestPower(ctx, order, maxLastSeen)

	for _, code := range order {
		f := facilities[code]
		for i := range f.Units {
			r.applyReading(ctx, f, &f.Units[i], readings, now)
		}
		data.Facilities = append(data.Facilities, *f)
	}
	return data
}

func (r *Reconciler) applyReading(ctx context.Context, f *domain.Facility, u *domain.Unit, readings map[string]domain.Reading, now time.Time) {
	if !IsActive(u.LastSeen, now) {
		u.Active = false
		u.LatestInterval = u.LastSeen
		log.Debug().Str("facility", f.Name).Str("unit", u.Code).
			Time("lastSeen", u.LastSeen).Msg("unit inactive")
		return
	}

	reading, ok := readings[u.Code]
	if !ok {
		// Active by clock but no telemetry: effectively inactive.
		u.Active = false
		u.LatestInterval = u.LastSeen
		log.Debug().Str("facility", f.Name).Str("unit", u.Code).
			Msg("no current power data")
		return
	}

	if reading.Power > u.Capacity {
		log.Warn().Str("facility", f.Name).Str("unit", u.Code).
			Float64("power", reading.Power).Float64("capacity", u.Capacity).
			Msg("power reading exceeds nameplate capacity")
		if r.alerts != nil {
			if err := r.alerts.AnomalousReading(ctx, f.Name, u.Code, reading.Power, u.Capacity); err != nil {
				log.Error().Err(err).Msg("anomaly alert failed")
			}
		}
	}

	power := reading.Power
	factor := round2(power / u.Capacity * 100)
	u.Active = true
	u.CurrentPower = &power
	u.CapacityFactor = &factor
	u.LatestInterval = reading.Interval
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
