package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coalwatch/coalwatch/internal/domain"
)

// PowerSource supplies raw 5-minute power samples for a set of facilities.
type PowerSource interface {
	PowerData(ctx context.Context, facilityCodes []string, dateStart string) ([]domain.PowerSample, error)
}

// Resolver reduces raw power samples to one latest valid reading per unit.
type Resolver struct {
	src   PowerSource
	times domain.Timebase
}

func NewResolver(src PowerSource, times domain.Timebase) *Resolver {
	return &Resolver{src: src, times: times}
}

// ResolveLatestPower fetches samples for the hour ending at windowEnd and
// picks, per unit, the most recent sample with a non-negative power value.
// Negative readings are sentinels and skipped, not clamped. Units with no
// qualifying sample are absent from the result. An upstream failure degrades
// to an empty map: downstream treats every unit in the batch as having no
// current data, never aborting the refresh.
func (r *Resolver) ResolveLatestPower(ctx context.Context, facilityCodes []string, windowEnd time.Time) map[string]domain.Reading {
	readings := make(map[string]domain.Reading)
	if len(facilityCodes) == 0 {
		return readings
	}

	windowStart := windowEnd.Add(-time.Hour)
	dateStart := r.times.FormatNaive(windowStart)

	log.Debug().Int("facilities", len(facilityCodes)).
		Str("from", dateStart).Str("to", r.times.FormatNaive(windowEnd)).
		Msg("fetching power data")

	samples, err := r.src.PowerData(ctx, facilityCodes, dateStart)
	if err != nil {
		log.Error().Err(err).Msg("power data fetch failed, treating batch as no data")
		return readings
	}

	byUnit := make(map[string][]domain.PowerSample)
	for _, s := range samples {
		byUnit[s.UnitCode] = append(byUnit[s.UnitCode], s)
	}

	for unit, group := range byUnit {
		sort.Slice(group, func(i, j int) bool {
			return group[i].Interval.After(group[j].Interval)
		})
		for _, s := range group {
			if s.Power >= 0 {
				readings[unit] = domain.Reading{Power: s.Power, Interval: s.Interval}
				break
			}
		}
	}

	log.Debug().Int("rows", len(samples)).Int("units", len(readings)).
		Msg("resolved power readings")
	return readings
}
