package view

import (
	"math"
	"sort"
	"time"

	"github.com/coalwatch/coalwatch/internal/domain"
	"github.com/coalwatch/coalwatch/internal/pipeline"
)

// Stats are the derived numbers shown per region (or for any facility
// group). They are recomputed on every render from the snapshot, never
// stored.
type Stats struct {
	TotalCapacity               float64 `json:"totalCapacity"`
	OperationalCapacity         float64 `json:"operationalCapacity"`
	CurrentPower                float64 `json:"currentPower"`
	PercentageOperational       int     `json:"percentageOperational"`
	OperatingCapacityPercentage int     `json:"operatingCapacityPercentage"`
}

// StatsFor computes aggregate stats for a group of facilities.
//
// Operational capacity re-classifies each unit against the render-time clock
// rather than trusting the snapshot's stored active flag: a snapshot ages
// between refreshes, and units fall out of the activity window while it sits
// in storage. Current power, by contrast, only exists in the snapshot, so
// the stored flag gates it.
func StatsFor(facilities []domain.Facility, now time.Time) Stats {
	var s Stats
	for _, f := range facilities {
		for _, u := range f.Units {
			s.TotalCapacity += u.Capacity
			if pipeline.IsActive(u.LastSeen, now) {
				s.OperationalCapacity += u.Capacity
			}
			if u.Active && u.CurrentPower != nil {
				s.CurrentPower += *u.CurrentPower
			}
		}
	}
	if s.TotalCapacity > 0 {
		s.PercentageOperational = int(math.Round(s.OperationalCapacity / s.TotalCapacity * 100))
		s.OperatingCapacityPercentage = int(math.Round(s.CurrentPower / s.TotalCapacity * 100))
	}
	return s
}

// Aggregate groups facilities by region and computes stats per region.
func Aggregate(facilities []domain.Facility, now time.Time) map[string]Stats {
	out := make(map[string]Stats)
	for region, group := range GroupByRegion(facilities) {
		out[region] = StatsFor(group, now)
	}
	return out
}

// GroupByRegion buckets facilities by their region code.
func GroupByRegion(facilities []domain.Facility) map[string][]domain.Facility {
	out := make(map[string][]domain.Facility)
	for _, f := range facilities {
		out[f.Region] = append(out[f.Region], f)
	}
	return out
}

// SortRegions orders region codes for display: mainland regions first in
// their fixed precedence, the isolated WEM grid last among the known ones,
// anything unknown after that in lexical order.
func SortRegions(regions []string) []string {
	rank := func(region string) int {
		for i, r := range regionOrder {
			if r == region {
				return i
			}
		}
		return len(regionOrder)
	}
	sorted := make([]string, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rank(sorted[i]), rank(sorted[j])
		if ri != rj {
			return ri < rj
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}
