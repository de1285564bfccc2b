package domain

import (
	"fmt"
	"strings"
	"time"
)

const naiveLayout = "2006-01-02T15:04:05"

// Timebase fixes how timestamps are interpreted for one run. The grid
// operator reports in a fixed offset (UTC+10 for the NEM, no daylight
// savings) but its timestamp strings are inconsistently marked: some carry a
// Z suffix while actually holding network-local wall-clock values. Rather
// than guessing per string, the interpretation is configuration.
type Timebase struct {
	zone          *time.Location
	upstreamLocal bool
}

// NewTimebase builds a Timebase for the given fixed UTC offset.
// upstreamLocal controls whether naive and Z-marked upstream timestamps are
// read as network-local time; explicit numeric offsets are always trusted.
func NewTimebase(offsetHours int, upstreamLocal bool) Timebase {
	name := fmt.Sprintf("UTC+%d", offsetHours)
	if offsetHours < 0 {
		name = fmt.Sprintf("UTC%d", offsetHours)
	}
	return Timebase{
		zone:          time.FixedZone(name, offsetHours*3600),
		upstreamLocal: upstreamLocal,
	}
}

func (tb Timebase) Zone() *time.Location { return tb.zone }

// Now returns the current instant expressed in network time.
func (tb Timebase) Now() time.Time { return time.Now().In(tb.zone) }

// ParseUpstream parses a timestamp string from the upstream API.
func (tb Timebase) ParseUpstream(s string) (time.Time, error) {
	loc := time.UTC
	if tb.upstreamLocal {
		loc = tb.zone
	}
	if t, err := time.ParseInLocation(naiveLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse upstream timestamp %q: %w", s, err)
	}
	if tb.upstreamLocal && strings.HasSuffix(s, "Z") {
		// Z-marked but actually network-local: reinterpret the wall clock.
		return time.Date(t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), tb.zone), nil
	}
	return t.In(tb.zone), nil
}

// FormatNaive renders t as a timezone-naive string in network time, the form
// the upstream API expects for range parameters.
func (tb Timebase) FormatNaive(t time.Time) string {
	return t.In(tb.zone).Format(naiveLayout)
}

// LastCompleteInterval returns the start of the last complete 5-minute
// interval before now, in network time.
func (tb Timebase) LastCompleteInterval(now time.Time) time.Time {
	local := now.In(tb.zone)
	rounded := local.Truncate(5 * time.Minute)
	return rounded.Add(-5 * time.Minute)
}
