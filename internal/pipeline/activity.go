package pipeline

import "time"

// activityWindow is how recently a unit must have been seen to count as
// active by clock alone.
const activityWindow = time.Hour

// IsActive reports whether a unit with the given last-seen time is active at
// now. The boundary is strict: a unit last seen exactly one hour ago is
// inactive. Both arguments must share a time base; the caller is expected to
// pass network time on both sides.
func IsActive(lastSeen, now time.Time) bool {
	return lastSeen.After(now.Add(-activityWindow))
}
