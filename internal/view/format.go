package view

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

var regionNames = map[string]string{
	"NSW1": "New South Wales",
	"QLD1": "Queensland",
	"SA1":  "South Australia",
	"TAS1": "Tasmania",
	"VIC1": "Victoria",
	"WEM":  "Western Australia",
}

// Display order for regions (WEM last).
var regionOrder = []string{"NSW1", "QLD1", "VIC1", "SA1", "TAS1", "WEM"}

// RegionName returns the display name for a region code, falling back to
// the code itself.
func RegionName(code string) string {
	if name, ok := regionNames[code]; ok {
		return name
	}
	return code
}

// FormatMW renders a megawatt value rounded to a whole number with thousands
// separators.
func FormatMW(value float64) string {
	n := int64(math.Round(value))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}

// FormatPercentage renders a percentage rounded to a whole number, with a
// placeholder when no value is available.
func FormatPercentage(value *float64) string {
	if value == nil {
		return "-%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(*value)))
}

// FormatLastSeen renders a unit's last-seen time relative to now.
func FormatLastSeen(lastSeen, now time.Time) string {
	d := now.Sub(lastSeen)
	switch {
	case d < time.Minute:
		return "Last seen moments ago"
	case d < time.Hour:
		return fmt.Sprintf("Last seen %d minutes ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "Last seen about an hour ago"
	case d < 48*time.Hour:
		return fmt.Sprintf("Last seen %d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("Last seen %d days ago", int(d.Hours()/24))
	}
}

var (
	reBluewaters = regexp.MustCompile(`_BLUEWATE(RS)?.*$`)
	reLetterNum  = regexp.MustCompile(`([A-Z]+)(\d+)`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

var unitPrefixes = []struct{ old, new string }{
	{"GSTONE", "GS "},
	{"STAN-", "ST "},
	{"KPP_", "KP "},
	{"MPP_", "MP "},
	{"BW", "BW "},
	{"ER", "ER "},
	{"CPP", "CPP "},
	{"MP", "MP "},
}

// FormatUnitCode cleans a raw dispatch unit code for display: strips site
// suffixes, expands known prefixes, and spaces letters from numbers.
func FormatUnitCode(code string) string {
	s := reBluewaters.ReplaceAllString(code, "")
	s = reLetterNum.ReplaceAllString(s, "$1 $2")
	for _, p := range unitPrefixes {
		if strings.HasPrefix(s, p.old) {
			s = p.new + strings.TrimPrefix(s, p.old)
			break
		}
	}
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
