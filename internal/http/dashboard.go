package http

import (
	"bytes"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/coalwatch/coalwatch/internal/domain"
	"github.com/coalwatch/coalwatch/internal/view"
)

type regionCard struct {
	Code       string
	Name       string
	Stats      view.Stats
	Facilities []domain.Facility
}

type dashboardPage struct {
	Regions     []regionCard
	LastUpdated time.Time
	Now         time.Time
}

var tmplFuncs = template.FuncMap{
	"mw":       view.FormatMW,
	"pct":      view.FormatPercentage,
	"unitCode": view.FormatUnitCode,
	"lastSeen": view.FormatLastSeen,
	"deref": func(f *float64) float64 {
		if f == nil {
			return 0
		}
		return *f
	},
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(tmplFuncs).Parse(dashboardHTML))
var errorTmpl = template.Must(template.New("error").Parse(errorHTML))

// dashboard renders the region-grouped facility status page from the latest
// snapshot. The handler is stateless: one snapshot fetch per request, no
// caching of stale data on failure.
func (h *Handlers) dashboard(c *fiber.Ctx) error {
	data, err := h.Snapshots.Latest(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("snapshot fetch failed")
		var buf bytes.Buffer
		if terr := errorTmpl.Execute(&buf, nil); terr != nil {
			return c.Status(fiber.StatusBadGateway).SendString("facility data unavailable")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Status(fiber.StatusBadGateway).Send(buf.Bytes())
	}

	now := h.Times.Now()
	grouped := view.GroupByRegion(data.Facilities)
	codes := make([]string, 0, len(grouped))
	for code := range grouped {
		codes = append(codes, code)
	}

	page := dashboardPage{LastUpdated: data.LastUpdated, Now: now}
	for _, code := range view.SortRegions(codes) {
		page.Regions = append(page.Regions, regionCard{
			Code:       code,
			Name:       view.RegionName(code),
			Stats:      view.StatsFor(grouped[code], now),
			Facilities: grouped[code],
		})
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, page); err != nil {
		log.Error().Err(err).Msg("dashboard render failed")
		return c.Status(fiber.StatusInternalServerError).SendString("render failed")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Coal Facility Status</title>
<style>
body { font-family: sans-serif; margin: 2rem; background: #f6f6f4; color: #222; }
h1 { margin-bottom: 0.25rem; }
.updated { color: #666; font-size: 0.85rem; margin-bottom: 1.5rem; }
.region { background: #fff; border: 1px solid #ddd; border-radius: 8px; padding: 1rem 1.25rem; margin-bottom: 1.25rem; }
.region h2 { margin: 0 0 0.25rem; }
.region .stats { color: #444; font-size: 0.9rem; margin-bottom: 0.75rem; }
.facility { border-top: 1px solid #eee; padding: 0.5rem 0; }
.facility .name { font-weight: 600; }
.unit { display: inline-block; margin: 0.25rem 0.75rem 0.25rem 0; font-size: 0.85rem; }
.dot { display: inline-block; width: 0.6em; height: 0.6em; border-radius: 50%; margin-right: 0.3em; }
.on { background: #2f9e44; }
.off { background: #adb5bd; }
</style>
</head>
<body>
<h1>Coal Facility Status</h1>
<div class="updated">Last updated {{.LastUpdated.Format "2 Jan 2006 15:04 MST"}}</div>
{{range .Regions}}
<div class="region">
  <h2>{{.Name}}</h2>
  <div class="stats">
    {{mw .Stats.CurrentPower}} MW of {{mw .Stats.TotalCapacity}} MW
    &middot; {{.Stats.PercentageOperational}}% operational
    &middot; {{.Stats.OperatingCapacityPercentage}}% of capacity generating
  </div>
  {{range .Facilities}}
  <div class="facility">
    <span class="name">{{.Name}}</span>
    <div>
    {{range .Units}}
      <span class="unit">
        <span class="dot {{if .Active}}on{{else}}off{{end}}"></span>
        {{unitCode .Code}}
        {{if .Active}}&mdash; {{mw (deref .CurrentPower)}} MW ({{pct .CapacityFactor}}){{else}}&mdash; {{lastSeen .LastSeen $.Now}}{{end}}
      </span>
    {{end}}
    </div>
  </div>
  {{end}}
</div>
{{end}}
</body>
</html>
`

const errorHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Coal Facility Status</title>
</head>
<body>
<h1>Something went wrong</h1>
<p>The facility data could not be loaded.</p>
<p><a href="/">Try again</a></p>
</body>
</html>
`
