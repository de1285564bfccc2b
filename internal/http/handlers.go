package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/coalwatch/coalwatch/internal/domain"
	"github.com/coalwatch/coalwatch/internal/pipeline"
	"github.com/coalwatch/coalwatch/internal/repository"
	"github.com/coalwatch/coalwatch/internal/view"
)

// RefreshRunner runs one refresh pipeline pass.
type RefreshRunner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// SnapshotSource fetches the latest published snapshot.
type SnapshotSource interface {
	Latest(ctx context.Context) (*domain.FacilityData, error)
}

// HistorySource lists archived refresh runs.
type HistorySource interface {
	RecentRuns(ctx context.Context, limit int) ([]repository.RefreshRun, error)
}

type Handlers struct {
	Refresher RefreshRunner
	Snapshots SnapshotSource
	History   HistorySource // nil when run history is disabled
	Secret    string
	Times     domain.Timebase
}

func Register(app *fiber.App, h *Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/refresh", h.refresh)
	app.Get("/api/snapshot", h.snapshot)
	app.Get("/api/regions", h.regions)
	app.Get("/api/history", h.history)
	app.Get("/", h.dashboard)
}

// refresh is the scheduler-facing trigger. It is guarded by a static bearer
// secret and never cached.
func (h *Handlers) refresh(c *fiber.Ctx) error {
	auth := c.Get(fiber.HeaderAuthorization)
	if h.Secret == "" || auth != "Bearer "+h.Secret {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	c.Set(fiber.HeaderCacheControl, "no-store")

	result, err := h.Refresher.Run(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("refresh run failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to generate data",
		})
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"lastUpdated": result.Data.LastUpdated,
		"message":     "Data generation completed successfully",
	})
}

func (h *Handlers) snapshot(c *fiber.Ctx) error {
	data, err := h.Snapshots.Latest(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("snapshot fetch failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "snapshot unavailable"})
	}
	return c.JSON(data)
}

func (h *Handlers) regions(c *fiber.Ctx) error {
	data, err := h.Snapshots.Latest(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("snapshot fetch failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "snapshot unavailable"})
	}

	now := h.Times.Now()
	grouped := view.GroupByRegion(data.Facilities)
	codes := make([]string, 0, len(grouped))
	for code := range grouped {
		codes = append(codes, code)
	}

	type regionStats struct {
		Code  string     `json:"code"`
		Name  string     `json:"name"`
		Stats view.Stats `json:"stats"`
	}
	out := make([]regionStats, 0, len(codes))
	for _, code := range view.SortRegions(codes) {
		out = append(out, regionStats{
			Code:  code,
			Name:  view.RegionName(code),
			Stats: view.StatsFor(grouped[code], now),
		})
	}
	return c.JSON(fiber.Map{
		"regions":     out,
		"lastUpdated": data.LastUpdated,
	})
}

func (h *Handlers) history(c *fiber.Ctx) error {
	if h.History == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run history disabled"})
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	runs, err := h.History.RecentRuns(c.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("run history query failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "history unavailable"})
	}
	return c.JSON(fiber.Map{"runs": runs})
}
