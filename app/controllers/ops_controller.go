package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/giftcraft/ingest/internal/pkg/webhooklog"
)

// StatsSource reports webhook counters per provider.
type StatsSource interface {
	Stats(ctx context.Context) (map[string]map[string]int64, error)
}

// Pinger checks a backing service.
type Pinger func(ctx context.Context) error

// OpsController serves the operator endpoints.
type OpsController struct {
	logs  webhooklog.Store
	stats StatsSource
	db    Pinger
}

func NewOpsController(logs webhooklog.Store, stats StatsSource, db Pinger) *OpsController {
	return &OpsController{logs: logs, stats: stats, db: db}
}

// HandleHealth reports liveness and database reachability.
func (o *OpsController) HandleHealth(c *fiber.Ctx) error {
	if o.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := o.db(ctx); err != nil {
			log.Warnf("[Health] database ping failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "database": "unreachable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleListWebhooks returns recent webhook log rows.
func (o *OpsController) HandleListWebhooks(c *fiber.Ctx) error {
	rows, err := o.logs.List(c.UserContext(), webhooklog.Filter{
		Provider: c.Query("provider"),
		Limit:    c.QueryInt("limit", 0),
	})
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"status": "success", "count": len(rows), "webhooks": rows})
}

// HandleWebhookStats returns outcome counters per provider.
func (o *OpsController) HandleWebhookStats(c *fiber.Ctx) error {
	if o.stats == nil {
		return errorResponse(c, fiber.StatusServiceUnavailable, "Counters unavailable")
	}
	stats, err := o.stats.Stats(c.UserContext())
	if err != nil {
		return errorResponse(c, fiber.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(fiber.Map{"status": "success", "counters": stats})
}
