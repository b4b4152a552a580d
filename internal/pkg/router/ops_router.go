package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/giftcraft/ingest/app/controllers"
	"github.com/giftcraft/ingest/internal/pkg/config"
	"github.com/giftcraft/ingest/internal/pkg/middleware"
)

type OpsRouter struct {
	controller *controllers.OpsController
	cfg        config.OpsConfig
	storage    fiber.Storage
}

func NewOpsRouter(controller *controllers.OpsController, cfg config.OpsConfig, storage fiber.Storage) *OpsRouter {
	return &OpsRouter{controller: controller, cfg: cfg, storage: storage}
}

func (h OpsRouter) InstallRouter(app *fiber.App) {
	app.Get("/healthz", h.controller.HandleHealth)

	if !h.cfg.Enabled() {
		return
	}
	ops := app.Group("/ops", middleware.OpsRateLimit(h.cfg.RateLimit, h.storage), middleware.OpsBasicAuth(h.cfg))
	ops.Get("/webhooks", h.controller.HandleListWebhooks)
	ops.Get("/webhooks/stats", h.controller.HandleWebhookStats)
	ops.Get("/metrics", monitor.New())
}
