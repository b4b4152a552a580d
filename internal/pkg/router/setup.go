package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/giftcraft/ingest/app/controllers"
	"github.com/giftcraft/ingest/internal/pkg/config"
)

// Router registers a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps carries the constructed controllers and route settings.
type Deps struct {
	Config   *config.Config
	Webhooks *controllers.WebhookController
	Ops      *controllers.OpsController
	// LimiterStorage backs the ops rate limiter; nil keeps it in memory.
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Deps) {
	setup(app, NewWebhookRouter(deps.Webhooks), NewOpsRouter(deps.Ops, deps.Config.Ops, deps.LimiterStorage))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
