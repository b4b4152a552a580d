package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/giftcraft/ingest/app/controllers"
)

type WebhookRouter struct {
	controller *controllers.WebhookController
}

func NewWebhookRouter(controller *controllers.WebhookController) *WebhookRouter {
	return &WebhookRouter{controller: controller}
}

func (h WebhookRouter) InstallRouter(app *fiber.App) {
	// Provider webhooks (no CSRF, authenticated in controller)
	hooks := app.Group("/webhooks")
	hooks.Post("/razorpay", h.controller.HandlePaymentWebhook)
	hooks.Post("/shiprocket", h.controller.HandleLogisticsWebhook)
}
