package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/billing"
	"github.com/giftcraft/ingest/internal/pkg/config"
	"github.com/giftcraft/ingest/internal/pkg/logistics"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
	"github.com/giftcraft/ingest/internal/pkg/webhooklog"
)

const (
	headerPaymentSignature = "X-Razorpay-Signature"
	headerPaymentEventID   = "X-Razorpay-Event-Id"
	headerLogisticsToken   = "X-Api-Key"
)

// WebhookController hosts the provider webhook endpoints. Each handler
// verifies, logs, normalizes and hands the event to the engine.
type WebhookController struct {
	cfg    *config.Config
	engine *webhook.Engine
	logs   webhooklog.Store
}

// NewWebhookController wires the handlers to their collaborators.
func NewWebhookController(cfg *config.Config, engine *webhook.Engine, logs webhooklog.Store) *WebhookController {
	return &WebhookController{cfg: cfg, engine: engine, logs: logs}
}

// HandlePaymentWebhook handles subscription lifecycle events.
func (w *WebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	provider := models.WebhookProviderRazorpay

	verdict := webhook.VerifySignature(rawBody, c.Get(headerPaymentSignature), w.cfg.PaymentWebhookSecret)
	if verdict == webhook.VerdictInvalid {
		w.engine.Reject(c.UserContext(), provider, webhook.ErrAuthenticationFailure)
		log.Warnf("[Webhook] %s rejected: invalid signature from %s", provider, c.IP())
		return errorResponse(c, fiber.StatusBadRequest, "Invalid signature")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), w.cfg.WebhookTimeout)
	defer cancel()

	ev, normErr := billing.Normalize(rawBody)
	row := w.appendLog(ctx, webhooklog.Entry{
		Provider:   provider,
		DeliveryID: c.Get(headerPaymentEventID),
		EventType:  payloadEventType(ev, normErr),
		Payload:    rawBody,
		Verdict:    string(verdict),
	})
	if normErr != nil {
		w.engine.Reject(ctx, provider, normErr)
		w.markLog(ctx, row, "malformed", normErr)
		return errorResponse(c, fiber.StatusBadRequest, normErr.Error())
	}

	res, err := w.engine.Dispatch(ctx, ev)
	switch {
	case errors.Is(err, webhook.ErrEntityNotFound):
		w.markLog(ctx, row, string(webhook.OutcomeNotFound), err)
		return errorResponse(c, fiber.StatusNotFound, "Subscription not found")
	case err != nil:
		w.markLog(ctx, row, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}

	w.markLog(ctx, row, string(res.Outcome), sideEffectErr(res))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": res.Message,
		"outcome": res.Outcome,
	})
}

// HandleLogisticsWebhook handles shipment tracking events.
func (w *WebhookController) HandleLogisticsWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	provider := models.WebhookProviderShiprocket

	verdict := webhook.VerifyToken(c.Get(headerLogisticsToken), w.cfg.LogisticsWebhookSecret)
	if verdict == webhook.VerdictInvalid {
		w.engine.Reject(c.UserContext(), provider, webhook.ErrAuthenticationFailure)
		log.Warnf("[Webhook] %s rejected: invalid token from %s", provider, c.IP())
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), w.cfg.WebhookTimeout)
	defer cancel()

	ev, normErr := logistics.Normalize(rawBody)
	row := w.appendLog(ctx, webhooklog.Entry{
		Provider:  provider,
		EventType: payloadEventType(ev, normErr),
		Payload:   rawBody,
		Verdict:   string(verdict),
	})
	if normErr != nil {
		w.engine.Reject(ctx, provider, normErr)
		w.markLog(ctx, row, "malformed", normErr)
		return errorResponse(c, fiber.StatusBadRequest, "Invalid JSON data")
	}

	res, err := w.engine.Dispatch(ctx, ev)
	if err != nil {
		w.markLog(ctx, row, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
	w.markLog(ctx, row, string(res.Outcome), sideEffectErr(res))

	body := fiber.Map{"status": "success", "message": res.Message}
	switch res.Outcome {
	case webhook.OutcomeApplied:
		body["order_number"] = res.Reference
		body["new_status"] = res.Status
	case webhook.OutcomeStale:
		body["order_number"] = res.Reference
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// appendLog stores the verified body. A failed append is logged and processing
// continues without a log row.
func (w *WebhookController) appendLog(ctx context.Context, e webhooklog.Entry) *models.WebhookLog {
	if w.logs == nil {
		return nil
	}
	row, err := w.logs.Append(ctx, e)
	if err != nil {
		log.Errorf("[Webhook] %s: failed to store webhook log: %v", e.Provider, err)
		return nil
	}
	return row
}

func (w *WebhookController) markLog(ctx context.Context, row *models.WebhookLog, outcome string, processingErr error) {
	if w.logs == nil || row == nil {
		return
	}
	if err := w.logs.MarkProcessed(ctx, row.ID, outcome, processingErr); err != nil {
		log.Errorf("[Webhook] %s: failed to annotate webhook log %d: %v", row.Provider, row.ID, err)
	}
}

func payloadEventType(ev webhook.Event, err error) string {
	if err != nil {
		return ""
	}
	return strings.TrimSpace(ev.Kind)
}

func sideEffectErr(res webhook.Result) error {
	if res.SideEffect.Failed() {
		return res.SideEffect.Err
	}
	return nil
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": message})
}
