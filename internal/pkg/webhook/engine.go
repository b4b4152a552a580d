package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// EntityType keys the reconciler that owns a normalized event.
type EntityType string

const (
	EntitySubscription EntityType = "subscription"
	EntityShipment     EntityType = "shipment"
)

// Event is the provider-neutral shape produced by a payload normalizer.
type Event struct {
	Provider   string
	EntityType EntityType
	Kind       string
	Reference  string
	// Snapshot is the normalizer's typed entity snapshot.
	Snapshot any
	// Raw is the verified request body.
	Raw []byte
}

// Reconciler maps, resolves and applies events for one entity type.
type Reconciler interface {
	EntityType() EntityType
	Reconcile(ctx context.Context, ev Event) (Result, error)
}

// Recorder counts handled webhooks. Implementations must be best-effort.
type Recorder interface {
	Record(ctx context.Context, provider, label string)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, string) {}

// Engine routes normalized events from any dispatcher to the reconciler
// registered for their entity type.
type Engine struct {
	reconcilers map[EntityType]Reconciler
	recorder    Recorder
}

// NewEngine creates an engine. A nil recorder disables counting.
func NewEngine(recorder Recorder, reconcilers ...Reconciler) *Engine {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	e := &Engine{
		reconcilers: make(map[EntityType]Reconciler, len(reconcilers)),
		recorder:    recorder,
	}
	for _, r := range reconcilers {
		e.Register(r)
	}
	return e
}

// Register adds or replaces the reconciler for r.EntityType().
func (e *Engine) Register(r Reconciler) {
	if r == nil {
		return
	}
	e.reconcilers[r.EntityType()] = r
}

// Dispatch applies ev through its reconciler. Side-effect failures are logged
// here and never turned into an error.
func (e *Engine) Dispatch(ctx context.Context, ev Event) (Result, error) {
	r, ok := e.reconcilers[ev.EntityType]
	if !ok {
		e.recorder.Record(ctx, ev.Provider, "error")
		return Result{}, fmt.Errorf("%w: %s", ErrNoReconciler, ev.EntityType)
	}

	res, err := r.Reconcile(ctx, ev)
	if err != nil {
		if errors.Is(err, ErrEntityNotFound) {
			log.Warnf("[Webhook] %s %s %q: %v", ev.Provider, ev.Kind, ev.Reference, err)
			e.recorder.Record(ctx, ev.Provider, "entity_not_found")
		} else {
			log.Errorf("[Webhook] %s %s %q failed: %v payload=%s", ev.Provider, ev.Kind, ev.Reference, err, string(ev.Raw))
			e.recorder.Record(ctx, ev.Provider, "error")
		}
		return res, err
	}

	switch res.Outcome {
	case OutcomeApplied:
		log.Infof("[Webhook] %s %s applied to %s #%d -> %s", ev.Provider, ev.Kind, ev.EntityType, res.EntityID, res.Status)
	case OutcomeNoOp:
		log.Infof("[Webhook] %s %s %q acknowledged without change: %s", ev.Provider, ev.Kind, ev.Reference, res.Message)
	case OutcomeStale:
		log.Warnf("[Webhook] %s %s for %s #%d is stale: %s", ev.Provider, ev.Kind, ev.EntityType, res.EntityID, res.Message)
	case OutcomeNotFound:
		log.Infof("[Webhook] %s %s %q did not resolve to a local %s", ev.Provider, ev.Kind, ev.Reference, ev.EntityType)
	}

	if res.SideEffect.Failed() {
		log.Errorf("[Webhook] %s %s side effect %s failed for %s #%d: %v payload=%s",
			ev.Provider, ev.Kind, res.SideEffect.Name, ev.EntityType, res.EntityID, res.SideEffect.Err, string(ev.Raw))
		e.recorder.Record(ctx, ev.Provider, "side_effect_failed")
	}

	e.recorder.Record(ctx, ev.Provider, string(res.Outcome))
	return res, nil
}

// Reject counts a call that was refused before dispatch.
func (e *Engine) Reject(ctx context.Context, provider string, err error) {
	switch {
	case errors.Is(err, ErrAuthenticationFailure):
		e.recorder.Record(ctx, provider, "auth_failed")
	case errors.Is(err, ErrMalformedPayload):
		e.recorder.Record(ctx, provider, "malformed")
	default:
		e.recorder.Record(ctx, provider, "error")
	}
}
