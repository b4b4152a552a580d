package webhook

// Outcome describes what the primary state transition did.
type Outcome string

const (
	// OutcomeApplied means the entity row was updated.
	OutcomeApplied Outcome = "applied"
	// OutcomeNoOp means the event was understood but intentionally ignored.
	OutcomeNoOp Outcome = "noop"
	// OutcomeStale means the stored state is already ahead of the event.
	OutcomeStale Outcome = "stale"
	// OutcomeNotFound means the entity could not be resolved and that is benign.
	OutcomeNotFound Outcome = "not_found"
)

// Result separates the primary transition from its best-effort side effect.
// Only the primary part decides the response code.
type Result struct {
	Outcome   Outcome
	EntityID  uint
	Reference string
	Status    string
	Message   string

	SideEffect *SideEffectResult
}

// SideEffectResult reports a secondary write. Err is nil on success.
type SideEffectResult struct {
	Name string
	Err  error
}

// Failed reports whether the side effect was attempted and failed.
func (r *SideEffectResult) Failed() bool {
	return r != nil && r.Err != nil
}

// Acknowledged reports whether the provider should receive a success response.
func (r Result) Acknowledged() bool {
	switch r.Outcome {
	case OutcomeApplied, OutcomeNoOp, OutcomeStale, OutcomeNotFound:
		return true
	default:
		return false
	}
}
