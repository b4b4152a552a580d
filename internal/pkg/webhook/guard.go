package webhook

// Lifecycle describes the ordering of a canonical status enum.
type Lifecycle[S comparable] struct {
	// Statuses lists every canonical value.
	Statuses []S
	Rank     func(S) int
	Terminal func(S) bool
}

// Predecessors returns the stored statuses a write of target may replace.
// A non-terminal status may move to any target of equal or higher rank; a
// terminal status only accepts an identical re-application.
func (l Lifecycle[S]) Predecessors(target S) []S {
	out := make([]S, 0, len(l.Statuses))
	for _, s := range l.Statuses {
		if s == target || (!l.Terminal(s) && l.Rank(s) <= l.Rank(target)) {
			out = append(out, s)
		}
	}
	return out
}

// Allows reports whether a row currently in from may be moved to to.
func (l Lifecycle[S]) Allows(from, to S) bool {
	for _, s := range l.Predecessors(to) {
		if s == from {
			return true
		}
	}
	return false
}
