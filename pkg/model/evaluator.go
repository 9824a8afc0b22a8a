package model

// Evaluator reports hard-constraint violations and the soft-objective score
// of candidate allocations. The delta forms recompute only the invariants a
// single-pair change can affect, which keeps the search and refinement
// engines tractable on non-trivial instances.
type Evaluator interface {
	// Violations evaluates every hard invariant against the full allocation
	// and returns each violated instance in a deterministic order.
	Violations(allocation Allocation) []Violation

	// DeltaViolations returns the violations that would hold after applying
	// the delta, restricted to the invariants reachable from the changed
	// pair. The allocation is the state before the change and is left
	// unmodified.
	DeltaViolations(allocation Allocation, delta Delta) []Violation

	// SoftScore computes the soft objective: a contiguity bonus per adjacent
	// same-day session pair held by a block-preferring tutor plus a bonus
	// per assigned session matching the tutor's preference pattern.
	SoftScore(allocation Allocation) float64

	// SoftScoreDelta returns the score change applying the delta would
	// cause. The allocation is the state before the change.
	SoftScoreDelta(allocation Allocation, delta Delta) float64
}
