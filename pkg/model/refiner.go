package model

import "slices"

// scoreEpsilon guards against accepting float-noise as an improvement.
const scoreEpsilon = 1e-9

// refiner improves a feasible allocation by first-improvement hill climbing
// over reassign and swap moves. Moves are drawn in a fixed order by session
// id then tutor name for reproducibility; a move is accepted only if it
// strictly improves the soft score and the incremental evaluator reports no
// new hard violation. Ties and plateaus are left as-is.
type refiner struct {
	evaluator *standardEvaluator
	budget    int
}

func newRefiner(evaluator *standardEvaluator, budget int) *refiner {
	return &refiner{evaluator: evaluator, budget: budget}
}

// Refine runs hill-climbing passes until a full pass accepts no move or the
// pass budget is exhausted. It returns the refined allocation and the number
// of accepted moves. The input allocation is mutated in place; callers that
// need the original must clone it first.
func (refiner *refiner) Refine(allocation Allocation) (Allocation, int) {
	accepted := 0
	for pass := 0; pass < refiner.budget; pass++ {
		if !refiner.pass(allocation) {
			break
		}
		accepted++
	}
	return allocation, accepted
}

// pass scans the move order and applies the first strictly improving move.
func (refiner *refiner) pass(allocation Allocation) bool {
	tutors := make([]string, 0, len(refiner.evaluator.input.Tutors))
	for _, tutor := range refiner.evaluator.input.Tutors {
		tutors = append(tutors, tutor.Name)
	}
	slices.Sort(tutors)

	for _, session := range refiner.sortedSessionIds() {
		for _, tutor := range allocation.TutorsFor(session) {
			for _, other := range tutors {
				if other == tutor {
					continue
				}
				if refiner.tryReassign(allocation, session, tutor, other) {
					return true
				}
				for _, otherSession := range allocation.Sessions(other) {
					if otherSession == session {
						continue
					}
					if refiner.trySwap(allocation, session, tutor, otherSession, other) {
						return true
					}
				}
			}
		}
	}
	return false
}

// tryReassign moves one session from tutor to other, keeping the session's
// staffing count unchanged.
func (refiner *refiner) tryReassign(allocation Allocation, session, tutor, other string) bool {
	if allocation.Assigned(Pair{Tutor: other, Session: session}) {
		return false
	}

	deltas := []Delta{
		{Pair: Pair{Tutor: tutor, Session: session}, Removed: true},
		{Pair: Pair{Tutor: other, Session: session}},
	}
	return refiner.tryMove(allocation, deltas, []string{tutor, other}, []string{session})
}

// trySwap exchanges one session each between two tutors.
func (refiner *refiner) trySwap(allocation Allocation, session, tutor, otherSession, other string) bool {
	if allocation.Assigned(Pair{Tutor: other, Session: session}) ||
		allocation.Assigned(Pair{Tutor: tutor, Session: otherSession}) {
		return false
	}

	deltas := []Delta{
		{Pair: Pair{Tutor: tutor, Session: session}, Removed: true},
		{Pair: Pair{Tutor: other, Session: otherSession}, Removed: true},
		{Pair: Pair{Tutor: tutor, Session: otherSession}},
		{Pair: Pair{Tutor: other, Session: session}},
	}
	return refiner.tryMove(allocation, deltas, []string{tutor, other}, []string{session, otherSession})
}

// tryMove applies the deltas while accumulating the incremental score
// change, then keeps the move only if it strictly improves the score without
// introducing a hard violation among the touched tutors and sessions.
func (refiner *refiner) tryMove(allocation Allocation, deltas []Delta, tutors, sessions []string) bool {
	gain := 0.0
	for _, delta := range deltas {
		gain += refiner.evaluator.SoftScoreDelta(allocation, delta)
		allocation.Apply(delta)
	}

	if gain > scoreEpsilon && len(refiner.evaluator.scopedViolations(allocation, tutors, sessions)) == 0 {
		return true
	}

	for i := len(deltas) - 1; i >= 0; i-- {
		allocation.Revert(deltas[i])
	}
	return false
}

func (refiner *refiner) sortedSessionIds() []string {
	ids := make([]string, 0, len(refiner.evaluator.input.Sessions))
	for _, session := range refiner.evaluator.input.Sessions {
		ids = append(ids, session.Id)
	}
	slices.Sort(ids)
	return ids
}
