package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type backtrackingAllocator struct {
	config Config
}

// NewBacktrackingAllocator builds the constructive search allocator: sessions
// are decided most-constrained first, candidate subsets are enumerated from
// the minimum staffing upward with forward checking, and a feasible seed is
// improved by local search before being returned.
func NewBacktrackingAllocator(config Config) Allocator {
	return &backtrackingAllocator{config: config}
}

func (allocator *backtrackingAllocator) Build(input ModelInput) (Allocation, error) {
	evaluator := NewEvaluator(input, allocator.config).(*standardEvaluator)

	// An externally supplied allocation is validated and refined in place of
	// a search from scratch.
	if allocator.config.Seed != nil {
		seed := allocator.config.Seed.Clone()
		if violations := evaluator.Violations(seed); len(violations) > 0 {
			return nil, InfeasibleError{Violations: violations}
		}
		refined, _ := newRefiner(evaluator, allocator.config.RefinementBudget).Refine(seed)
		return refined, nil
	}

	violations, err := checkCoverage(input)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, InfeasibleError{Violations: violations}
	}

	search := newSearch(input, evaluator, allocator.config.MaxBacktracks)
	allocation, err := search.run()
	if err != nil {
		return nil, err
	}

	refined, _ := newRefiner(evaluator, allocator.config.RefinementBudget).Refine(allocation)
	return refined, nil
}

func (allocator *backtrackingAllocator) Verify(allocation Allocation, input ModelInput) bool {
	evaluator := NewEvaluator(input, allocator.config)
	return len(evaluator.Violations(allocation)) == 0
}

// decisionFrame is one entry of the explicit backtracking stack: a session
// together with the candidate subsets still to try. Keeping the stack
// explicit makes backtrack depth and budget observable.
type decisionFrame struct {
	session    Session
	candidates []string
	size       int
	combo      []int
	applied    []string
}

func newDecisionFrame(session Session, candidates []string) *decisionFrame {
	return &decisionFrame{
		session:    session,
		candidates: candidates,
		size:       session.LowerTutorCount,
	}
}

// next advances to the following candidate subset, growing the subset size
// from the session's minimum staffing toward its maximum.
func (frame *decisionFrame) next() ([]string, bool) {
	limit := min(frame.session.UpperTutorCount, len(frame.candidates))
	for frame.size <= limit {
		if frame.combo == nil {
			frame.combo = make([]int, frame.size)
			for i := range frame.combo {
				frame.combo[i] = i
			}
			return frame.subset(), true
		}
		if advanceCombination(frame.combo, len(frame.candidates)) {
			return frame.subset(), true
		}
		frame.size++
		frame.combo = nil
	}
	return nil, false
}

func (frame *decisionFrame) subset() []string {
	subset := make([]string, len(frame.combo))
	for i, index := range frame.combo {
		subset[i] = frame.candidates[index]
	}
	return subset
}

// advanceCombination steps index combinations in lexicographic order.
func advanceCombination(combo []int, n int) bool {
	for i := len(combo) - 1; i >= 0; i-- {
		if combo[i] < n-(len(combo)-i) {
			combo[i]++
			for j := i + 1; j < len(combo); j++ {
				combo[j] = combo[j-1] + 1
			}
			return true
		}
	}
	return false
}

type search struct {
	input     ModelInput
	evaluator *standardEvaluator
	budget    int

	order      []Session
	allocation Allocation
	hours      map[string]int
	dayHours   map[string]map[Day]int

	frames     []*decisionFrame
	backtracks int

	deepest     int
	diagnostics []Violation
}

func newSearch(input ModelInput, evaluator *standardEvaluator, budget int) *search {
	return &search{
		input:      input,
		evaluator:  evaluator,
		budget:     budget,
		order:      decisionOrder(input),
		allocation: NewAllocation(),
		hours:      make(map[string]int),
		dayHours:   make(map[string]map[Day]int),
		deepest:    -1,
	}
}

// decisionOrder sorts sessions by descending constrainedness: the fewer
// available tutors a session has beyond its minimum staffing, the earlier it
// is decided, so that dead ends surface while the stack is still shallow.
func decisionOrder(input ModelInput) []Session {
	available := make(map[string]int, len(input.Sessions))
	for _, session := range input.Sessions {
		for _, tutor := range input.Tutors {
			if input.Availability.Available(tutor.Name, session.Id) {
				available[session.Id]++
			}
		}
	}

	order := slices.Clone(input.Sessions)
	slices.SortFunc(order, func(a, b Session) int {
		if c := cmp.Compare(available[a.Id]-a.LowerTutorCount, available[b.Id]-b.LowerTutorCount); c != 0 {
			return c
		}
		if c := cmp.Compare(b.LowerTutorCount, a.LowerTutorCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Id, b.Id)
	})
	return order
}

func (search *search) run() (Allocation, error) {
	if len(search.order) == 0 {
		if search.fill() {
			return search.allocation, nil
		}
		return nil, InfeasibleError{Violations: search.diagnostics}
	}

	search.frames = append(search.frames, newDecisionFrame(search.order[0], search.candidates(search.order[0])))

	for {
		if len(search.frames) == 0 {
			return nil, InfeasibleError{Violations: search.diagnostics}
		}

		frame := search.frames[len(search.frames)-1]
		search.unapply(frame)

		subset, ok := frame.next()
		if !ok {
			search.recordDeepest(len(search.frames)-1, search.evaluator.scopedViolations(search.allocation, nil, []string{frame.session.Id}))
			search.frames = search.frames[:len(search.frames)-1]
			if search.backtracks++; search.backtracks > search.budget {
				return nil, BudgetExceededError{Phase: "search", Budget: search.budget}
			}
			continue
		}

		search.apply(frame, subset)
		if search.subsetBlocked(frame) {
			continue
		}
		if ok, violations := search.forwardCheck(); !ok {
			search.recordDeepest(len(search.frames), violations)
			continue
		}

		if len(search.frames) == len(search.order) {
			if search.fill() {
				return search.allocation, nil
			}
			continue
		}

		next := search.order[len(search.frames)]
		search.frames = append(search.frames, newDecisionFrame(next, search.candidates(next)))
	}
}

// candidates lists the tutors assignable to the session under the current
// partial allocation, ordered so that tutors with the least hours headroom
// come first and flexible tutors are saved for later sessions; a preference
// match breaks ties.
func (search *search) candidates(session Session) []string {
	candidates := make([]string, 0)
	for _, tutor := range search.input.Tutors {
		if search.eligible(tutor, session) {
			candidates = append(candidates, tutor.Name)
		}
	}

	slices.SortFunc(candidates, func(a, b string) int {
		headroomA := search.evaluator.tutors[a].UpperHrLimit - search.hours[a]
		headroomB := search.evaluator.tutors[b].UpperHrLimit - search.hours[b]
		if c := cmp.Compare(headroomA, headroomB); c != 0 {
			return c
		}
		matchA, matchB := search.prefers(a, session.Id), search.prefers(b, session.Id)
		if matchA != matchB {
			if matchA {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return candidates
}

func (search *search) prefers(tutor, session string) bool {
	pattern := search.evaluator.preferences[tutor]
	return pattern != nil && pattern.MatchString(session)
}

// eligible reports whether adding (tutor, session) violates none of the
// invariants decidable against the current partial allocation.
func (search *search) eligible(tutor Tutor, session Session) bool {
	if search.allocation.Assigned(Pair{Tutor: tutor.Name, Session: session.Id}) {
		return false
	}
	if !search.input.Availability.Available(tutor.Name, session.Id) {
		return false
	}
	if search.hours[tutor.Name]+session.Duration > tutor.UpperHrLimit {
		return false
	}
	if search.dayHours[tutor.Name][session.Day]+session.Duration > tutor.DailyMax {
		return false
	}
	for assigned := range search.allocation[tutor.Name] {
		if slices.Contains(search.evaluator.clashes[session.Id], assigned) {
			return false
		}
	}
	return true
}

func (search *search) apply(frame *decisionFrame, subset []string) {
	for _, tutor := range subset {
		search.assign(Pair{Tutor: tutor, Session: frame.session.Id})
	}
	frame.applied = subset
}

func (search *search) unapply(frame *decisionFrame) {
	for _, tutor := range frame.applied {
		search.unassign(Pair{Tutor: tutor, Session: frame.session.Id})
	}
	frame.applied = nil
}

func (search *search) assign(pair Pair) {
	session := search.evaluator.sessions[pair.Session]
	search.allocation.Assign(pair)
	search.hours[pair.Tutor] += session.Duration
	if _, ok := search.dayHours[pair.Tutor]; !ok {
		search.dayHours[pair.Tutor] = make(map[Day]int)
	}
	search.dayHours[pair.Tutor][session.Day] += session.Duration
}

func (search *search) unassign(pair Pair) {
	session := search.evaluator.sessions[pair.Session]
	search.allocation.Unassign(pair)
	search.hours[pair.Tutor] -= session.Duration
	search.dayHours[pair.Tutor][session.Day] -= session.Duration
}

// subsetBlocked consults the scoped evaluator for violations the applied
// subset can no longer heal: upper-bound breaches, and a junior-only staffing
// with no room left for a senior.
func (search *search) subsetBlocked(frame *decisionFrame) bool {
	violations := search.evaluator.scopedViolations(search.allocation, frame.applied, []string{frame.session.Id})
	for _, violation := range violations {
		switch violation.Kind {
		case ViolationAvailability, ViolationOverlap:
			return true
		case ViolationJuniorCoverage:
			if len(frame.applied) >= frame.session.UpperTutorCount {
				return true
			}
		default:
			if violation.excess() {
				return true
			}
		}
	}
	return false
}

// forwardCheck fails fast when an undecided session can no longer reach its
// minimum staffing, or a tutor can no longer reach their lower hour limit
// even if granted every remaining session they are available for.
func (search *search) forwardCheck() (bool, []Violation) {
	for i := len(search.frames); i < len(search.order); i++ {
		session := search.order[i]
		eligible := 0
		for _, tutor := range search.input.Tutors {
			if search.eligible(tutor, session) {
				eligible++
			}
		}
		if eligible < session.LowerTutorCount {
			return false, []Violation{{
				Kind:    ViolationSessionCapacity,
				Session: session.Id,
				Amount:  eligible,
				Limit:   session.LowerTutorCount,
				Message: fmt.Sprintf("session %v has only %d assignable tutors left but requires %d", session.Id, eligible, session.LowerTutorCount),
			}}
		}
	}

	for _, tutor := range search.input.Tutors {
		if search.hours[tutor.Name] >= tutor.LowerHrLimit {
			continue
		}
		potential := search.hours[tutor.Name]
		for _, session := range search.input.Sessions {
			pair := Pair{Tutor: tutor.Name, Session: session.Id}
			if !search.allocation.Assigned(pair) && search.input.Availability.Available(tutor.Name, session.Id) {
				potential += session.Duration
			}
		}
		if potential < tutor.LowerHrLimit {
			return false, []Violation{{
				Kind:    ViolationTutorHours,
				Tutor:   tutor.Name,
				Amount:  potential,
				Limit:   tutor.LowerHrLimit,
				Message: fmt.Sprintf("%v can reach at most %d hours but requires at least %d", tutor.Name, potential, tutor.LowerHrLimit),
			}}
		}
	}

	return true, nil
}

// fill tops the minimum-staffing allocation up: a senior is added to any
// junior-only multi-tutor session, and tutors below their lower hour limit
// receive further sessions with capacity slack. Every addition is guarded by
// the incremental evaluator; on failure all additions are reverted so the
// search can backtrack cleanly.
func (search *search) fill() bool {
	added := make([]Pair, 0)

	revert := func(violations []Violation) bool {
		search.recordDeepest(len(search.order), violations)
		for _, pair := range added {
			search.unassign(pair)
		}
		return false
	}

	for _, session := range search.order {
		if pair, ok := search.juniorRepair(session); ok {
			search.assign(pair)
			added = append(added, pair)
		}
	}

	for _, tutor := range search.sortedTutors() {
		for search.hours[tutor.Name] < tutor.LowerHrLimit {
			pair, ok := search.fillPair(tutor)
			if !ok {
				return revert([]Violation{{
					Kind:    ViolationTutorHours,
					Tutor:   tutor.Name,
					Amount:  search.hours[tutor.Name],
					Limit:   tutor.LowerHrLimit,
					Message: fmt.Sprintf("%v is assigned %d hours but requires at least %d and no session can take them", tutor.Name, search.hours[tutor.Name], tutor.LowerHrLimit),
				}})
			}
			search.assign(pair)
			added = append(added, pair)
		}
	}

	if violations := search.evaluator.Violations(search.allocation); len(violations) > 0 {
		return revert(violations)
	}
	return true
}

// juniorRepair proposes a senior for a multi-tutor session currently staffed
// only by juniors.
func (search *search) juniorRepair(session Session) (Pair, bool) {
	violations := search.evaluator.scopedViolations(search.allocation, nil, []string{session.Id})
	broken := slices.ContainsFunc(violations, func(violation Violation) bool {
		return violation.Kind == ViolationJuniorCoverage
	})
	if !broken || len(search.allocation.TutorsFor(session.Id)) >= session.UpperTutorCount {
		return Pair{}, false
	}

	for _, tutor := range search.sortedTutors() {
		if tutor.IsJunior || !search.eligible(tutor, session) {
			continue
		}
		pair := Pair{Tutor: tutor.Name, Session: session.Id}
		if !search.additionBlocked(pair) {
			return pair, true
		}
	}
	return Pair{}, false
}

// fillPair proposes one further session for a tutor below their lower hour
// limit.
func (search *search) fillPair(tutor Tutor) (Pair, bool) {
	for _, session := range search.sortedSessions() {
		if len(search.allocation.TutorsFor(session.Id)) >= session.UpperTutorCount {
			continue
		}
		if !search.eligible(tutor, session) {
			continue
		}
		pair := Pair{Tutor: tutor.Name, Session: session.Id}
		if !search.additionBlocked(pair) {
			return pair, true
		}
	}
	return Pair{}, false
}

// additionBlocked checks a candidate addition against the incremental
// evaluator, rejecting it when it introduces a violation that later
// additions cannot heal.
func (search *search) additionBlocked(pair Pair) bool {
	violations := search.evaluator.DeltaViolations(search.allocation, Delta{Pair: pair})
	for _, violation := range violations {
		switch violation.Kind {
		case ViolationAvailability, ViolationOverlap, ViolationJuniorCoverage:
			return true
		default:
			if violation.excess() {
				return true
			}
		}
	}
	return false
}

func (search *search) sortedTutors() []Tutor {
	tutors := slices.Clone(search.input.Tutors)
	slices.SortFunc(tutors, func(a, b Tutor) int { return strings.Compare(a.Name, b.Name) })
	return tutors
}

func (search *search) sortedSessions() []Session {
	sessions := slices.Clone(search.input.Sessions)
	slices.SortFunc(sessions, func(a, b Session) int { return strings.Compare(a.Id, b.Id) })
	return sessions
}

// recordDeepest keeps the violations implicated by the deepest dead end so
// an infeasibility report can name the unsatisfiable sessions and tutors.
func (search *search) recordDeepest(depth int, violations []Violation) {
	if depth < search.deepest || len(violations) == 0 {
		return
	}
	search.deepest = depth
	search.diagnostics = violations
}
