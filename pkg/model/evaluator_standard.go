package model

import (
	"fmt"
	"regexp"
	"slices"
)

type standardEvaluator struct {
	input    ModelInput
	tutors   map[string]Tutor
	sessions map[string]Session

	// Precomputed time relations between sessions, keyed by session id.
	clashes   map[string][]string // sessions intersecting in time on the same day
	following map[string][]string // sessions starting exactly where this one ends
	preceding map[string][]string // sessions ending exactly where this one starts

	preferences map[string]*regexp.Regexp

	contigWeight     float64
	preferenceWeight float64
}

// NewEvaluator builds an evaluator with the session time relations and
// tutor preference patterns resolved once up front.
func NewEvaluator(input ModelInput, config Config) Evaluator {
	evaluator := &standardEvaluator{
		input:            input,
		tutors:           make(map[string]Tutor, len(input.Tutors)),
		sessions:         make(map[string]Session, len(input.Sessions)),
		clashes:          make(map[string][]string),
		following:        make(map[string][]string),
		preceding:        make(map[string][]string),
		preferences:      make(map[string]*regexp.Regexp, len(input.Tutors)),
		contigWeight:     config.ContigWeight,
		preferenceWeight: config.PreferenceWeight,
	}

	for _, tutor := range input.Tutors {
		evaluator.tutors[tutor.Name] = tutor
		if tutor.SessionPreference != "" {
			// Patterns were validated during input construction.
			evaluator.preferences[tutor.Name] = regexp.MustCompile(tutor.SessionPreference)
		}
	}

	for _, session := range input.Sessions {
		evaluator.sessions[session.Id] = session
	}
	for _, session := range input.Sessions {
		for _, other := range input.Sessions {
			if session.Id == other.Id || session.Day != other.Day {
				continue
			}
			if session.Overlaps(other) {
				evaluator.clashes[session.Id] = append(evaluator.clashes[session.Id], other.Id)
			}
			if session.StartTime+session.Duration == other.StartTime {
				evaluator.following[session.Id] = append(evaluator.following[session.Id], other.Id)
				evaluator.preceding[other.Id] = append(evaluator.preceding[other.Id], session.Id)
			}
		}
	}
	for _, relation := range []map[string][]string{evaluator.clashes, evaluator.following, evaluator.preceding} {
		for _, ids := range relation {
			slices.Sort(ids)
		}
	}

	return evaluator
}

func (evaluator *standardEvaluator) Violations(allocation Allocation) []Violation {
	violations := make([]Violation, 0)

	for _, pair := range allocation.Pairs() {
		violations = append(violations, evaluator.availabilityViolations(pair)...)
	}
	for _, session := range evaluator.input.Sessions {
		violations = append(violations, evaluator.sessionViolations(allocation, session)...)
	}
	for _, tutor := range evaluator.input.Tutors {
		violations = append(violations, evaluator.tutorViolations(allocation, tutor)...)
	}

	slices.SortFunc(violations, compareViolations)
	return violations
}

func (evaluator *standardEvaluator) DeltaViolations(allocation Allocation, delta Delta) []Violation {
	allocation.Apply(delta)
	defer allocation.Revert(delta)
	return evaluator.scopedViolations(allocation, []string{delta.Pair.Tutor}, []string{delta.Pair.Session})
}

// scopedViolations evaluates only the invariant instances reachable from the
// given tutors and sessions: their availability pairs, the sessions' capacity
// and junior coverage, and the tutors' hours, overlaps and daily caps.
func (evaluator *standardEvaluator) scopedViolations(allocation Allocation, tutors []string, sessionIds []string) []Violation {
	violations := make([]Violation, 0)

	seenTutors := make(map[string]bool)
	for _, name := range tutors {
		if seenTutors[name] {
			continue
		}
		seenTutors[name] = true

		for _, id := range sessionIds {
			if allocation.Assigned(Pair{Tutor: name, Session: id}) {
				violations = append(violations, evaluator.availabilityViolations(Pair{Tutor: name, Session: id})...)
			}
		}
		if tutor, ok := evaluator.tutors[name]; ok {
			violations = append(violations, evaluator.tutorViolations(allocation, tutor)...)
		}
	}

	seenSessions := make(map[string]bool)
	for _, id := range sessionIds {
		if seenSessions[id] {
			continue
		}
		seenSessions[id] = true

		if session, ok := evaluator.sessions[id]; ok {
			violations = append(violations, evaluator.sessionViolations(allocation, session)...)
		}
	}

	slices.SortFunc(violations, compareViolations)
	return violations
}

func (evaluator *standardEvaluator) availabilityViolations(pair Pair) []Violation {
	if evaluator.input.Availability.Available(pair.Tutor, pair.Session) {
		return nil
	}
	return []Violation{{
		Kind:    ViolationAvailability,
		Tutor:   pair.Tutor,
		Session: pair.Session,
		Message: fmt.Sprintf("%v is not available for session %v", pair.Tutor, pair.Session),
	}}
}

func (evaluator *standardEvaluator) sessionViolations(allocation Allocation, session Session) []Violation {
	violations := make([]Violation, 0)
	assigned := allocation.TutorsFor(session.Id)

	if len(assigned) < session.LowerTutorCount {
		violations = append(violations, Violation{
			Kind:    ViolationSessionCapacity,
			Session: session.Id,
			Amount:  len(assigned),
			Limit:   session.LowerTutorCount,
			Message: fmt.Sprintf("session %v has %d tutors assigned but requires at least %d", session.Id, len(assigned), session.LowerTutorCount),
		})
	}
	if len(assigned) > session.UpperTutorCount {
		violations = append(violations, Violation{
			Kind:    ViolationSessionCapacity,
			Session: session.Id,
			Amount:  len(assigned),
			Limit:   session.UpperTutorCount,
			Message: fmt.Sprintf("session %v has %d tutors assigned but allows at most %d", session.Id, len(assigned), session.UpperTutorCount),
		})
	}

	if session.UpperTutorCount > 1 && len(assigned) > 0 {
		allJunior := true
		for _, name := range assigned {
			if tutor, ok := evaluator.tutors[name]; ok && !tutor.IsJunior {
				allJunior = false
				break
			}
		}
		if allJunior {
			violations = append(violations, Violation{
				Kind:    ViolationJuniorCoverage,
				Session: session.Id,
				Message: fmt.Sprintf("session %v is staffed only by junior tutors", session.Id),
			})
		}
	}

	return violations
}

func (evaluator *standardEvaluator) tutorViolations(allocation Allocation, tutor Tutor) []Violation {
	violations := make([]Violation, 0)
	assigned := allocation.Sessions(tutor.Name)

	hours := 0
	dayHours := make(map[Day]int)
	for _, id := range assigned {
		session, ok := evaluator.sessions[id]
		if !ok {
			continue
		}
		hours += session.Duration
		dayHours[session.Day] += session.Duration
	}

	if hours < tutor.LowerHrLimit {
		violations = append(violations, Violation{
			Kind:    ViolationTutorHours,
			Tutor:   tutor.Name,
			Amount:  hours,
			Limit:   tutor.LowerHrLimit,
			Message: fmt.Sprintf("%v is assigned %d hours but requires at least %d", tutor.Name, hours, tutor.LowerHrLimit),
		})
	}
	if hours > tutor.UpperHrLimit {
		violations = append(violations, Violation{
			Kind:    ViolationTutorHours,
			Tutor:   tutor.Name,
			Amount:  hours,
			Limit:   tutor.UpperHrLimit,
			Message: fmt.Sprintf("%v is assigned %d hours but allows at most %d", tutor.Name, hours, tutor.UpperHrLimit),
		})
	}

	for _, day := range Days {
		if dayHours[day] > tutor.DailyMax {
			violations = append(violations, Violation{
				Kind:    ViolationDailyCap,
				Tutor:   tutor.Name,
				Session: string(day),
				Amount:  dayHours[day],
				Limit:   tutor.DailyMax,
				Message: fmt.Sprintf("%v is assigned %d hours on %v but allows at most %d per day", tutor.Name, dayHours[day], day, tutor.DailyMax),
			})
		}
	}

	for i := 0; i < len(assigned)-1; i++ {
		for j := i + 1; j < len(assigned); j++ {
			if slices.Contains(evaluator.clashes[assigned[i]], assigned[j]) {
				violations = append(violations, Violation{
					Kind:    ViolationOverlap,
					Tutor:   tutor.Name,
					Session: assigned[i],
					Other:   assigned[j],
					Message: fmt.Sprintf("%v is assigned overlapping sessions %v and %v", tutor.Name, assigned[i], assigned[j]),
				})
			}
		}
	}

	return violations
}

func (evaluator *standardEvaluator) SoftScore(allocation Allocation) float64 {
	score := 0.0
	for _, tutor := range evaluator.input.Tutors {
		assigned := allocation[tutor.Name]
		pattern := evaluator.preferences[tutor.Name]

		for id := range assigned {
			if pattern != nil && pattern.MatchString(id) {
				score += evaluator.preferenceWeight
			}
			if tutor.PrefContig {
				for _, neighbor := range evaluator.following[id] {
					if assigned[neighbor] {
						score += evaluator.contigWeight
					}
				}
			}
		}
	}
	return score
}

func (evaluator *standardEvaluator) SoftScoreDelta(allocation Allocation, delta Delta) float64 {
	score := evaluator.pairScore(allocation, delta.Pair)
	if delta.Removed {
		return -score
	}
	return score
}

// pairScore is the pair's contribution relative to the tutor's other
// assignments; the pair's own membership in the allocation does not matter.
func (evaluator *standardEvaluator) pairScore(allocation Allocation, pair Pair) float64 {
	tutor, ok := evaluator.tutors[pair.Tutor]
	if !ok {
		return 0
	}

	score := 0.0
	if pattern := evaluator.preferences[pair.Tutor]; pattern != nil && pattern.MatchString(pair.Session) {
		score += evaluator.preferenceWeight
	}
	if tutor.PrefContig {
		assigned := allocation[pair.Tutor]
		for _, neighbor := range evaluator.following[pair.Session] {
			if assigned[neighbor] {
				score += evaluator.contigWeight
			}
		}
		for _, neighbor := range evaluator.preceding[pair.Session] {
			if assigned[neighbor] {
				score += evaluator.contigWeight
			}
		}
	}
	return score
}
