package model

import (
	"slices"

	"github.com/samber/lo"
)

// Pair is a single (tutor, session) assignment.
type Pair struct {
	Tutor   string
	Session string
}

// Delta describes a one-pair change to an allocation.
type Delta struct {
	Pair    Pair
	Removed bool
}

// Allocation maps a tutor name to the set of session ids assigned to them.
// It is the mutable entity under construction and refinement; all other
// engine inputs are read-only.
type Allocation map[string]map[string]bool

func NewAllocation() Allocation {
	return make(Allocation)
}

func (allocation Allocation) Assign(pair Pair) {
	if _, ok := allocation[pair.Tutor]; !ok {
		allocation[pair.Tutor] = make(map[string]bool)
	}
	allocation[pair.Tutor][pair.Session] = true
}

func (allocation Allocation) Unassign(pair Pair) {
	delete(allocation[pair.Tutor], pair.Session)
	if len(allocation[pair.Tutor]) == 0 {
		delete(allocation, pair.Tutor)
	}
}

func (allocation Allocation) Apply(delta Delta) {
	if delta.Removed {
		allocation.Unassign(delta.Pair)
	} else {
		allocation.Assign(delta.Pair)
	}
}

// Revert undoes a previously applied delta.
func (allocation Allocation) Revert(delta Delta) {
	allocation.Apply(Delta{Pair: delta.Pair, Removed: !delta.Removed})
}

func (allocation Allocation) Assigned(pair Pair) bool {
	return allocation[pair.Tutor][pair.Session]
}

func (allocation Allocation) Clone() Allocation {
	clone := make(Allocation, len(allocation))
	for tutor, sessions := range allocation {
		clone[tutor] = make(map[string]bool, len(sessions))
		for session := range sessions {
			clone[tutor][session] = true
		}
	}
	return clone
}

// Tutors returns the allocated tutor names in sorted order.
func (allocation Allocation) Tutors() []string {
	tutors := lo.Keys(allocation)
	slices.Sort(tutors)
	return tutors
}

// Sessions returns the session ids assigned to a tutor in sorted order.
func (allocation Allocation) Sessions(tutor string) []string {
	sessions := lo.Keys(allocation[tutor])
	slices.Sort(sessions)
	return sessions
}

// TutorsFor returns the tutors assigned to a session in sorted order.
func (allocation Allocation) TutorsFor(session string) []string {
	tutors := make([]string, 0)
	for tutor, sessions := range allocation {
		if sessions[session] {
			tutors = append(tutors, tutor)
		}
	}
	slices.Sort(tutors)
	return tutors
}

// Pairs returns every assignment sorted by tutor then session.
func (allocation Allocation) Pairs() []Pair {
	pairs := make([]Pair, 0)
	for _, tutor := range allocation.Tutors() {
		for _, session := range allocation.Sessions(tutor) {
			pairs = append(pairs, Pair{Tutor: tutor, Session: session})
		}
	}
	return pairs
}
