package model

// Availability is the boolean relation over (tutor, session): true if and
// only if the tutor is free for the session's full interval.
type Availability map[string]map[string]bool

func NewAvailability() Availability {
	return make(Availability)
}

func (availability Availability) Set(tutor, session string, available bool) {
	if _, ok := availability[tutor]; !ok {
		availability[tutor] = make(map[string]bool)
	}
	availability[tutor][session] = available
}

func (availability Availability) Available(tutor, session string) bool {
	return availability[tutor][session]
}

func (availability Availability) Clone() Availability {
	clone := make(Availability, len(availability))
	for tutor, sessions := range availability {
		clone[tutor] = make(map[string]bool, len(sessions))
		for session, available := range sessions {
			clone[tutor][session] = available
		}
	}
	return clone
}

// Project derives a new availability from an allocation by marking every
// allocated (tutor, session) pair unavailable. The input matrix is never
// mutated, so a follow-up solve on the projection is an independent run.
func Project(availability Availability, allocation Allocation) Availability {
	projected := availability.Clone()
	for _, pair := range allocation.Pairs() {
		if _, ok := projected[pair.Tutor]; ok {
			projected[pair.Tutor][pair.Session] = false
		}
	}
	return projected
}
