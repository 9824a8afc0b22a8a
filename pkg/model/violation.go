package model

import "cmp"

type ViolationKind int

const (
	ViolationAvailability ViolationKind = iota
	ViolationSessionCapacity
	ViolationTutorHours
	ViolationOverlap
	ViolationJuniorCoverage
	ViolationDailyCap
)

var violationKindNames = map[ViolationKind]string{
	ViolationAvailability:    "availability",
	ViolationSessionCapacity: "session-capacity",
	ViolationTutorHours:      "tutor-hours",
	ViolationOverlap:         "overlap",
	ViolationJuniorCoverage:  "junior-coverage",
	ViolationDailyCap:        "daily-cap",
}

func (kind ViolationKind) String() string {
	return violationKindNames[kind]
}

// Violation is a single broken hard invariant, tagged with the offending
// keys so a caller can report why a solve failed. For bound violations
// Amount holds the measured value and Limit the violated bound.
type Violation struct {
	Kind    ViolationKind
	Tutor   string
	Session string
	Other   string // second session id for overlap violations
	Amount  int
	Limit   int
	Message string
}

// compareViolations orders violations deterministically by kind and keys.
func compareViolations(a, b Violation) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Tutor, b.Tutor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Session, b.Session); c != 0 {
		return c
	}
	return cmp.Compare(a.Other, b.Other)
}

// excess reports whether the violation is an upper-bound breach. Lower-bound
// shortfalls are expected on partial allocations that will still receive
// assignments; upper-bound breaches never heal by adding more pairs.
func (violation Violation) excess() bool {
	switch violation.Kind {
	case ViolationSessionCapacity, ViolationTutorHours, ViolationDailyCap:
		return violation.Amount > violation.Limit
	default:
		return false
	}
}
