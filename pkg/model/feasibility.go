package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// AvailabilityWarnings performs sanity checks on the availability relation
// and returns a message for every tutor whose marked availability cannot
// reach their lower hour limit and every session with fewer available tutors
// than its minimum staffing. These are advisory; the solve still runs.
func AvailabilityWarnings(input ModelInput) []string {
	warnings := make([]string, 0)

	for _, tutor := range input.Tutors {
		hours := 0
		for _, session := range input.Sessions {
			if input.Availability.Available(tutor.Name, session.Id) {
				hours += session.Duration
			}
		}
		if hours < tutor.LowerHrLimit {
			warnings = append(warnings, fmt.Sprintf("%v has less hours available than their lower limit of hours", tutor.Name))
		}
	}

	for _, session := range input.Sessions {
		available := 0
		for _, tutor := range input.Tutors {
			if input.Availability.Available(tutor.Name, session.Id) {
				available++
			}
		}
		if available < session.LowerTutorCount {
			warnings = append(warnings, fmt.Sprintf("%v does not have enough available tutors to meet its minimum staffing", session.Id))
		}
	}

	return warnings
}

// checkCoverage is a pre-search relaxation check. For every (day, hour) cell
// occupied by at least one session it matches the sessions' minimum staffing
// demand against the tutors available to them; since a tutor can hold at
// most one session per cell, an undersized maximum matching already proves
// the instance infeasible before any search is spent on it.
func checkCoverage(input ModelInput) ([]Violation, error) {
	type cell struct {
		day  Day
		hour int
	}

	active := make(map[cell][]Session)
	for _, session := range input.Sessions {
		for hour := session.StartTime; hour < session.StartTime+session.Duration; hour++ {
			key := cell{day: session.Day, hour: hour}
			active[key] = append(active[key], session)
		}
	}

	cells := lo.Keys(active)
	slices.SortFunc(cells, func(a, b cell) int {
		if a.day != b.day {
			return DayIndex[a.day] - DayIndex[b.day]
		}
		return a.hour - b.hour
	})

	violations := make([]Violation, 0)
	for _, key := range cells {
		sessions := active[key]
		slices.SortFunc(sessions, func(a, b Session) int { return cmp.Compare(a.Id, b.Id) })

		// One demand slot per required tutor of each active session.
		slots := make([]string, 0)
		demand := 0
		for _, session := range sessions {
			demand += session.LowerTutorCount
			for i := 0; i < session.LowerTutorCount; i++ {
				slots = append(slots, session.Id)
			}
		}
		if demand == 0 {
			continue
		}

		tutors := lo.Map(input.Tutors, func(tutor Tutor, _ int) string { return tutor.Name })

		neighbors := func(slotAny any, tutorAny any) (bool, error) {
			slot := slotAny.(string)
			tutor := tutorAny.(string)
			return input.Availability.Available(tutor, slot), nil
		}

		slotsAny := lo.Map(slots, func(slot string, _ int) any { return slot })
		tutorsAny := lo.Map(tutors, func(tutor string, _ int) any { return tutor })

		graph, err := bipartitegraph.NewBipartiteGraph(slotsAny, tutorsAny, neighbors)
		if err != nil {
			return nil, err
		}

		matching := graph.LargestMatching()
		if len(matching) >= demand {
			continue
		}

		for _, session := range sessions {
			violations = append(violations, Violation{
				Kind:    ViolationSessionCapacity,
				Session: session.Id,
				Amount:  len(matching),
				Limit:   demand,
				Message: fmt.Sprintf("sessions active on %v at %02d:00 require %d tutors but at most %d are available simultaneously", key.day, key.hour, demand, len(matching)),
			})
		}
	}

	return violations, nil
}
