package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func allAvailable(tutors []Tutor, sessions []Session) Availability {
	availability := NewAvailability()
	for _, tutor := range tutors {
		for _, session := range sessions {
			availability.Set(tutor.Name, session.Id, true)
		}
	}
	return availability
}

// weekFixture is a full teaching week: four one-tutor tutorials and five
// two-tutor practicals, staffed by two seniors and one junior with tight
// hour limits.
func weekFixture(t *testing.T) ModelInput {
	henry := DefaultTutor()
	henry.Name = "henry"
	henry.PrefContig = true
	henry.UpperHrLimit = 10
	henry.DailyMax = 8

	brae := DefaultTutor()
	brae.Name = "brae"
	brae.UpperHrLimit = 10
	brae.DailyMax = 10

	emily := DefaultTutor()
	emily.Name = "emily"
	emily.IsJunior = true
	emily.UpperHrLimit = 6
	emily.DailyMax = 3

	sessions := []Session{
		{Id: "T01", Day: Monday, StartTime: 8, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
		{Id: "T02", Day: Tuesday, StartTime: 8, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
		{Id: "T03", Day: Wednesday, StartTime: 8, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
		{Id: "T04", Day: Thursday, StartTime: 8, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
		{Id: "P01", Day: Monday, StartTime: 9, Duration: 2, LowerTutorCount: 2, UpperTutorCount: 2},
		{Id: "P02", Day: Tuesday, StartTime: 9, Duration: 2, LowerTutorCount: 2, UpperTutorCount: 2},
		{Id: "P03", Day: Wednesday, StartTime: 9, Duration: 2, LowerTutorCount: 2, UpperTutorCount: 2},
		{Id: "P04", Day: Thursday, StartTime: 9, Duration: 2, LowerTutorCount: 2, UpperTutorCount: 2},
		{Id: "P05", Day: Friday, StartTime: 9, Duration: 2, LowerTutorCount: 2, UpperTutorCount: 2},
	}

	tutors := []Tutor{henry, brae, emily}
	input, err := NewModelInput(tutors, sessions, allAvailable(tutors, sessions))
	assert.Nil(t, err)
	return input
}

func TestBuildFullWeek(t *testing.T) {
	input := weekFixture(t)
	allocator := NewBacktrackingAllocator(DefaultConfig())

	allocation, err := allocator.Build(input)
	assert.Nil(t, err)
	assert.True(t, allocator.Verify(allocation, input))

	for _, session := range input.Sessions {
		assigned := allocation.TutorsFor(session.Id)
		assert.GreaterOrEqual(t, len(assigned), session.LowerTutorCount, session.Id)
		assert.LessOrEqual(t, len(assigned), session.UpperTutorCount, session.Id)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	input := weekFixture(t)

	first, err := NewBacktrackingAllocator(DefaultConfig()).Build(input)
	assert.Nil(t, err)
	second, err := NewBacktrackingAllocator(DefaultConfig()).Build(input)
	assert.Nil(t, err)

	assert.Equal(t, first, second)
}

func TestBuildDetectsUndersuppliedSession(t *testing.T) {
	alice := DefaultTutor()
	alice.Name = "alice"
	alice.LowerHrLimit = 0
	alice.UpperHrLimit = 10
	alice.DailyMax = 8

	sessions := []Session{
		{Id: "P01", Day: Monday, StartTime: 9, Duration: 2, LowerTutorCount: 2, UpperTutorCount: 2},
	}
	input, err := NewModelInput([]Tutor{alice}, sessions, allAvailable([]Tutor{alice}, sessions))
	assert.Nil(t, err)

	_, err = NewBacktrackingAllocator(DefaultConfig()).Build(input)

	var infeasible InfeasibleError
	assert.True(t, errors.As(err, &infeasible))
	assert.NotEmpty(t, infeasible.Violations)
	assert.Equal(t, "P01", infeasible.Violations[0].Session)
}

// One tutor with a one hour cap cannot serve two disjoint sessions; each
// time cell on its own is coverable so the failure only surfaces during
// search.
func overcommittedFixture(t *testing.T) ModelInput {
	xavier := DefaultTutor()
	xavier.Name = "xavier"
	xavier.LowerHrLimit = 0
	xavier.UpperHrLimit = 1
	xavier.DailyMax = 8

	sessions := []Session{
		{Id: "A", Day: Monday, StartTime: 8, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
		{Id: "B", Day: Tuesday, StartTime: 8, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
	}
	input, err := NewModelInput([]Tutor{xavier}, sessions, allAvailable([]Tutor{xavier}, sessions))
	assert.Nil(t, err)
	return input
}

func TestBuildBudgetExhaustion(t *testing.T) {
	config := DefaultConfig()
	config.MaxBacktracks = 0

	_, err := NewBacktrackingAllocator(config).Build(overcommittedFixture(t))

	var exceeded BudgetExceededError
	assert.True(t, errors.As(err, &exceeded))
	assert.Equal(t, "search", exceeded.Phase)
	assert.Equal(t, 0, exceeded.Budget)
}

func TestBuildExhaustiveSearchReportsInfeasible(t *testing.T) {
	_, err := NewBacktrackingAllocator(DefaultConfig()).Build(overcommittedFixture(t))

	var infeasible InfeasibleError
	assert.True(t, errors.As(err, &infeasible))
	assert.NotEmpty(t, infeasible.Violations)
}

func TestBuildWithSeed(t *testing.T) {
	alice := DefaultTutor()
	alice.Name = "alice"
	alice.UpperHrLimit = 10
	alice.DailyMax = 8

	sessions := []Session{
		{Id: "S1", Day: Monday, StartTime: 9, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
	}

	t.Run("valid seed is kept", func(t *testing.T) {
		input, err := NewModelInput([]Tutor{alice}, sessions, allAvailable([]Tutor{alice}, sessions))
		assert.Nil(t, err)

		seed := NewAllocation()
		seed.Assign(Pair{Tutor: "alice", Session: "S1"})

		config := DefaultConfig()
		config.Seed = seed

		allocator := NewBacktrackingAllocator(config)
		allocation, err := allocator.Build(input)
		assert.Nil(t, err)
		assert.True(t, allocation.Assigned(Pair{Tutor: "alice", Session: "S1"}))
		assert.True(t, allocator.Verify(allocation, input))
	})

	t.Run("violating seed is rejected", func(t *testing.T) {
		input, err := NewModelInput([]Tutor{alice}, sessions, NewAvailability())
		assert.Nil(t, err)

		seed := NewAllocation()
		seed.Assign(Pair{Tutor: "alice", Session: "S1"})

		config := DefaultConfig()
		config.Seed = seed

		_, err = NewBacktrackingAllocator(config).Build(input)
		var infeasible InfeasibleError
		assert.True(t, errors.As(err, &infeasible))
	})
}

func TestVerifyRejectsViolatingAllocation(t *testing.T) {
	input := weekFixture(t)
	allocator := NewBacktrackingAllocator(DefaultConfig())

	allocation := NewAllocation()
	allocation.Assign(Pair{Tutor: "emily", Session: "P01"})
	allocation.Assign(Pair{Tutor: "emily", Session: "P02"})
	allocation.Assign(Pair{Tutor: "emily", Session: "P03"})
	allocation.Assign(Pair{Tutor: "emily", Session: "P04"})

	assert.False(t, allocator.Verify(allocation, input))
}
