package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BraeWebb/allocate/pkg/model"
)

const plainAvailability = `,Mon,Mon,Tue
,8,9,9
,1,2,1
alice,1,1,
bob,,1,1
`

func TestReadAvailability(t *testing.T) {
	availability, err := ReadAvailability(strings.NewReader(plainAvailability))
	assert.Nil(t, err)

	assert.Equal(t, []model.TimeSlot{
		{Day: model.Monday, Start: 8, Duration: 1},
		{Day: model.Monday, Start: 9, Duration: 2},
		{Day: model.Tuesday, Start: 9, Duration: 1},
	}, availability.Slots())
	assert.Equal(t, []string{"alice", "bob"}, availability.Tutors())

	assert.True(t, availability.Available("alice", model.TimeSlot{Day: model.Monday, Start: 8, Duration: 1}))
	assert.True(t, availability.Available("alice", model.TimeSlot{Day: model.Monday, Start: 9, Duration: 2}))
	assert.False(t, availability.Available("alice", model.TimeSlot{Day: model.Tuesday, Start: 9, Duration: 1}))
	assert.False(t, availability.Available("bob", model.TimeSlot{Day: model.Monday, Start: 8, Duration: 1}))
	assert.True(t, availability.Available("bob", model.TimeSlot{Day: model.Tuesday, Start: 9, Duration: 1}))
}

func TestReadAvailabilityRequiresHeaderRows(t *testing.T) {
	_, err := ReadAvailability(strings.NewReader(",Mon\n,8\n"))
	assert.ErrorContains(t, err, "header rows")
}

func TestAvailabilityRenderRoundTrip(t *testing.T) {
	availability, err := ReadAvailability(strings.NewReader(plainAvailability))
	assert.Nil(t, err)

	var rendered strings.Builder
	assert.Nil(t, availability.Render(&rendered))
	assert.Equal(t, plainAvailability, rendered.String())
}

func TestToMatrix(t *testing.T) {
	availability, err := ReadAvailability(strings.NewReader(plainAvailability))
	assert.Nil(t, err)

	sessions := []model.Session{
		{Id: "S1", Day: model.Monday, StartTime: 8, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
		{Id: "S2", Day: model.Monday, StartTime: 9, Duration: 2, LowerTutorCount: 1, UpperTutorCount: 1},
		// No matching column in the table.
		{Id: "S3", Day: model.Friday, StartTime: 9, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
	}

	matrix := availability.ToMatrix([]string{"alice", "bob"}, sessions)

	assert.True(t, matrix.Available("alice", "S1"))
	assert.True(t, matrix.Available("alice", "S2"))
	assert.False(t, matrix.Available("bob", "S1"))
	assert.True(t, matrix.Available("bob", "S2"))
	assert.False(t, matrix.Available("alice", "S3"))
	assert.False(t, matrix.Available("bob", "S3"))
}

func TestProjectRemovesAllocatedSlots(t *testing.T) {
	availability, err := ReadAvailability(strings.NewReader(plainAvailability))
	assert.Nil(t, err)

	sessions := []model.Session{
		{Id: "S1", Day: model.Monday, StartTime: 8, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
		{Id: "S2", Day: model.Monday, StartTime: 9, Duration: 2, LowerTutorCount: 1, UpperTutorCount: 1},
	}

	allocation := model.NewAllocation()
	allocation.Assign(model.Pair{Tutor: "alice", Session: "S1"})
	allocation.Assign(model.Pair{Tutor: "bob", Session: "S2"})

	projected := availability.Project(allocation, sessions)

	assert.False(t, projected.Available("alice", model.TimeSlot{Day: model.Monday, Start: 8, Duration: 1}))
	assert.True(t, projected.Available("alice", model.TimeSlot{Day: model.Monday, Start: 9, Duration: 2}))
	assert.False(t, projected.Available("bob", model.TimeSlot{Day: model.Monday, Start: 9, Duration: 2}))

	// A slot no session is bound to survives the projection.
	assert.True(t, projected.Available("bob", model.TimeSlot{Day: model.Tuesday, Start: 9, Duration: 1}))

	// The source table keeps its marks.
	assert.True(t, availability.Available("alice", model.TimeSlot{Day: model.Monday, Start: 8, Duration: 1}))
}
