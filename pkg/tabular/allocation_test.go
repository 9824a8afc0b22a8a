package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BraeWebb/allocate/pkg/model"
)

func TestRenderAllocation(t *testing.T) {
	allocation := model.NewAllocation()
	allocation.Assign(model.Pair{Tutor: "bob", Session: "S3"})
	allocation.Assign(model.Pair{Tutor: "alice", Session: "S2"})
	allocation.Assign(model.Pair{Tutor: "alice", Session: "S1"})

	var rendered strings.Builder
	assert.Nil(t, RenderAllocation(&rendered, allocation))
	assert.Equal(t, "alice,S1,S2\nbob,S3\n", rendered.String())
}

func TestReadAllocationRoundTrip(t *testing.T) {
	allocation, err := ReadAllocation(strings.NewReader("alice,S1,S2\nbob,S3\n"))
	assert.Nil(t, err)

	assert.True(t, allocation.Assigned(model.Pair{Tutor: "alice", Session: "S1"}))
	assert.True(t, allocation.Assigned(model.Pair{Tutor: "alice", Session: "S2"}))
	assert.True(t, allocation.Assigned(model.Pair{Tutor: "bob", Session: "S3"}))
	assert.False(t, allocation.Assigned(model.Pair{Tutor: "bob", Session: "S1"}))

	var rendered strings.Builder
	assert.Nil(t, RenderAllocation(&rendered, allocation))
	assert.Equal(t, "alice,S1,S2\nbob,S3\n", rendered.String())
}

func TestRenderTable(t *testing.T) {
	sessions := []model.Session{
		{Id: "P01", Day: model.Monday, StartTime: 9, Duration: 2, LowerTutorCount: 2, UpperTutorCount: 2},
		{Id: "T01", Day: model.Tuesday, StartTime: 8, Duration: 1, LowerTutorCount: 1, UpperTutorCount: 1},
	}

	allocation := model.NewAllocation()
	allocation.Assign(model.Pair{Tutor: "alice", Session: "P01"})
	allocation.Assign(model.Pair{Tutor: "bob", Session: "P01"})
	allocation.Assign(model.Pair{Tutor: "alice", Session: "T01"})

	var rendered strings.Builder
	assert.Nil(t, RenderTable(&rendered, allocation, sessions))

	expected := strings.Join([]string{
		",Mon,Tue",
		"8,,T01: alice ",
		"9,P01: alice & bob ,",
		"10,,",
		"",
	}, "\n")
	assert.Equal(t, expected, rendered.String())
}

func TestRenderTableWithoutSessions(t *testing.T) {
	var rendered strings.Builder
	assert.Nil(t, RenderTable(&rendered, model.NewAllocation(), nil))
	assert.Empty(t, rendered.String())
}
