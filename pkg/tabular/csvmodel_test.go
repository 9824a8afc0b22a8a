package tabular

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BraeWebb/allocate/pkg/model"
)

func TestReadTutors(t *testing.T) {
	t.Run("full and defaulted rows", func(t *testing.T) {
		input := strings.Join([]string{
			"name,is_junior,pref_contig,lower_hr_limit,upper_hr_limit,daily_max,session_preference",
			"alice,true,1,2,8,4,^P",
			"bob,,,,,,",
		}, "\n")

		tutors, err := ReadTutors(strings.NewReader(input))
		assert.Nil(t, err)
		assert.Len(t, tutors, 2)

		alice := tutors[0]
		assert.Equal(t, "alice", alice.Name)
		assert.True(t, alice.IsJunior)
		assert.True(t, alice.PrefContig)
		assert.Equal(t, 2, alice.LowerHrLimit)
		assert.Equal(t, 8, alice.UpperHrLimit)
		assert.Equal(t, 4, alice.DailyMax)
		assert.Equal(t, "^P", alice.SessionPreference)

		// Empty cells keep the record defaults.
		bob := tutors[1]
		assert.Equal(t, "bob", bob.Name)
		assert.False(t, bob.IsJunior)
		assert.Equal(t, 1, bob.LowerHrLimit)
		assert.Equal(t, model.Unbounded, bob.UpperHrLimit)
		assert.Equal(t, model.Unbounded, bob.DailyMax)
		assert.Equal(t, "(.*)", bob.SessionPreference)
	})

	t.Run("column order does not matter", func(t *testing.T) {
		input := strings.Join([]string{
			"upper_hr_limit,name,is_junior,pref_contig,lower_hr_limit,daily_max,session_preference",
			"6,carol,,,,,",
		}, "\n")

		tutors, err := ReadTutors(strings.NewReader(input))
		assert.Nil(t, err)
		assert.Equal(t, "carol", tutors[0].Name)
		assert.Equal(t, 6, tutors[0].UpperHrLimit)
	})

	t.Run("unexpected columns are rejected", func(t *testing.T) {
		input := "name,hours\nalice,5\n"

		_, err := ReadTutors(strings.NewReader(input))
		var invalid InvalidCSVError
		assert.True(t, errors.As(err, &invalid))
	})
}

func TestReadSessions(t *testing.T) {
	input := strings.Join([]string{
		"id,day,start_time,duration,lower_tutor_count,upper_tutor_count",
		"P01,Mon,8,2,1,2",
		"T01,Tue,9,,,",
	}, "\n")

	sessions, err := ReadSessions(strings.NewReader(input))
	assert.Nil(t, err)
	assert.Len(t, sessions, 2)

	practical := sessions[0]
	assert.Equal(t, "P01", practical.Id)
	assert.Equal(t, model.Monday, practical.Day)
	assert.Equal(t, 8, practical.StartTime)
	assert.Equal(t, 2, practical.Duration)
	assert.Equal(t, 1, practical.LowerTutorCount)
	assert.Equal(t, 2, practical.UpperTutorCount)

	tutorial := sessions[1]
	assert.Equal(t, 1, tutorial.Duration)
	assert.Equal(t, 1, tutorial.LowerTutorCount)
	assert.Equal(t, 1, tutorial.UpperTutorCount)
}

func TestReadTutorsMissingHeader(t *testing.T) {
	_, err := ReadTutors(strings.NewReader(""))
	var invalid InvalidCSVError
	assert.True(t, errors.As(err, &invalid))
}
