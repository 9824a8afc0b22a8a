package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteStubs(t *testing.T) {
	availability, err := ReadAvailability(strings.NewReader(plainAvailability))
	assert.Nil(t, err)

	dir := t.TempDir()
	tutorsPath := filepath.Join(dir, "tutors.csv")
	sessionsPath := filepath.Join(dir, "sessions.csv")

	assert.Nil(t, WriteStubs(tutorsPath, sessionsPath, availability))

	tutors, err := os.ReadFile(tutorsPath)
	assert.Nil(t, err)
	assert.Equal(t, strings.Join([]string{
		"name,is_junior,pref_contig,lower_hr_limit,upper_hr_limit,daily_max,session_preference",
		"alice,,,,,,",
		"bob,,,,,,",
		"",
	}, "\n"), string(tutors))

	sessions, err := os.ReadFile(sessionsPath)
	assert.Nil(t, err)
	assert.Equal(t, strings.Join([]string{
		"id,day,start_time,duration,lower_tutor_count,upper_tutor_count",
		",Mon,8,1,,",
		",Mon,9,2,,",
		",Tue,9,1,,",
		"",
	}, "\n"), string(sessions))

	// A second run must not clobber hand-edited files.
	assert.NotNil(t, WriteStubs(tutorsPath, sessionsPath, availability))
}
