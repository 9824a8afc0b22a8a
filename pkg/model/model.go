package model

import (
	"fmt"
	"regexp"
)

type Day string

const (
	Monday    Day = "Mon"
	Tuesday   Day = "Tue"
	Wednesday Day = "Wed"
	Thursday  Day = "Thu"
	Friday    Day = "Fri"
	Saturday  Day = "Sat"
	Sunday    Day = "Sun"
)

// Days in calendar order, used for deterministic iteration and rendering.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var DayIndex = map[Day]int{
	Monday:    0,
	Tuesday:   1,
	Wednesday: 2,
	Thursday:  3,
	Friday:    4,
	Saturday:  5,
	Sunday:    6,
}

// TimeSlot identifies a session's occupied interval when its id is unknown
// (e.g. while binding availability columns to sessions).
type TimeSlot struct {
	Day      Day
	Start    int
	Duration int
}

// Hours large enough to act as "no limit" while staying additive-overflow safe.
const Unbounded = 1 << 30

type Tutor struct {
	Name              string `mapstructure:"name"`
	IsJunior          bool   `mapstructure:"is_junior"`
	PrefContig        bool   `mapstructure:"pref_contig"`
	LowerHrLimit      int    `mapstructure:"lower_hr_limit"`
	UpperHrLimit      int    `mapstructure:"upper_hr_limit"`
	DailyMax          int    `mapstructure:"daily_max"`
	SessionPreference string `mapstructure:"session_preference"`
}

// DefaultTutor carries the record defaults applied to omitted fields.
func DefaultTutor() Tutor {
	return Tutor{
		LowerHrLimit:      1,
		UpperHrLimit:      Unbounded,
		DailyMax:          Unbounded,
		SessionPreference: "(.*)",
	}
}

type Session struct {
	Id              string `mapstructure:"id"`
	Day             Day    `mapstructure:"day"`
	StartTime       int    `mapstructure:"start_time"`
	Duration        int    `mapstructure:"duration"`
	LowerTutorCount int    `mapstructure:"lower_tutor_count"`
	UpperTutorCount int    `mapstructure:"upper_tutor_count"`
}

// DefaultSession carries the record defaults applied to omitted fields.
func DefaultSession() Session {
	return Session{
		Duration:        1,
		LowerTutorCount: 1,
		UpperTutorCount: 1,
	}
}

// Slot returns the half-open interval [StartTime, StartTime+Duration)
// occupied by the session on its day.
func (session Session) Slot() TimeSlot {
	return TimeSlot{Day: session.Day, Start: session.StartTime, Duration: session.Duration}
}

// Overlaps reports whether two sessions intersect in time on the same day.
func (session Session) Overlaps(other Session) bool {
	if session.Day != other.Day {
		return false
	}
	return session.StartTime < other.StartTime+other.Duration &&
		other.StartTime < session.StartTime+session.Duration
}

type ModelInput struct {
	Tutors       []Tutor
	Sessions     []Session
	Availability Availability
}

// NewModelInput validates the records once at construction; the engine
// assumes a validated input thereafter.
func NewModelInput(tutors []Tutor, sessions []Session, availability Availability) (ModelInput, error) {
	names := make(map[string]bool)
	for _, tutor := range tutors {
		if names[tutor.Name] {
			return ModelInput{}, ValidationError{Message: fmt.Sprintf("duplicate tutor %q", tutor.Name)}
		}
		names[tutor.Name] = true

		if tutor.LowerHrLimit > tutor.UpperHrLimit {
			return ModelInput{}, ValidationError{Message: fmt.Sprintf("tutor %q has inverted hour limits [%d, %d]", tutor.Name, tutor.LowerHrLimit, tutor.UpperHrLimit)}
		}
		if tutor.SessionPreference != "" {
			if _, err := regexp.Compile(tutor.SessionPreference); err != nil {
				return ModelInput{}, ValidationError{Message: fmt.Sprintf("tutor %q has an invalid session preference pattern: %v", tutor.Name, err)}
			}
		}
	}

	ids := make(map[string]bool)
	for _, session := range sessions {
		if ids[session.Id] {
			return ModelInput{}, ValidationError{Message: fmt.Sprintf("duplicate session %q", session.Id)}
		}
		ids[session.Id] = true

		if session.Duration <= 0 {
			return ModelInput{}, ValidationError{Message: fmt.Sprintf("session %q has non-positive duration %d", session.Id, session.Duration)}
		}
		if session.LowerTutorCount > session.UpperTutorCount {
			return ModelInput{}, ValidationError{Message: fmt.Sprintf("session %q has inverted tutor counts [%d, %d]", session.Id, session.LowerTutorCount, session.UpperTutorCount)}
		}
	}

	return ModelInput{
		Tutors:       tutors,
		Sessions:     sessions,
		Availability: availability,
	}, nil
}
