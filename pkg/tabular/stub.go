package tabular

import (
	"encoding/csv"
	"os"
	"slices"
	"strconv"
)

// WriteStubs writes template tutors and sessions files whose rows come from
// an availability source, leaving the remaining columns to be filled in by
// hand. Both files must not already exist.
func WriteStubs(tutorsPath, sessionsPath string, availability *Availability) error {
	tutorsFile, err := os.OpenFile(tutorsPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer tutorsFile.Close()

	tutorsWriter := csv.NewWriter(tutorsFile)
	if err := tutorsWriter.Write(tutorColumns); err != nil {
		return err
	}
	names := slices.Clone(availability.Tutors())
	slices.Sort(names)
	for _, name := range names {
		row := make([]string, len(tutorColumns))
		row[0] = name
		if err := tutorsWriter.Write(row); err != nil {
			return err
		}
	}
	tutorsWriter.Flush()
	if err := tutorsWriter.Error(); err != nil {
		return err
	}

	sessionsFile, err := os.OpenFile(sessionsPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer sessionsFile.Close()

	sessionsWriter := csv.NewWriter(sessionsFile)
	if err := sessionsWriter.Write(sessionColumns); err != nil {
		return err
	}
	for _, slot := range availability.Slots() {
		row := []string{"", string(slot.Day), strconv.Itoa(slot.Start), strconv.Itoa(slot.Duration), "", ""}
		if err := sessionsWriter.Write(row); err != nil {
			return err
		}
	}
	sessionsWriter.Flush()
	return sessionsWriter.Error()
}
