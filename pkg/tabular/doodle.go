package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/BraeWebb/allocate/pkg/model"
)

// Doodle exports lead with four rows of poll metadata, then a day row and a
// time row that together describe the columns, then one row per participant
// with "OK" marking availability, closed by a "Count" summary row.
const doodlePreambleRows = 4

// ReadDoodle parses a Doodle poll export into an availability table.
func ReadDoodle(reader io.Reader) (*Availability, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < doodlePreambleRows+2 {
		return nil, InvalidCSVError{Message: "doodle export is missing its day and time header rows"}
	}

	columns, err := assignColumnSlots(records[doodlePreambleRows], records[doodlePreambleRows+1])
	if err != nil {
		return nil, err
	}

	ordered := make([]int, 0, len(columns))
	for column := range columns {
		ordered = append(ordered, column)
	}
	slices.Sort(ordered)

	availability := &Availability{
		times: make(map[string][]model.TimeSlot),
	}
	for _, column := range ordered {
		availability.slots = append(availability.slots, columns[column])
	}

	for _, record := range records[doodlePreambleRows+2:] {
		if len(record) == 0 {
			continue
		}
		name := record[0]
		// The export closes with a per-slot availability count.
		if name == "Count" {
			break
		}

		availability.tutors = append(availability.tutors, name)
		availability.times[name] = make([]model.TimeSlot, 0)
		for column, status := range record {
			if status != "OK" {
				continue
			}
			if slot, ok := columns[column]; ok {
				availability.times[name] = append(availability.times[name], slot)
			}
		}
	}

	return availability, nil
}

// assignColumnSlots maps each CSV column to the time slot it represents.
// Day cells are only present where the day changes, so the last seen day
// carries forward across columns.
func assignColumnSlots(dayRow, timeRow []string) (map[int]model.TimeSlot, error) {
	columns := make(map[int]model.TimeSlot)
	lastDay := ""

	for column := 0; column < len(dayRow) && column < len(timeRow); column++ {
		day, time := dayRow[column], timeRow[column]
		if day != "" {
			lastDay = day[:min(3, len(day))]
		} else if lastDay == "" {
			continue
		}
		if time == "" {
			continue
		}

		slot, err := decodeDoodleSlot(lastDay, time)
		if err != nil {
			return nil, err
		}
		columns[column] = slot
	}

	return columns, nil
}

// decodeDoodleSlot parses a slot such as "1:00 PM – 3:00 PM" on "Mon" into
// TimeSlot{Mon, 13, 2}. Doodle separates the bounds with an en dash.
func decodeDoodleSlot(day, slot string) (model.TimeSlot, error) {
	start, end, found := strings.Cut(slot, " – ")
	if !found {
		return model.TimeSlot{}, InvalidCSVError{Message: fmt.Sprintf("bad doodle time slot %q", slot)}
	}

	startHour, err := hourFromTime(start)
	if err != nil {
		return model.TimeSlot{}, err
	}
	endHour, err := hourFromTime(end)
	if err != nil {
		return model.TimeSlot{}, err
	}

	return model.TimeSlot{
		Day:      model.Day(day),
		Start:    startHour,
		Duration: endHour - startHour,
	}, nil
}

// hourFromTime converts a doodle time such as "1:00 PM" to the 24-hour
// integer hour, so "12:00 PM" is 12 and "1:00 PM" is 13.
func hourFromTime(time string) (int, error) {
	head, _, _ := strings.Cut(time, ":")
	hour, err := strconv.Atoi(head)
	if err != nil {
		return 0, InvalidCSVError{Message: fmt.Sprintf("bad doodle time %q: %v", time, err)}
	}
	if strings.HasSuffix(time, "PM") && hour != 12 {
		hour += 12
	}
	return hour, nil
}
