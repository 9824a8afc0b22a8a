package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/BraeWebb/allocate/pkg/model"
)

// Availability holds a parsed availability table: the time slots offered and
// the slots each tutor marked themselves free for. Tutors keep their file
// order so a render round-trips.
type Availability struct {
	slots  []model.TimeSlot
	tutors []string
	times  map[string][]model.TimeSlot
}

func (availability *Availability) Tutors() []string {
	return availability.tutors
}

func (availability *Availability) Slots() []model.TimeSlot {
	return availability.slots
}

func (availability *Availability) Available(tutor string, slot model.TimeSlot) bool {
	return slices.Contains(availability.times[tutor], slot)
}

// ReadAvailability parses the plain availability format: three header rows
// carrying each column's day, start hour and duration, then one row per
// tutor with "1" marking a free slot.
func ReadAvailability(reader io.Reader) (*Availability, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 3 {
		return nil, InvalidCSVError{Message: "availability file requires day, start and duration header rows"}
	}

	dayRow, startRow, durationRow := records[0], records[1], records[2]
	if len(startRow) != len(dayRow) || len(durationRow) != len(dayRow) {
		return nil, InvalidCSVError{Message: "availability header rows differ in length"}
	}

	slots := make([]model.TimeSlot, 0, len(dayRow)-1)
	for column := 1; column < len(dayRow); column++ {
		start, err := strconv.Atoi(startRow[column])
		if err != nil {
			return nil, InvalidCSVError{Message: fmt.Sprintf("bad start time %q: %v", startRow[column], err)}
		}
		duration, err := strconv.Atoi(durationRow[column])
		if err != nil {
			return nil, InvalidCSVError{Message: fmt.Sprintf("bad duration %q: %v", durationRow[column], err)}
		}
		slots = append(slots, model.TimeSlot{Day: model.Day(dayRow[column]), Start: start, Duration: duration})
	}

	availability := &Availability{
		slots: slots,
		times: make(map[string][]model.TimeSlot),
	}
	for _, record := range records[3:] {
		if len(record) == 0 {
			continue
		}
		name := record[0]
		availability.tutors = append(availability.tutors, name)
		availability.times[name] = make([]model.TimeSlot, 0)
		for column := 1; column < len(record) && column <= len(slots); column++ {
			if record[column] == "1" {
				availability.times[name] = append(availability.times[name], slots[column-1])
			}
		}
	}

	return availability, nil
}

// LoadAvailability reads an availability file, treating it as a Doodle
// export when doodle is set.
func LoadAvailability(path string, doodle bool) (*Availability, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if doodle {
		return ReadDoodle(file)
	}
	return ReadAvailability(file)
}

// Render writes the availability back out in the plain format.
func (availability *Availability) Render(writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)

	dayRow, startRow, durationRow := []string{""}, []string{""}, []string{""}
	for _, slot := range availability.slots {
		dayRow = append(dayRow, string(slot.Day))
		startRow = append(startRow, strconv.Itoa(slot.Start))
		durationRow = append(durationRow, strconv.Itoa(slot.Duration))
	}
	for _, row := range [][]string{dayRow, startRow, durationRow} {
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	for _, tutor := range availability.tutors {
		row := make([]string, len(availability.slots)+1)
		row[0] = tutor
		for i, slot := range availability.slots {
			if availability.Available(tutor, slot) {
				row[i+1] = "1"
			}
		}
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// ToMatrix binds the table's time slots to sessions and produces the boolean
// relation the engine consumes. A session whose slot does not appear in the
// table is available to nobody.
func (availability *Availability) ToMatrix(tutors []string, sessions []model.Session) model.Availability {
	matrix := model.NewAvailability()
	for _, tutor := range tutors {
		for _, session := range sessions {
			matrix.Set(tutor, session.Id, availability.Available(tutor, session.Slot()))
		}
	}
	return matrix
}

// Project returns a new availability with every allocated slot removed,
// ready to be re-serialized for an independent follow-up solve.
func (availability *Availability) Project(allocation model.Allocation, sessions []model.Session) *Availability {
	matrix := availability.ToMatrix(availability.tutors, sessions)
	projected := model.Project(matrix, allocation)

	bound := make(map[model.TimeSlot]string, len(sessions))
	for _, session := range sessions {
		bound[session.Slot()] = session.Id
	}

	result := &Availability{
		slots:  availability.slots,
		tutors: availability.tutors,
		times:  make(map[string][]model.TimeSlot, len(availability.times)),
	}
	for _, tutor := range availability.tutors {
		for _, slot := range availability.times[tutor] {
			if id, ok := bound[slot]; ok && !projected.Available(tutor, id) {
				continue
			}
			result.times[tutor] = append(result.times[tutor], slot)
		}
	}
	return result
}
