package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BraeWebb/allocate/pkg/model"
)

// RenderAllocation writes one line per tutor: name followed by the tutor's
// session ids in sorted order.
func RenderAllocation(writer io.Writer, allocation model.Allocation) error {
	csvWriter := csv.NewWriter(writer)
	for _, tutor := range allocation.Tutors() {
		record := append([]string{tutor}, allocation.Sessions(tutor)...)
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ReadAllocation parses an allocation previously written by
// RenderAllocation, used to seed a validate-and-refine run.
func ReadAllocation(reader io.Reader) (model.Allocation, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	allocation := model.NewAllocation()
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		for _, session := range record[1:] {
			allocation.Assign(model.Pair{Tutor: record[0], Session: session})
		}
	}
	return allocation, nil
}

func LoadAllocation(path string) (model.Allocation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadAllocation(file)
}

// RenderTable writes the allocation as a weekly calendar grid: one column
// per day between the earliest and latest session days, one row per hour,
// each cell listing the sessions starting then with their tutors.
func RenderTable(writer io.Writer, allocation model.Allocation, sessions []model.Session) error {
	if len(sessions) == 0 {
		return nil
	}

	startHour, endHour := sessions[0].StartTime, sessions[0].StartTime+sessions[0].Duration
	startDay, endDay := model.DayIndex[sessions[0].Day], model.DayIndex[sessions[0].Day]
	for _, session := range sessions {
		startHour = min(startHour, session.StartTime)
		endHour = max(endHour, session.StartTime+session.Duration)
		startDay = min(startDay, model.DayIndex[session.Day])
		endDay = max(endDay, model.DayIndex[session.Day])
	}
	days := model.Days[startDay : endDay+1]

	// day -> start hour -> session id -> tutors
	grid := make(map[model.Day]map[int]map[string][]string)
	byId := make(map[string]model.Session, len(sessions))
	for _, session := range sessions {
		byId[session.Id] = session
	}
	for _, pair := range allocation.Pairs() {
		session, ok := byId[pair.Session]
		if !ok {
			continue
		}
		if _, ok := grid[session.Day]; !ok {
			grid[session.Day] = make(map[int]map[string][]string)
		}
		if _, ok := grid[session.Day][session.StartTime]; !ok {
			grid[session.Day][session.StartTime] = make(map[string][]string)
		}
		grid[session.Day][session.StartTime][session.Id] = append(grid[session.Day][session.StartTime][session.Id], pair.Tutor)
	}

	csvWriter := csv.NewWriter(writer)
	header := []string{""}
	for _, day := range days {
		header = append(header, string(day))
	}
	if err := csvWriter.Write(header); err != nil {
		return err
	}

	for hour := startHour; hour < endHour; hour++ {
		row := []string{strconv.Itoa(hour)}
		for _, day := range days {
			var cell strings.Builder
			ids := make([]string, 0, len(grid[day][hour]))
			for id := range grid[day][hour] {
				ids = append(ids, id)
			}
			slices.Sort(ids)
			for _, id := range ids {
				fmt.Fprintf(&cell, "%v: %v ", id, strings.Join(grid[day][hour][id], " & "))
			}
			row = append(row, cell.String())
		}
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
