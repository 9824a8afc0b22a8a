// Package tabular parses the tool's tabular input formats into the domain
// model and renders results back to CSV text. The allocation engine itself
// is format-agnostic; everything file-shaped lives here.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/mitchellh/mapstructure"

	"github.com/BraeWebb/allocate/pkg/model"
)

// Column sets double as CSV schemas: a file must carry exactly these
// columns, and empty cells fall back to the record defaults.
var (
	tutorColumns   = []string{"name", "is_junior", "pref_contig", "lower_hr_limit", "upper_hr_limit", "daily_max", "session_preference"}
	sessionColumns = []string{"id", "day", "start_time", "duration", "lower_tutor_count", "upper_tutor_count"}
)

// InvalidCSVError reports a file that does not match its expected schema.
type InvalidCSVError struct {
	Message string
}

func (err InvalidCSVError) Error() string {
	return "invalid csv: " + err.Message
}

// ReadTutors decodes tutor records from a schema-validated CSV stream.
func ReadTutors(reader io.Reader) ([]model.Tutor, error) {
	rows, err := readRows(reader, tutorColumns)
	if err != nil {
		return nil, err
	}

	tutors := make([]model.Tutor, 0, len(rows))
	for _, row := range rows {
		tutor := model.DefaultTutor()
		if err := decodeRow(row, &tutor); err != nil {
			return nil, err
		}
		tutors = append(tutors, tutor)
	}
	return tutors, nil
}

// ReadSessions decodes session records from a schema-validated CSV stream.
func ReadSessions(reader io.Reader) ([]model.Session, error) {
	rows, err := readRows(reader, sessionColumns)
	if err != nil {
		return nil, err
	}

	sessions := make([]model.Session, 0, len(rows))
	for _, row := range rows {
		session := model.DefaultSession()
		if err := decodeRow(row, &session); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func LoadTutors(path string) ([]model.Tutor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadTutors(file)
}

func LoadSessions(path string) ([]model.Session, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadSessions(file)
}

// readRows validates the header against the schema and returns each data row
// as a column-to-value map with empty cells dropped, so decoding leaves the
// record defaults in place.
func readRows(reader io.Reader, columns []string) ([]map[string]any, error) {
	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, InvalidCSVError{Message: "missing header row"}
	}

	header := records[0]
	sortedHeader, sortedColumns := slices.Clone(header), slices.Clone(columns)
	slices.Sort(sortedHeader)
	slices.Sort(sortedColumns)
	if !slices.Equal(sortedHeader, sortedColumns) {
		return nil, InvalidCSVError{Message: fmt.Sprintf("expected columns %v, found %v", columns, header)}
	}

	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(record))
		for i, value := range record {
			if value != "" {
				row[header[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(row map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(row); err != nil {
		return InvalidCSVError{Message: err.Error()}
	}
	return nil
}
