package playlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyInput is returned when the source contains no rows at all.
var ErrEmptyInput = errors.New("input contains no rows")

// HeaderError is returned when the first row does not match Header
// field-for-field. No data rows are processed in that case.
type HeaderError struct {
	Got []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("unexpected header: %v", e.Got)
}

// Parse reads the whole airplay log from text, checks the header, and
// returns the data rows in file order. Line endings are normalized (CRLF
// and bare CR become LF) before parsing. Rows may have any field count;
// classification is Validate's job.
func Parse(text string) ([]Row, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if !headerMatches(header) {
		return nil, &HeaderError{Got: header}
	}

	var rows []Row
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, Row(fields))
	}
	return rows, nil
}

func headerMatches(got []string) bool {
	if len(got) != len(Header) {
		return false
	}
	for i, want := range Header {
		if got[i] != want {
			return false
		}
	}
	return true
}
