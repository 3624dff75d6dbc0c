package playlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// WriteCleaned writes the fixed header followed by rows, in order, as CSV.
// Re-parsing the output yields the same row sequence.
func WriteCleaned(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCleaned writes the cleaned data set to a file at path.
func SaveCleaned(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating cleaned file: %w", err)
	}
	if err := WriteCleaned(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
