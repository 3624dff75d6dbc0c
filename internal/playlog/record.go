// Package playlog parses and validates the delimited radio-airplay log:
// header enforcement, structural row validation, duplicate detection, and
// cleaned-file output.
package playlog

import "strings"

// FieldCount is the number of fields in a well-formed row.
const FieldCount = 9

// Field positions within a row.
const (
	FieldSongRaw = iota
	FieldSongClean
	FieldArtistRaw
	FieldArtistClean
	FieldCallsign
	FieldTime
	FieldUniqueID
	FieldCombined
	FieldFirstPlay
)

// Header is the exact header row every source file must carry.
var Header = []string{
	"SONG RAW", "Song Clean", "ARTIST RAW",
	"ARTIST CLEAN", "CALLSIGN", "TIME",
	"UNIQUE_ID", "COMBINED", "First?",
}

// Row is one data row of the airplay log, fields in file order.
// A Row produced by Validate as valid always has exactly FieldCount fields.
type Row []string

// UniqueID returns the unique-id field as-is. Duplicate detection keys on
// the untrimmed value; only validation trims.
func (r Row) UniqueID() string {
	return r[FieldUniqueID]
}

// ArtistClean returns the trimmed clean artist name.
func (r Row) ArtistClean() string {
	return strings.TrimSpace(r[FieldArtistClean])
}

// Field returns the field at position i, or "" when the row is short.
// Malformed rows routed to the store use this for their missing tail.
func (r Row) Field(i int) string {
	if i < len(r) {
		return r[i]
	}
	return ""
}

// Malformed is a row that failed structural validation, kept verbatim for
// reporting or sentinel insertion.
type Malformed struct {
	Fields     Row
	FieldCount int
}
