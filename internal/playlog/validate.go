package playlog

import "strings"

// IsValid reports whether a row is structurally valid: exactly FieldCount
// fields, a non-blank unique id, and a non-blank clean artist name. The
// check never consults prior rows or the store.
func IsValid(r Row) bool {
	if len(r) != FieldCount {
		return false
	}
	if strings.TrimSpace(r[FieldUniqueID]) == "" {
		return false
	}
	if strings.TrimSpace(r[FieldArtistClean]) == "" {
		return false
	}
	return true
}

// Validate splits rows into valid rows and malformed rows, both in their
// original order.
func Validate(rows []Row) (valid []Row, malformed []Malformed) {
	for _, r := range rows {
		if IsValid(r) {
			valid = append(valid, r)
		} else {
			malformed = append(malformed, Malformed{Fields: r, FieldCount: len(r)})
		}
	}
	return valid, malformed
}
