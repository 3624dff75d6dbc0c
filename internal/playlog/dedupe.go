package playlog

// DetectDuplicates returns every row whose unique id was already seen in an
// earlier row, in original order. The first sighting of an id is never
// flagged; each later sighting is.
func DetectDuplicates(rows []Row) []Row {
	seen := make(map[string]struct{}, len(rows))
	var dups []Row

	for _, r := range rows {
		id := r.UniqueID()
		if _, ok := seen[id]; ok {
			dups = append(dups, r)
		} else {
			seen[id] = struct{}{}
		}
	}
	return dups
}

// RemoveDuplicates drops every row whose unique id appears in dups — the
// first occurrence included, not just the repeats. The whole id is
// quarantined once it is seen twice.
func RemoveDuplicates(rows, dups []Row) []Row {
	if len(dups) == 0 {
		return rows
	}
	dupIDs := make(map[string]struct{}, len(dups))
	for _, d := range dups {
		dupIDs[d.UniqueID()] = struct{}{}
	}

	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if _, ok := dupIDs[r.UniqueID()]; !ok {
			kept = append(kept, r)
		}
	}
	return kept
}
