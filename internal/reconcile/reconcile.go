// Package reconcile collapses free-text artist names into stable artist
// identities and inserts songs referencing them.
package reconcile

import (
	"log"
	"sort"

	"github.com/hamid659/csv-import/internal/playlog"
	"github.com/hamid659/csv-import/internal/store"
)

// Result holds the results of a reconciliation run.
type Result struct {
	DistinctArtists int
	ArtistsCreated  int
	SongsInserted   int
	SongsSkipped    int
}

// Reconciler materializes artist identities and persists songs through a
// shared store handle.
type Reconciler struct {
	store *store.Store
}

// New creates a reconciler.
func New(st *store.Store) *Reconciler {
	return &Reconciler{store: st}
}

// CollectNames returns the distinct trimmed clean artist names across rows.
// Set semantics: a name appearing N times contributes once. The result is
// sorted so artist insertion order is deterministic.
func CollectNames(rows []playlog.Row) []string {
	set := make(map[string]struct{})
	for _, r := range rows {
		set[r.ArtistClean()] = struct{}{}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reconcile runs the two bulk phases over the valid rows: artist identity
// materialization (one transaction), then song insertion (another). Each
// phase commits independently; an artist batch already committed stays
// committed if song insertion later fails.
func (r *Reconciler) Reconcile(rows []playlog.Row) (*Result, error) {
	names := CollectNames(rows)

	created, err := r.store.EnsureArtists(names)
	if err != nil {
		return nil, err
	}
	log.Printf("Materialized %d distinct artists (%d new)", len(names), created)

	mapping, err := r.store.ArtistMapping()
	if err != nil {
		return nil, err
	}

	songs, skipped := resolveSongs(rows, mapping)
	if err := r.store.InsertSongs(songs); err != nil {
		return nil, err
	}
	log.Printf("Inserted %d songs", len(songs))

	return &Result{
		DistinctArtists: len(names),
		ArtistsCreated:  created,
		SongsInserted:   len(songs),
		SongsSkipped:    skipped,
	}, nil
}

// resolveSongs maps each row to a Song through the artist mapping. A row
// whose artist key cannot be resolved is skipped with a warning, never
// fatal; materialization guarantees this does not happen, but the mapping
// comes from a read-back, so it is checked anyway.
func resolveSongs(rows []playlog.Row, mapping map[string]int64) ([]store.Song, int) {
	songs := make([]store.Song, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		artistID, ok := mapping[row.ArtistClean()]
		if !ok {
			log.Printf("Warning: artist not found for song %q, skipping insertion",
				row[playlog.FieldSongClean])
			skipped++
			continue
		}
		songs = append(songs, store.Song{
			NameRaw:   row[playlog.FieldSongRaw],
			NameClean: row[playlog.FieldSongClean],
			ArtistID:  artistID,
			Callsign:  row[playlog.FieldCallsign],
			Time:      row[playlog.FieldTime],
			UniqueID:  row[playlog.FieldUniqueID],
			Combined:  row[playlog.FieldCombined],
			FirstPlay: row[playlog.FieldFirstPlay],
		})
	}
	return songs, skipped
}
