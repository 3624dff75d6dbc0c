package store

import (
	"database/sql"
	"fmt"
)

// UnknownArtistName is the clean name of the sentinel identity that anchors
// malformed rows.
const UnknownArtistName = "unknown"

const insertArtistQuery = `INSERT INTO artists (artist_name_raw, artist_name_clean)
VALUES (?, ?) ON CONFLICT (artist_name_clean) DO NOTHING`

// EnsureArtists materializes an artist identity for every clean name, in one
// transaction. Existing identities are left untouched. Returns the number of
// newly created identities. Calling it twice with the same names is a no-op
// the second time.
func (s *Store) EnsureArtists(names []string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, wrap("ensure artists", err)
	}

	query := s.rebind(insertArtistQuery)
	created := 0
	for _, name := range names {
		res, err := tx.Exec(query, name, name)
		if err != nil {
			tx.Rollback()
			return 0, wrap("ensure artists", fmt.Errorf("inserting %q: %w", name, err))
		}
		if n, err := res.RowsAffected(); err == nil {
			created += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, wrap("ensure artists", err)
	}
	return created, nil
}

// ArtistMapping reads back every artist identity as a clean name to key map.
func (s *Store) ArtistMapping() (map[string]int64, error) {
	rows, err := s.db.Query("SELECT artist_id, artist_name_clean FROM artists")
	if err != nil {
		return nil, wrap("artist mapping", err)
	}
	defer rows.Close()

	mapping := make(map[string]int64)
	for rows.Next() {
		var id int64
		var clean string
		if err := rows.Scan(&id, &clean); err != nil {
			return nil, wrap("artist mapping", err)
		}
		mapping[clean] = id
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("artist mapping", err)
	}
	return mapping, nil
}

// LookupArtist returns the key of the artist with the given clean name, and
// whether one exists.
func (s *Store) LookupArtist(clean string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow(
		s.rebind("SELECT artist_id FROM artists WHERE artist_name_clean = ?"), clean,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("lookup artist", err)
	}
	return id, true, nil
}

// UnknownArtistID returns the key of the sentinel "unknown" artist, creating
// it on first need. Insert-or-ignore keeps this safe against a racing run.
func (s *Store) UnknownArtistID() (int64, error) {
	if id, ok, err := s.LookupArtist(UnknownArtistName); err != nil {
		return 0, err
	} else if ok {
		return id, nil
	}

	if _, err := s.db.Exec(s.rebind(insertArtistQuery), UnknownArtistName, UnknownArtistName); err != nil {
		return 0, wrap("create unknown artist", err)
	}

	id, ok, err := s.LookupArtist(UnknownArtistName)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, wrap("create unknown artist", fmt.Errorf("sentinel missing after insert"))
	}
	return id, nil
}

// Counts returns the number of persisted artists and songs.
func (s *Store) Counts() (artists, songs int64, err error) {
	if err := s.db.QueryRow("SELECT COUNT(*) FROM artists").Scan(&artists); err != nil {
		return 0, 0, wrap("counts", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM songs").Scan(&songs); err != nil {
		return 0, 0, wrap("counts", err)
	}
	return artists, songs, nil
}
