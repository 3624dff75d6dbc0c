package store

// Song is one persisted airplay entry referencing an artist identity.
type Song struct {
	NameRaw   string
	NameClean string
	ArtistID  int64
	Callsign  string
	Time      string
	UniqueID  string
	Combined  string
	FirstPlay string
}

const insertSongQuery = `INSERT INTO songs
(song_name_raw, song_name_clean, artist_id, callsign, time, unique_id, combined, first_play)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// InsertSongs inserts all songs in one transaction.
func (s *Store) InsertSongs(songs []Song) error {
	tx, err := s.db.Begin()
	if err != nil {
		return wrap("insert songs", err)
	}

	query := s.rebind(insertSongQuery)
	for _, song := range songs {
		if _, err := tx.Exec(query,
			song.NameRaw, song.NameClean, song.ArtistID,
			song.Callsign, song.Time, song.UniqueID, song.Combined, song.FirstPlay,
		); err != nil {
			tx.Rollback()
			return wrap("insert songs", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap("insert songs", err)
	}
	return nil
}

// InsertSong inserts a single song outside any batch. Used when routing a
// malformed row to the sentinel artist.
func (s *Store) InsertSong(song Song) error {
	if _, err := s.db.Exec(s.rebind(insertSongQuery),
		song.NameRaw, song.NameClean, song.ArtistID,
		song.Callsign, song.Time, song.UniqueID, song.Combined, song.FirstPlay,
	); err != nil {
		return wrap("insert song", err)
	}
	return nil
}

// SongsByArtist returns how many songs reference each artist key.
func (s *Store) SongsByArtist() (map[int64]int64, error) {
	rows, err := s.db.Query("SELECT artist_id, COUNT(*) FROM songs GROUP BY artist_id")
	if err != nil {
		return nil, wrap("songs by artist", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, wrap("songs by artist", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
