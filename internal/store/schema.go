package store

import "github.com/hamid659/csv-import/internal/config"

// The two dialects only differ in how generated keys are declared.
var schemas = map[string][]string{
	config.DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS artists (
    artist_id INTEGER PRIMARY KEY AUTOINCREMENT,
    artist_name_raw TEXT NOT NULL,
    artist_name_clean TEXT NOT NULL UNIQUE
)`,
		`CREATE TABLE IF NOT EXISTS songs (
    song_id INTEGER PRIMARY KEY AUTOINCREMENT,
    song_name_raw TEXT,
    song_name_clean TEXT,
    artist_id INTEGER NOT NULL REFERENCES artists(artist_id),
    callsign TEXT,
    time TEXT,
    unique_id TEXT,
    combined TEXT,
    first_play TEXT
)`,
	},
	config.DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS artists (
    artist_id BIGSERIAL PRIMARY KEY,
    artist_name_raw TEXT NOT NULL,
    artist_name_clean TEXT NOT NULL UNIQUE
)`,
		`CREATE TABLE IF NOT EXISTS songs (
    song_id BIGSERIAL PRIMARY KEY,
    song_name_raw TEXT,
    song_name_clean TEXT,
    artist_id BIGINT NOT NULL REFERENCES artists(artist_id),
    callsign TEXT,
    time TEXT,
    unique_id TEXT,
    combined TEXT,
    first_play TEXT
)`,
	},
}

// CreateTables creates the artists and songs tables if they do not exist.
func (s *Store) CreateTables() error {
	for _, stmt := range schemas[s.driver] {
		if _, err := s.db.Exec(stmt); err != nil {
			return wrap("create tables", err)
		}
	}
	return nil
}

// DropTables drops the songs and artists tables, songs first because of the
// foreign key.
func (s *Store) DropTables() error {
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS songs",
		"DROP TABLE IF EXISTS artists",
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return wrap("drop tables", err)
		}
	}
	return nil
}
