package store

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hamid659/csv-import/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{
		Database: config.Database{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(t.TempDir(), "test.db"),
		},
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	if err := s.CreateTables(); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnsureArtistsIdempotent(t *testing.T) {
	s := openTestStore(t)
	names := []string{"A1", "A2", "A3"}

	created, err := s.EnsureArtists(names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 3 {
		t.Errorf("expected 3 created, got %d", created)
	}

	first, err := s.ArtistMapping()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err = s.EnsureArtists(names)
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if created != 0 {
		t.Errorf("expected 0 created on second pass, got %d", created)
	}

	second, err := s.ArtistMapping()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("mapping changed between passes:\n first %v\nsecond %v", first, second)
	}
}

func TestArtistMappingCoversEnsuredNames(t *testing.T) {
	s := openTestStore(t)
	names := []string{"A1", "A2"}
	if _, err := s.EnsureArtists(names); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mapping, err := s.ArtistMapping()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range names {
		if _, ok := mapping[name]; !ok {
			t.Errorf("mapping missing %q", name)
		}
	}
}

func TestLookupArtist(t *testing.T) {
	s := openTestStore(t)
	s.EnsureArtists([]string{"A1"})

	id, ok, err := s.LookupArtist("A1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || id == 0 {
		t.Errorf("expected A1 found with non-zero key, got ok=%v id=%d", ok, id)
	}

	_, ok, err = s.LookupArtist("nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected absent artist to report not found")
	}
}

func TestUnknownArtistLazyCreate(t *testing.T) {
	s := openTestStore(t)

	if _, ok, _ := s.LookupArtist(UnknownArtistName); ok {
		t.Fatal("sentinel should not exist before first need")
	}

	id, err := s.UnknownArtistID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero sentinel key")
	}

	again, err := s.UnknownArtistID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != id {
		t.Errorf("sentinel key changed: %d then %d", id, again)
	}
}

func TestInsertSongs(t *testing.T) {
	s := openTestStore(t)
	s.EnsureArtists([]string{"A1"})
	mapping, _ := s.ArtistMapping()

	songs := []Song{
		{NameRaw: "s1", NameClean: "s1", ArtistID: mapping["A1"], Callsign: "W1", Time: "12:00", UniqueID: "u1", Combined: "c1", FirstPlay: "Y"},
		{NameRaw: "s2", NameClean: "s2", ArtistID: mapping["A1"], Callsign: "W1", Time: "13:00", UniqueID: "u2", Combined: "c2", FirstPlay: "N"},
	}
	if err := s.InsertSongs(songs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, n, err := s.Counts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 songs, got %d", n)
	}
}

func TestInsertSongRejectsMissingArtist(t *testing.T) {
	s := openTestStore(t)

	err := s.InsertSong(Song{NameRaw: "s", NameClean: "s", ArtistID: 999})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func TestDropAndRecreateTables(t *testing.T) {
	s := openTestStore(t)
	s.EnsureArtists([]string{"A1"})

	if err := s.DropTables(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CreateTables(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	artists, songs, err := s.Counts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artists != 0 || songs != 0 {
		t.Errorf("expected empty tables after recreate, got %d artists, %d songs", artists, songs)
	}
}

func TestRebindPostgres(t *testing.T) {
	s := &Store{driver: config.DriverPostgres}
	got := s.rebind("INSERT INTO t (a, b) VALUES (?, ?)")
	want := "INSERT INTO t (a, b) VALUES ($1, $2)"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
}

func TestRebindSQLiteUntouched(t *testing.T) {
	s := &Store{driver: config.DriverSQLite}
	q := "SELECT * FROM t WHERE a = ?"
	if got := s.rebind(q); got != q {
		t.Errorf("rebind changed sqlite query: %q", got)
	}
}
