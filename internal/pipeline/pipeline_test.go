package pipeline

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hamid659/csv-import/internal/config"
	"github.com/hamid659/csv-import/internal/fetch"
	"github.com/hamid659/csv-import/internal/playlog"
	"github.com/hamid659/csv-import/internal/store"
)

const sampleCSV = `SONG RAW,Song Clean,ARTIST RAW,ARTIST CLEAN,CALLSIGN,TIME,UNIQUE_ID,COMBINED,First?
s1,s1,a1, A1 ,W1,12:00,u1,c1,Y
s2,s2,a2,A2,W1,13:00,u1,c2,N
bad,bad,,,W1,14:00,,c3,N
`

func serveCSV(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, url string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Database: config.Database{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(dir, "test.db"),
		},
		Import: config.Import{
			URL:     url,
			BadData: config.BadDataReport,
		},
		Output: config.Output{DataDir: dir},
	}
}

func openStore(t *testing.T, cfg *config.Config) *store.Store {
	t.Helper()
	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.CreateTables(); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunEndToEnd(t *testing.T) {
	srv := serveCSV(t, sampleCSV)
	cfg := testConfig(t, srv.URL)
	st := openStore(t, cfg)

	result, err := New(cfg, st).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ValidRows != 2 || result.MalformedRows != 1 {
		t.Errorf("expected 2 valid / 1 malformed, got %d / %d", result.ValidRows, result.MalformedRows)
	}
	if result.DuplicatesFound != 1 {
		t.Errorf("expected 1 duplicate, got %d", result.DuplicatesFound)
	}

	// The malformed row went to a report, not the store.
	if result.ReportPath == "" {
		t.Error("expected a bad data report path")
	} else if _, err := os.Stat(result.ReportPath); err != nil {
		t.Errorf("report file missing: %v", err)
	}
	if _, ok, _ := st.LookupArtist(store.UnknownArtistName); ok {
		t.Error("sentinel artist should not exist in report mode")
	}

	// Both whitespace variants of A1 collapse; A2 gets its own identity.
	mapping, err := st.ArtistMapping()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mapping) != 2 {
		t.Errorf("expected 2 artist identities, got %v", mapping)
	}
	for _, name := range []string{"A1", "A2"} {
		if _, ok := mapping[name]; !ok {
			t.Errorf("expected identity for %q", name)
		}
	}

	_, songs, err := st.Counts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if songs != 2 {
		t.Errorf("expected 2 songs persisted, got %d", songs)
	}

	// Cleaned file round-trips to the persisted row set.
	data, err := os.ReadFile(result.CleanedPath)
	if err != nil {
		t.Fatalf("cleaned file missing: %v", err)
	}
	rows, err := playlog.Parse(string(data))
	if err != nil {
		t.Fatalf("cleaned file unparseable: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 cleaned rows, got %d", len(rows))
	}
}

func TestRunRemoveDuplicatesQuarantinesWholeID(t *testing.T) {
	srv := serveCSV(t, sampleCSV)
	cfg := testConfig(t, srv.URL)
	cfg.Import.RemoveDuplicates = true
	st := openStore(t, cfg)

	result, err := New(cfg, st).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both u1 rows are dropped, the first occurrence included.
	if result.RowsPersisted != 0 {
		t.Errorf("expected 0 rows persisted, got %d", result.RowsPersisted)
	}
	_, songs, _ := st.Counts()
	if songs != 0 {
		t.Errorf("expected 0 songs, got %d", songs)
	}
}

func TestRunPreAnalysisPersistsNothing(t *testing.T) {
	srv := serveCSV(t, sampleCSV)
	cfg := testConfig(t, srv.URL)
	cfg.Import.PreAnalysis = true
	cfg.Import.BadData = config.BadDataInsert
	st := openStore(t, cfg)

	result, err := New(cfg, st).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DuplicatesFound != 1 || result.MalformedRows != 1 {
		t.Errorf("expected reporting to still run, got %+v", result)
	}

	artists, songs, _ := st.Counts()
	if artists != 0 || songs != 0 {
		t.Errorf("expected nothing persisted, got %d artists, %d songs", artists, songs)
	}
	if result.CleanedPath != "" {
		t.Error("expected no cleaned file in pre-analysis mode")
	}
	if _, err := os.Stat(filepath.Join(cfg.GetDataDir(), CleanedFileName)); !os.IsNotExist(err) {
		t.Error("cleaned file written in pre-analysis mode")
	}
}

func TestRunBadDataInsertMode(t *testing.T) {
	srv := serveCSV(t, sampleCSV)
	cfg := testConfig(t, srv.URL)
	cfg.Import.BadData = config.BadDataInsert
	st := openStore(t, cfg)

	result, err := New(cfg, st).Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReportPath != "" {
		t.Error("expected no report path in insert mode")
	}

	unknownID, ok, _ := st.LookupArtist(store.UnknownArtistName)
	if !ok {
		t.Fatal("expected sentinel artist")
	}
	counts, _ := st.SongsByArtist()
	if counts[unknownID] != 1 {
		t.Errorf("expected 1 song under sentinel, got %d", counts[unknownID])
	}
}

func TestRunHeaderMismatchIsFatal(t *testing.T) {
	srv := serveCSV(t, "WRONG,Header\nrow,two\n")
	cfg := testConfig(t, srv.URL)
	st := openStore(t, cfg)

	_, err := New(cfg, st).Run()
	var he *playlog.HeaderError
	if !errors.As(err, &he) {
		t.Fatalf("expected HeaderError, got %v", err)
	}

	artists, songs, _ := st.Counts()
	if artists != 0 || songs != 0 {
		t.Error("expected zero rows processed after header mismatch")
	}
}

func TestRunEmptyInputIsFatal(t *testing.T) {
	srv := serveCSV(t, "")
	cfg := testConfig(t, srv.URL)
	st := openStore(t, cfg)

	_, err := New(cfg, st).Run()
	if !errors.Is(err, playlog.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	srv := serveCSV(t, "")
	srv.Close()
	cfg := testConfig(t, srv.URL)
	st := openStore(t, cfg)

	_, err := New(cfg, st).Run()
	var fe *fetch.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected fetch.Error, got %v", err)
	}
}
