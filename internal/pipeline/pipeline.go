// Package pipeline orchestrates one import run: fetch, parse, validate,
// route bad rows, apply the duplicate policy, write the cleaned file, and
// reconcile into the store.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hamid659/csv-import/internal/badrows"
	"github.com/hamid659/csv-import/internal/config"
	"github.com/hamid659/csv-import/internal/fetch"
	"github.com/hamid659/csv-import/internal/playlog"
	"github.com/hamid659/csv-import/internal/reconcile"
	"github.com/hamid659/csv-import/internal/store"
)

// CleanedFileName is where the post-policy valid rows are written inside
// the data directory.
const CleanedFileName = "cleaned_data.csv"

// Result holds the results of one run.
type Result struct {
	TotalRows       int
	ValidRows       int
	MalformedRows   int
	DuplicatesFound int
	RowsPersisted   int
	CleanedPath     string
	ReportPath      string
	Reconciled      *reconcile.Result
	PreAnalysis     bool
}

// Pipeline runs the import sequentially over a shared store handle.
type Pipeline struct {
	cfg     *config.Config
	store   *store.Store
	fetcher *fetch.Fetcher
}

// New creates a pipeline.
func New(cfg *config.Config, st *store.Store) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		store:   st,
		fetcher: fetch.New(30 * time.Second),
	}
}

// Run executes one full import. Fetch, header, and store failures are
// returned to the caller; per-record issues are routed or skipped with a
// warning and never abort the run.
func (p *Pipeline) Run() (*Result, error) {
	imp := p.cfg.Import
	r := &Result{PreAnalysis: imp.PreAnalysis}

	log.Printf("Fetching airplay log from %s", imp.URL)
	text, err := p.fetcher.Fetch(imp.URL)
	if err != nil {
		return nil, err
	}

	rows, err := playlog.Parse(text)
	if err != nil {
		return nil, err
	}
	r.TotalRows = len(rows)

	valid, malformed := playlog.Validate(rows)
	r.ValidRows = len(valid)
	r.MalformedRows = len(malformed)
	log.Printf("Parsed %d rows: %d valid, %d malformed", len(rows), len(valid), len(malformed))

	if err := p.routeBadRows(malformed, r); err != nil {
		return nil, err
	}

	duplicates := playlog.DetectDuplicates(valid)
	r.DuplicatesFound = len(duplicates)
	if len(duplicates) > 0 {
		log.Printf("Found %d duplicate rows based on UNIQUE_ID", len(duplicates))
		for _, dup := range duplicates {
			log.Printf("Duplicate row: %v", dup)
		}
	}

	if imp.RemoveDuplicates {
		before := len(valid)
		valid = playlog.RemoveDuplicates(valid, duplicates)
		log.Printf("Removed %d rows carrying duplicated ids", before-len(valid))
	}
	r.RowsPersisted = len(valid)

	if imp.PreAnalysis {
		log.Print("Pre-analysis mode: skipping cleaned file and persistence")
		return r, nil
	}

	r.CleanedPath = filepath.Join(p.cfg.GetDataDir(), CleanedFileName)
	if err := os.MkdirAll(p.cfg.GetDataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if err := playlog.SaveCleaned(r.CleanedPath, valid); err != nil {
		return nil, err
	}
	log.Printf("Cleaned data saved to %s", r.CleanedPath)

	reconciled, err := reconcile.New(p.store).Reconcile(valid)
	if err != nil {
		return nil, err
	}
	r.Reconciled = reconciled

	return r, nil
}

// routeBadRows sends every malformed row through the configured router.
// Pre-analysis runs always use report mode so nothing is persisted.
func (p *Pipeline) routeBadRows(malformed []playlog.Malformed, r *Result) error {
	if len(malformed) == 0 {
		return nil
	}

	mode := p.cfg.Import.BadData
	if p.cfg.Import.PreAnalysis {
		mode = config.BadDataReport
	}

	router := badrows.NewRouter(mode, p.cfg.GetDataDir(), p.store)
	for _, m := range malformed {
		if err := router.Route(m); err != nil {
			router.Close()
			return err
		}
	}
	if mode == config.BadDataReport {
		r.ReportPath = router.ReportPath()
	}
	return router.Close()
}
