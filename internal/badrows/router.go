// Package badrows routes malformed rows: either into a timestamped side
// report or into the store under the sentinel "unknown" artist.
package badrows

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hamid659/csv-import/internal/config"
	"github.com/hamid659/csv-import/internal/playlog"
	"github.com/hamid659/csv-import/internal/store"
)

// Router handles every malformed row of one run. The mode is fixed for the
// run's duration.
type Router struct {
	mode  string
	dir   string
	store *store.Store

	reportPath string
	file       *os.File
	writer     *csv.Writer

	unknownID int64
	count     int
}

// NewRouter creates a router. dir is where report files are written; st is
// only used in insert mode and may be nil in report mode.
func NewRouter(mode, dir string, st *store.Store) *Router {
	return &Router{
		mode:  mode,
		dir:   dir,
		store: st,
		reportPath: filepath.Join(dir,
			fmt.Sprintf("bad_data_report_%s.csv", time.Now().Format("20060102_150405"))),
	}
}

// Route processes one malformed row according to the configured mode.
func (r *Router) Route(m playlog.Malformed) error {
	r.count++
	if r.mode == config.BadDataInsert {
		return r.insert(m)
	}
	return r.report(m)
}

// report appends the row to the side file: one CSV row holding the
// comma-joined original fields and the observed field count. The file is
// opened lazily so a clean run leaves no empty report behind.
func (r *Router) report(m playlog.Malformed) error {
	if r.file == nil {
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
		f, err := os.OpenFile(r.reportPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening bad data report: %w", err)
		}
		r.file = f
		r.writer = csv.NewWriter(f)
	}

	record := []string{strings.Join(m.Fields, ","), strconv.Itoa(m.FieldCount)}
	if err := r.writer.Write(record); err != nil {
		return fmt.Errorf("writing bad data report: %w", err)
	}
	r.writer.Flush()
	return r.writer.Error()
}

// insert persists the row as a song under the sentinel artist. Fields beyond
// the observed count are treated as empty.
func (r *Router) insert(m playlog.Malformed) error {
	if r.unknownID == 0 {
		id, err := r.store.UnknownArtistID()
		if err != nil {
			return err
		}
		r.unknownID = id
	}

	err := r.store.InsertSong(store.Song{
		NameRaw:   m.Fields.Field(playlog.FieldSongRaw),
		NameClean: m.Fields.Field(playlog.FieldSongClean),
		ArtistID:  r.unknownID,
		Callsign:  m.Fields.Field(playlog.FieldCallsign),
		Time:      m.Fields.Field(playlog.FieldTime),
		UniqueID:  m.Fields.Field(playlog.FieldUniqueID),
		Combined:  m.Fields.Field(playlog.FieldCombined),
		FirstPlay: m.Fields.Field(playlog.FieldFirstPlay),
	})
	if err != nil {
		return err
	}
	log.Printf("Inserted bad data linked to unknown artist for song %q",
		m.Fields.Field(playlog.FieldSongClean))
	return nil
}

// Count returns how many malformed rows were routed.
func (r *Router) Count() int {
	return r.count
}

// ReportPath returns where report-mode rows are (or would be) written.
func (r *Router) ReportPath() string {
	return r.reportPath
}

// Close flushes and closes the report file if one was opened, and logs the
// run summary when any malformed row was seen.
func (r *Router) Close() error {
	if r.count > 0 {
		if r.mode == config.BadDataInsert {
			log.Printf("%d malformed rows attributed to the %q artist", r.count, store.UnknownArtistName)
		} else {
			log.Printf("Bad data report created: %s", r.reportPath)
		}
	}

	if r.file == nil {
		return nil
	}
	r.writer.Flush()
	if err := r.writer.Error(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
