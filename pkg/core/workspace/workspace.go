// Package workspace runs the extraction pipeline over a batch of files and
// holds the resulting tables for the session. Per-file pipelines share no
// state, so files load in parallel; results merge at the selection step
// once every file has finished. Failures are isolated per file/sheet and
// collected into a manifest instead of aborting the batch.
package workspace

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"intelligent_accountant/pkg/core/classify"
	"intelligent_accountant/pkg/core/layout"
	"intelligent_accountant/pkg/core/normalize"
	"intelligent_accountant/pkg/core/selector"
	"intelligent_accountant/pkg/core/sheet"
)

// LoadFailure is one entry in the failure manifest shown to the user.
type LoadFailure struct {
	File  string
	Sheet string // empty for file-level failures
	Err   error
}

func (f LoadFailure) String() string {
	if f.Sheet == "" {
		return fmt.Sprintf("%s: %v", filepath.Base(f.File), f.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", filepath.Base(f.File), f.Sheet, f.Err)
}

// Workspace owns the session's normalized tables.
type Workspace struct {
	mu         sync.RWMutex
	rules      *classify.RuleSet
	tables     []*normalize.NormalizedTable
	selections []selector.Selection
	failures   []LoadFailure
	loadedAt   map[string]time.Time // file → mtime at load
}

// New creates an empty workspace. A nil rule set uses the defaults.
func New(rules *classify.RuleSet) *Workspace {
	if rules == nil {
		rules = classify.DefaultRules()
	}
	return &Workspace{
		rules:    rules,
		loadedAt: make(map[string]time.Time),
	}
}

// LoadDirectory loads every spreadsheet in dir. One bad file never blocks
// the rest; its failure lands in the manifest.
func (w *Workspace) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read data directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if SupportedFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	w.LoadFiles(paths)
	return nil
}

// LoadFiles runs the per-file pipelines in parallel and merges the results.
func (w *Workspace) LoadFiles(paths []string) {
	type fileResult struct {
		tables   []*normalize.NormalizedTable
		failures []LoadFailure
	}

	results := make([]fileResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			tables, failures := w.loadFile(path)
			results[i] = fileResult{tables: tables, failures: failures}
		}(i, path)
	}
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	for i, path := range paths {
		w.dropFileLocked(path)
		w.tables = append(w.tables, results[i].tables...)
		w.failures = append(w.failures, results[i].failures...)
		if st, err := os.Stat(path); err == nil {
			w.loadedAt[path] = st.ModTime()
		}
	}
	w.selections = selector.Select(w.tables)
	log.Printf("[Workspace] loaded %d files, workspace now holds %d tables (%d failures)",
		len(paths), len(w.tables), len(w.failures))
}

// loadFile is one isolated pipeline: ingest → detect → classify → build.
func (w *Workspace) loadFile(path string) ([]*normalize.NormalizedTable, []LoadFailure) {
	var grids []*sheet.RawGrid
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".html") || strings.HasSuffix(strings.ToLower(path), ".htm") {
		grids, err = sheet.ReadHTMLFile(path)
	} else {
		grids, err = sheet.ReadWorkbook(path)
	}
	if err != nil {
		return nil, []LoadFailure{{File: path, Err: err}}
	}

	var tables []*normalize.NormalizedTable
	var failures []LoadFailure
	for _, g := range grids {
		info, err := layout.Detect(g)
		if err != nil {
			if errors.Is(err, layout.ErrNoHeaderFound) && len(g.Rows) == 0 {
				// A completely blank sheet is not worth reporting.
				continue
			}
			failures = append(failures, LoadFailure{File: path, Sheet: g.SheetName, Err: err})
			continue
		}
		classes := classify.Classify(g, info, w.rules)
		tables = append(tables, normalize.Build(g, info, classes))
	}
	return tables, failures
}

// Refresh reloads any file whose modification time changed since load.
func (w *Workspace) Refresh() int {
	w.mu.RLock()
	var stale []string
	for path, loaded := range w.loadedAt {
		st, err := os.Stat(path)
		if err != nil || !st.ModTime().Equal(loaded) {
			stale = append(stale, path)
		}
	}
	w.mu.RUnlock()

	if len(stale) > 0 {
		log.Printf("[Workspace] refreshing %d changed files", len(stale))
		w.LoadFiles(stale)
	}
	return len(stale)
}

// Selections returns the per-signature selections, best table first.
// Accessors return snapshots: reloads must never mutate a slice a caller
// is still iterating.
func (w *Workspace) Selections() []selector.Selection {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]selector.Selection, len(w.selections))
	copy(out, w.selections)
	return out
}

// Tables returns every normalized table, winners and alternates alike.
func (w *Workspace) Tables() []*normalize.NormalizedTable {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*normalize.NormalizedTable, len(w.tables))
	copy(out, w.tables)
	return out
}

// Failures returns the manifest of files and sheets that did not parse.
func (w *Workspace) Failures() []LoadFailure {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]LoadFailure, len(w.failures))
	copy(out, w.failures)
	return out
}

// dropFileLocked removes a file's previous tables and failures before a
// reload. Allocates fresh slices so snapshots handed out earlier keep
// their backing arrays. Caller holds the write lock.
func (w *Workspace) dropFileLocked(path string) {
	tables := make([]*normalize.NormalizedTable, 0, len(w.tables))
	for _, t := range w.tables {
		if t.SourceFile != path {
			tables = append(tables, t)
		}
	}
	w.tables = tables

	failures := make([]LoadFailure, 0, len(w.failures))
	for _, f := range w.failures {
		if f.File != path {
			failures = append(failures, f)
		}
	}
	w.failures = failures
}

// SupportedFile reports whether the file name has a loadable extension.
func SupportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".html", ".htm":
		return true
	}
	return false
}
