// Package output persists cleaned tables as CSV files
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
)

// Config holds writer configuration
type Config struct {
	Dir         string
	RetryConfig *util.RetryConfig // nil = use default
}

// Writer writes clean_<entity>.csv files into one directory
type Writer struct {
	dir         string
	retryConfig *util.RetryConfig
}

// New creates a new Writer
func New(cfg *Config) *Writer {
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = util.DefaultRetryConfig()
	}
	return &Writer{
		dir:         cfg.Dir,
		retryConfig: cfg.RetryConfig,
	}
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.dir
}

// Result is the outcome of writing one table
type Result struct {
	Entity catalog.Entity
	Path   string
	Rows   int
	Bytes  int64
	Err    error
}

// WriteAll writes every table. A failure affects only its own table; the
// remaining tables are still written.
func (w *Writer) WriteAll(tables []catalog.Table) []Result {
	results := make([]Result, 0, len(tables))
	for _, t := range tables {
		r := w.Write(t)
		if r.Err != nil {
			util.ErrorLog("Failed to save %s: %v", filepath.Base(r.Path), r.Err)
		} else {
			util.InfoLog("  Saved %s (%s rows)", filepath.Base(r.Path), util.FormatCount(r.Rows))
		}
		results = append(results, r)
	}
	return results
}

// Write writes one table to a temporary file and renames it into place, so
// a reader never sees a partial file
func (w *Writer) Write(t catalog.Table) Result {
	path := filepath.Join(w.dir, catalog.CleanFileName(t.Entity()))
	res := Result{Entity: t.Entity(), Path: path}

	if err := util.RetryableMkdirAll(w.dir, 0755, w.retryConfig); err != nil {
		res.Err = fmt.Errorf("failed to create directory: %w", err)
		return res
	}

	tmp, err := util.RetryableCreateTemp(w.dir, "."+catalog.CleanFileName(t.Entity())+".*.part", w.retryConfig)
	if err != nil {
		res.Err = fmt.Errorf("failed to create temp file: %w", err)
		return res
	}
	tmpPath := tmp.Name()

	if err := encode(tmp, t); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		res.Err = fmt.Errorf("failed to write rows: %w", err)
		return res
	}

	info, statErr := tmp.Stat()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		res.Err = fmt.Errorf("failed to close temp file: %w", err)
		return res
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		res.Err = fmt.Errorf("failed to set permissions: %w", err)
		return res
	}

	if err := util.RetryableRename(tmpPath, path, w.retryConfig); err != nil {
		os.Remove(tmpPath)
		res.Err = fmt.Errorf("failed to rename: %w", err)
		return res
	}

	res.Rows = t.Len()
	if statErr == nil {
		res.Bytes = info.Size()
	}
	util.DebugLog("Wrote %s (%s)", path, util.FormatBytes(res.Bytes))
	return res
}

func encode(f *os.File, t catalog.Table) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		if err := cw.Write(t.Record(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
