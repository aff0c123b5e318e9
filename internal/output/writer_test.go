package output

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/util"
)

func fastRetry() *util.RetryConfig {
	return &util.RetryConfig{MaxAttempts: 1}
}

func sampleTables() []catalog.Table {
	genres := catalog.GenreTable{
		{ID: 1, Title: sql.NullString{String: "Rock, Pop", Valid: true}},
		{ID: 2, ParentID: sql.NullInt64{Int64: 1, Valid: true}},
	}
	features := catalog.FeatureTable{
		{TrackID: 2, Tempo: sql.NullFloat64{Float64: 165.9, Valid: true}},
	}
	return []catalog.Table{genres, features}
}

func TestWriteAllFormatsCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := New(&Config{Dir: dir, RetryConfig: fastRetry()})

	results := w.WriteAll(sampleTables())

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s failed: %v", r.Entity, r.Err)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir, "clean_genres.csv"))
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	want := "genre_id,genre_parent_id,genre_title\n1,,\"Rock, Pop\"\n2,1,\n"
	if string(got) != want {
		t.Errorf("clean_genres.csv =\n%s\nexpected\n%s", got, want)
	}

	got, _ = os.ReadFile(filepath.Join(dir, "clean_echonest.csv"))
	if !bytes.Contains(got, []byte("\n2,,,,,,,165.9,,,,,,\n")) {
		t.Errorf("unexpected echonest output:\n%s", got)
	}
	if results[1].Rows != 1 || results[1].Bytes != int64(len(got)) {
		t.Errorf("result = %+v", results[1])
	}
}

func TestWriteIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	w := New(&Config{Dir: dir, RetryConfig: fastRetry()})

	w.WriteAll(sampleTables())
	first, _ := os.ReadFile(filepath.Join(dir, "clean_genres.csv"))
	w.WriteAll(sampleTables())
	second, _ := os.ReadFile(filepath.Join(dir, "clean_genres.csv"))

	if !bytes.Equal(first, second) {
		t.Error("rewriting identical tables should produce identical bytes")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected only the two output files, found %d entries", len(entries))
	}
}

func TestWriteFailureIsolatedToTable(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory where the genres file belongs blocks the rename.
	blocker := filepath.Join(dir, "clean_genres.csv")
	if err := os.MkdirAll(filepath.Join(blocker, "keep"), 0755); err != nil {
		t.Fatal(err)
	}

	w := New(&Config{Dir: dir, RetryConfig: fastRetry()})
	results := w.WriteAll(sampleTables())

	if results[0].Err == nil {
		t.Error("expected genres write to fail")
	}
	if results[1].Err != nil {
		t.Errorf("echonest should still be written: %v", results[1].Err)
	}
	if _, err := os.Stat(filepath.Join(dir, "clean_echonest.csv")); err != nil {
		t.Errorf("echonest file missing: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, ".clean_genres.csv.*.part"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestAcquireLockExcludesSecondHolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if lock.Path() != dir+".lock" {
		t.Errorf("lock path = %s", lock.Path())
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("taking the lock should not create the output directory")
	}

	if _, err := AcquireLock(dir + "/"); !errors.Is(err, util.ErrLocked) {
		t.Errorf("second acquire should fail with ErrLocked, got %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	again, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("re-acquire after release failed: %v", err)
	}
	again.Release()
}
