package main

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/franz/fma-janitor/internal/report"
	"github.com/franz/fma-janitor/internal/store"
	"github.com/spf13/viper"
)

func readEvents(t *testing.T, path string) []report.Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open event log: %v", err)
	}
	defer f.Close()

	var events []report.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e report.Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid event line: %v", err)
		}
		events = append(events, e)
	}
	return events
}

func TestRecordRunStoresRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	run := &store.Run{ID: "run-ok", State: "DONE", StartedAt: time.Now().UTC(), FinishedAt: time.Now().UTC()}

	if err := recordRun(dbPath, run, report.NullLogger()); err != nil {
		t.Fatalf("recordRun failed: %v", err)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	got, err := db.GetRun("run-ok")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.State != "DONE" {
		t.Errorf("state = %q", got.State)
	}
}

func TestRecordRunFailureGoesToEventLog(t *testing.T) {
	tmpDir := t.TempDir()
	logger, err := report.NewEventLogger(filepath.Join(tmpDir, "artifacts"), report.LevelInfo)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	logger.SetRunID("run-bad")

	// A directory cannot be opened as a database file
	dbPath := filepath.Join(tmpDir, "ledger.db")
	if err := os.Mkdir(dbPath, 0755); err != nil {
		t.Fatal(err)
	}

	if err := recordRun(dbPath, &store.Run{ID: "run-bad", State: "DONE"}, logger); err == nil {
		t.Fatal("expected ledger error")
	}
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Event != report.EventError || e.Reason != "ledger" || e.Path != dbPath || e.Error == "" {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.RunID != "run-bad" {
		t.Errorf("run id = %q", e.RunID)
	}
}

func TestHistoryLimit(t *testing.T) {
	t.Cleanup(func() { viper.Set("history.limit", 10) })

	viper.Set("history.limit", 3)
	if got := historyLimit(false); got != 3 {
		t.Errorf("historyLimit(false) = %d, expected 3", got)
	}
	if got := historyLimit(true); got != 0 {
		t.Errorf("historyLimit(true) = %d, expected 0", got)
	}

	viper.Set("history.limit", 0)
	if got := historyLimit(false); got != 10 {
		t.Errorf("unset limit = %d, expected default 10", got)
	}
}
