package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franz/fma-janitor/internal/util"
	"github.com/jmoiron/sqlx"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Finding kinds
const (
	FindingCoverage          = "coverage"
	FindingGenreLinks        = "genre_links"
	FindingGenreCycles       = "genre_cycles"
	FindingUnmatchedFeatures = "unmatched_features"
)

// Run is one recorded pipeline run
type Run struct {
	ID         string    `db:"id"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	InputDir   string    `db:"input_dir"`
	OutputDir  string    `db:"output_dir"`
	State      string    `db:"state"`
	Threshold  float64   `db:"threshold"`
	Error      string    `db:"error"`

	Entities []RunEntity `db:"-"`
	Findings []Finding   `db:"-"`
}

// Duration returns how long the run took
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunEntity holds the counts for one entity table within a run
type RunEntity struct {
	RunID           string `db:"run_id"`
	Position        int    `db:"position"`
	Entity          string `db:"entity"`
	InputRows       int    `db:"input_rows"`
	MissingIdentity int    `db:"missing_identity"`
	InvalidKey      int    `db:"invalid_key"`
	Duplicates      int    `db:"duplicates"`
	Rejected        int    `db:"rejected"`
	Repaired        int    `db:"repaired"`
	OutputRows      int    `db:"output_rows"`
	OutputPath      string `db:"output_path"`
	OutputBytes     int64  `db:"output_bytes"`
	WriteError      string `db:"write_error"`
}

// Finding is one analysis result. Count and Total carry the kind-specific
// numerator and denominator (non-null rows of all rows, valid links of all
// records, ...). Skipped counts inputs the analysis could not use.
type Finding struct {
	RunID       string  `db:"run_id"`
	Position    int     `db:"position"`
	Kind        string  `db:"kind"`
	Label       string  `db:"label"`
	Subject     string  `db:"subject"`
	Count       int64   `db:"count"`
	Total       int64   `db:"total"`
	Distinct    int64   `db:"distinct_count"`
	Skipped     int64   `db:"skipped"`
	Percent     float64 `db:"percent"`
	Threshold   float64 `db:"threshold"`
	Recommended bool    `db:"recommended"`
	Detail      string  `db:"detail"`
}

// RunSummary is a run with row totals, for history listings
type RunSummary struct {
	ID            string    `db:"id"`
	StartedAt     time.Time `db:"started_at"`
	FinishedAt    time.Time `db:"finished_at"`
	State         string    `db:"state"`
	InputDir      string    `db:"input_dir"`
	OutputDir     string    `db:"output_dir"`
	InputRows     int       `db:"input_rows"`
	OutputRows    int       `db:"output_rows"`
	WriteFailures int       `db:"write_failures"`
}

// RecordRun stores a run with its entities and findings in one transaction
func (s *Store) RecordRun(run *Run) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id is empty", util.ErrInvalidConfig)
	}

	return s.Transaction(func(tx *sqlx.Tx) error {
		_, err := tx.NamedExec(`
			INSERT INTO runs (id, started_at, finished_at, input_dir, output_dir, state, threshold, error)
			VALUES (:id, :started_at, :finished_at, :input_dir, :output_dir, :state, :threshold, :error)
		`, run)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for i := range run.Entities {
			e := run.Entities[i]
			e.RunID = run.ID
			e.Position = i
			_, err := tx.NamedExec(`
				INSERT INTO run_entities
				(run_id, position, entity, input_rows, missing_identity, invalid_key, duplicates,
				 rejected, repaired, output_rows, output_path, output_bytes, write_error)
				VALUES (:run_id, :position, :entity, :input_rows, :missing_identity, :invalid_key, :duplicates,
				 :rejected, :repaired, :output_rows, :output_path, :output_bytes, :write_error)
			`, &e)
			if err != nil {
				return fmt.Errorf("failed to insert %s counts: %w", e.Entity, err)
			}
		}

		for i := range run.Findings {
			f := run.Findings[i]
			f.RunID = run.ID
			f.Position = i
			_, err := tx.NamedExec(`
				INSERT INTO run_findings
				(run_id, position, kind, label, subject, count, total, distinct_count, skipped,
				 percent, threshold, recommended, detail)
				VALUES (:run_id, :position, :kind, :label, :subject, :count, :total, :distinct_count, :skipped,
				 :percent, :threshold, :recommended, :detail)
			`, &f)
			if err != nil {
				return fmt.Errorf("failed to insert finding %s: %w", f.Label, err)
			}
		}

		return nil
	})
}

// GetRun loads a run by id or by a unique id prefix
func (s *Store) GetRun(id string) (*Run, error) {
	var ids []string
	err := s.db.Select(&ids, `SELECT id FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		likeEscaper.Replace(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("run %s: %w", id, util.ErrNotFound)
	case 1:
		return s.loadRun(ids[0])
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// LatestRun returns the most recently started run
func (s *Store) LatestRun() (*Run, error) {
	var id string
	err := s.db.Get(&id, `SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no recorded runs: %w", util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest run: %w", err)
	}
	return s.loadRun(id)
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	var runs []RunSummary
	err := s.db.Select(&runs, `
		SELECT r.id, r.started_at, r.finished_at, r.state, r.input_dir, r.output_dir,
		       (SELECT COALESCE(SUM(e.input_rows), 0) FROM run_entities e WHERE e.run_id = r.id) AS input_rows,
		       (SELECT COALESCE(SUM(e.output_rows), 0) FROM run_entities e WHERE e.run_id = r.id) AS output_rows,
		       (SELECT COUNT(*) FROM run_entities e WHERE e.run_id = r.id AND e.write_error != '') AS write_failures
		FROM runs r
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func (s *Store) loadRun(id string) (*Run, error) {
	run := &Run{}
	if err := s.db.Get(run, `SELECT * FROM runs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, util.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := s.db.Select(&run.Entities,
		`SELECT * FROM run_entities WHERE run_id = ? ORDER BY position`, id); err != nil {
		return nil, fmt.Errorf("failed to get run entities: %w", err)
	}
	if err := s.db.Select(&run.Findings,
		`SELECT * FROM run_findings WHERE run_id = ? ORDER BY position`, id); err != nil {
		return nil, fmt.Errorf("failed to get run findings: %w", err)
	}

	return run, nil
}

