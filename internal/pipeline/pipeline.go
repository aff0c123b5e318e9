// Package pipeline drives one cleaning run: load every raw table, clean
// them in dependency order, save the results and analyze them.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/franz/fma-janitor/internal/analyze"
	"github.com/franz/fma-janitor/internal/catalog"
	"github.com/franz/fma-janitor/internal/clean"
	"github.com/franz/fma-janitor/internal/load"
	"github.com/franz/fma-janitor/internal/output"
	"github.com/franz/fma-janitor/internal/report"
	"github.com/franz/fma-janitor/internal/util"
)

// State is a pipeline stage
type State int

const (
	StateLoad State = iota
	StateCleanIndependent
	StateCleanDependent
	StateSave
	StateAnalyze
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoad:
		return "LOAD"
	case StateCleanIndependent:
		return "CLEAN_INDEPENDENT"
	case StateCleanDependent:
		return "CLEAN_DEPENDENT"
	case StateSave:
		return "SAVE"
	case StateAnalyze:
		return "ANALYZE"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds pipeline configuration
type Config struct {
	InputDir  string
	OutputDir string
	Threshold float64 // coverage threshold in percent; <= 0 uses the default
	Progress  bool    // show loader progress bars
	Logger    *report.EventLogger
	Retry     *util.RetryConfig // nil = use default

	// LockOutput takes <output>.lock once every source has loaded and holds
	// it until the run returns
	LockOutput bool
}

// Pipeline runs the cleaning stages
type Pipeline struct {
	loader     *load.Loader
	writer     *output.Writer
	logger     *report.EventLogger
	inputDir   string
	threshold  float64
	lockOutput bool
}

// New creates a new Pipeline
func New(cfg *Config) *Pipeline {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = analyze.DefaultThreshold
	}
	return &Pipeline{
		loader:     load.New(&load.Config{Dir: cfg.InputDir, Progress: cfg.Progress}),
		writer:     output.New(&output.Config{Dir: cfg.OutputDir, RetryConfig: cfg.Retry}),
		logger:     cfg.Logger,
		inputDir:   cfg.InputDir,
		threshold:  threshold,
		lockOutput: cfg.LockOutput,
	}
}

// Result is the outcome of a run
type Result struct {
	State      State
	StartedAt  time.Time
	FinishedAt time.Time
	InputDir   string
	OutputDir  string
	Threshold  float64

	Stats    []clean.Stats // dependency order
	Writes   []output.Result
	Findings *analyze.Findings
	Dataset  *catalog.Dataset
	Err      error
}

// WriteFailures returns the number of tables that could not be saved
func (r *Result) WriteFailures() int {
	n := 0
	for _, w := range r.Writes {
		if w.Err != nil {
			n++
		}
	}
	return n
}

// Run executes every stage. A load failure ends the run in StateFailed with
// nothing written; the returned error is the load error. Per-table write
// failures are recorded in the result and do not fail the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		StartedAt: time.Now().UTC(),
		InputDir:  p.inputDir,
		OutputDir: p.writer.Dir(),
		Threshold: p.threshold,
	}

	fail := func(err error) (*Result, error) {
		res.State = StateFailed
		res.Err = err
		res.FinishedAt = time.Now().UTC()
		p.logger.LogState(res.State.String())
		return res, err
	}

	// LOAD
	p.enter(res, StateLoad)
	util.InfoLog("Loading raw data files from %s", p.inputDir)
	raw, err := p.loadAll(ctx)
	if err != nil {
		return fail(err)
	}

	// Nothing touches the output side before the sources are known good
	if p.lockOutput {
		lock, err := output.AcquireLock(p.writer.Dir())
		if err != nil {
			return fail(err)
		}
		defer lock.Release()
		util.DebugLog("Holding output lock %s", lock.Path())
	}

	// CLEAN_INDEPENDENT
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	p.enter(res, StateCleanIndependent)
	util.InfoLog("Cleaning independent tables...")
	ds := &catalog.Dataset{}
	var st clean.Stats

	ds.Genres, st = clean.CleanGenres(raw[catalog.Genres])
	p.recordStats(res, st)
	ds.Artists, st = clean.CleanArtists(raw[catalog.Artists])
	p.recordStats(res, st)

	// CLEAN_DEPENDENT
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	p.enter(res, StateCleanDependent)
	util.InfoLog("Cleaning dependent tables...")
	ds.Albums, st = clean.CleanAlbums(raw[catalog.Albums], ds.Artists)
	p.recordStats(res, st)
	ds.Tracks, st = clean.CleanTracks(raw[catalog.Tracks], ds.Albums, ds.Artists)
	p.recordStats(res, st)
	ds.Echonest, st = clean.CleanEchonest(raw[catalog.Echonest])
	p.recordStats(res, st)
	res.Dataset = ds

	// SAVE
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	p.enter(res, StateSave)
	util.InfoLog("Saving cleaned files to: %s/", p.writer.Dir())
	res.Writes = p.writer.WriteAll(ds.Tables())
	for _, w := range res.Writes {
		p.logger.LogSave(string(w.Entity), w.Path, w.Rows, w.Bytes, w.Err)
	}

	// ANALYZE
	p.enter(res, StateAnalyze)
	res.Findings = analyze.Run(ds, p.threshold)
	p.logFindings(res.Findings)

	p.enter(res, StateDone)
	res.FinishedAt = time.Now().UTC()
	return res, nil
}

func (p *Pipeline) enter(res *Result, s State) {
	res.State = s
	util.DebugLog("Pipeline state: %s", s)
	p.logger.LogState(s.String())
}

func (p *Pipeline) loadAll(ctx context.Context) (map[catalog.Entity]*catalog.RawTable, error) {
	tables := make(map[catalog.Entity]*catalog.RawTable, len(catalog.Entities))
	for _, e := range catalog.Entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src, _ := catalog.SourceFor(e)
		start := time.Now()
		t, err := p.loader.Load(src)
		p.logger.LogLoad(string(e), src.FileName(), t.Len(), time.Since(start), err)
		if err != nil {
			return nil, err
		}
		tables[e] = t
	}
	return tables, nil
}

func (p *Pipeline) recordStats(res *Result, st clean.Stats) {
	res.Stats = append(res.Stats, st)

	entity := string(st.Entity)
	p.logger.LogClean(entity, st.Input, st.Output)
	p.logger.LogReject(entity, "missing required field", st.MissingIdentity)
	p.logger.LogReject(entity, "non-integer key", st.InvalidKey)
	p.logger.LogReject(entity, "duplicate key", st.Duplicates)
	p.logger.LogReject(entity, rejectReason(st.Entity), st.Rejected)
	p.logger.LogRepair(entity, "orphan parent cleared", st.Repaired)
}

func rejectReason(e catalog.Entity) string {
	switch e {
	case catalog.Albums:
		return "unknown artist"
	case catalog.Tracks:
		return "unknown album or artist"
	default:
		return "failed reference check"
	}
}

func (p *Pipeline) logFindings(f *analyze.Findings) {
	for _, c := range f.Coverage {
		p.logger.LogFinding("coverage", c.Label, c.NonNull, map[string]string{
			"column":      c.Column,
			"total":       fmt.Sprintf("%d", c.Total),
			"percent":     fmt.Sprintf("%.1f", c.Percent),
			"distinct":    fmt.Sprintf("%d", c.Distinct),
			"worth_table": fmt.Sprintf("%t", c.WorthTable()),
		})
	}
	p.logger.LogFinding("genre_links", "Track-Genre Links", f.GenreLinks.ValidLinks, map[string]string{
		"cells":       fmt.Sprintf("%d", f.GenreLinks.Cells),
		"malformed":   fmt.Sprintf("%d", f.GenreLinks.Malformed),
		"bad_records": fmt.Sprintf("%d", f.GenreLinks.BadRecords),
	})
	p.logger.LogFinding("genre_cycles", "Genres on a parent cycle", f.GenreCycles.Cyclic(), nil)
	p.logger.LogFinding("unmatched_features", "Feature rows without a track", f.UnmatchedFeatures, nil)
}
