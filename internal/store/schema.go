package store

// Schema v1 - run ledger
const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per pipeline run
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  started_at DATETIME NOT NULL,
  finished_at DATETIME NOT NULL,
  input_dir TEXT NOT NULL,
  output_dir TEXT NOT NULL,
  state TEXT NOT NULL,
  threshold REAL NOT NULL,
  error TEXT NOT NULL DEFAULT ''
);

-- Per-entity cleaning and save counts
CREATE TABLE IF NOT EXISTS run_entities (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  entity TEXT NOT NULL,
  input_rows INTEGER NOT NULL DEFAULT 0,
  missing_identity INTEGER NOT NULL DEFAULT 0,
  invalid_key INTEGER NOT NULL DEFAULT 0,
  duplicates INTEGER NOT NULL DEFAULT 0,
  rejected INTEGER NOT NULL DEFAULT 0,
  repaired INTEGER NOT NULL DEFAULT 0,
  output_rows INTEGER NOT NULL DEFAULT 0,
  output_path TEXT NOT NULL DEFAULT '',
  output_bytes INTEGER NOT NULL DEFAULT 0,
  write_error TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (run_id, entity)
);

-- Analysis findings (coverage, links, cycles, unmatched features)
CREATE TABLE IF NOT EXISTS run_findings (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  kind TEXT NOT NULL,
  label TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  count INTEGER NOT NULL DEFAULT 0,
  total INTEGER NOT NULL DEFAULT 0,
  distinct_count INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0,
  percent REAL NOT NULL DEFAULT 0,
  threshold REAL NOT NULL DEFAULT 0,
  recommended INTEGER NOT NULL DEFAULT 0,
  detail TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (run_id, position)
);
`

// Schema v2 - indexes for history listing
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_findings_kind ON run_findings(kind);
`
