package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Reading list: highest position is the top of the list
CREATE TABLE IF NOT EXISTS items (
    item_id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL DEFAULT '',
    preview_text TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT '',
    section TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',   -- comma separated
    saved_at TIMESTAMP,              -- time_added from the export
    added_at TIMESTAMP NOT NULL,
    position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_position ON items(position);
CREATE INDEX IF NOT EXISTS idx_items_section ON items(section);

-- Import runs: one row per import attempt
CREATE TABLE IF NOT EXISTS imports (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    backend TEXT NOT NULL,
    mode TEXT NOT NULL,
    include_read BOOLEAN NOT NULL DEFAULT 0,
    total INTEGER NOT NULL DEFAULT 0,
    added INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_imports_started ON imports(started_at);

-- Per-record outcomes of a run, in processing order
CREATE TABLE IF NOT EXISTS import_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    record_index INTEGER NOT NULL,
    url TEXT NOT NULL,
    section TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,            -- added, failed
    error_message TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (run_id) REFERENCES imports(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_import_results_run ON import_results(run_id);
`
