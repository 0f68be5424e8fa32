package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    display_name TEXT
);

CREATE TABLE IF NOT EXISTS problems (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    test_name TEXT,
    default_points INTEGER NOT NULL DEFAULT 0,
    visible BOOLEAN DEFAULT FALSE,
    visible_tests BOOLEAN DEFAULT FALSE,
    time_ms REAL NOT NULL DEFAULT 0,
    memory_limit INTEGER NOT NULL DEFAULT 0,
    source_size INTEGER,
    source_credits TEXT,
    console_input BOOLEAN DEFAULT FALSE,
    score_precision INTEGER DEFAULT 0,
    published_at TEXT,
    scoring_strategy TEXT
);

CREATE TABLE IF NOT EXISTS submissions (
    id INTEGER PRIMARY KEY,
    created_at TEXT NOT NULL,
    user_id INTEGER NOT NULL REFERENCES users(id),
    problem_id INTEGER NOT NULL REFERENCES problems(id),
    contest_id INTEGER,
    score INTEGER NOT NULL,
    compile_error BOOLEAN NOT NULL DEFAULT FALSE,
    max_time_ms REAL NOT NULL DEFAULT 0,
    max_memory_bytes INTEGER NOT NULL DEFAULT 0,
    language TEXT,
    code_size INTEGER DEFAULT 0,
    score_precision INTEGER DEFAULT 0,
    submission_type TEXT,
    icpc_verdict TEXT,
    status TEXT NOT NULL DEFAULT 'finished'
);

CREATE INDEX IF NOT EXISTS idx_submissions_problem_user ON submissions(problem_id, user_id);
CREATE INDEX IF NOT EXISTS idx_submissions_user_created ON submissions(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const migrations = `
ALTER TABLE submissions ADD COLUMN status TEXT NOT NULL DEFAULT 'finished';
`

func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	// Older dumps predate the status column; the ALTER fails harmlessly once it exists.
	db.Exec(migrations)

	return nil
}
