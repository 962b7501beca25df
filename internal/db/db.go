package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmreyes/redline/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/redline.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.redline.
func Init(baseDir string) (*sql.DB, error) {
	// Redaction maps live in this file; keep permissions restricted.
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	dbPath := filepath.Join(baseDir, "redline.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS submissions (
		  id                TEXT PRIMARY KEY,
		  status            TEXT NOT NULL,
		  clauses_available INTEGER NOT NULL DEFAULT 0,
		  jurisdiction      TEXT NOT NULL,
		  party_a_email     TEXT,
		  party_b_email     TEXT,
		  contact_email     TEXT NOT NULL,
		  created_at        INTEGER NOT NULL,
		  updated_at        INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS redaction_maps (
		  submission_id     TEXT PRIMARY KEY REFERENCES submissions(id),
		  identities_json   TEXT NOT NULL,
		  amounts_json      TEXT NOT NULL,
		  descriptions_json TEXT NOT NULL,
		  dates_json        TEXT NOT NULL,
		  created_at        INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS documents (
		  id            TEXT PRIMARY KEY,
		  submission_id TEXT NOT NULL REFERENCES submissions(id),
		  jurisdiction  TEXT NOT NULL,
		  sections_json TEXT NOT NULL,
		  created_at    INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_documents_submission
		ON documents(submission_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS clauses (
		  id          TEXT PRIMARY KEY,
		  document_id TEXT NOT NULL REFERENCES documents(id),
		  seq         INTEGER NOT NULL,
		  title       TEXT,
		  body        TEXT NOT NULL,
		  category    TEXT NOT NULL,
		  explanation TEXT,
		  created_at  INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_clauses_document_seq
		ON clauses(document_id, seq);

		CREATE TABLE IF NOT EXISTS annotations (
		  id           TEXT PRIMARY KEY,
		  clause_id    TEXT NOT NULL REFERENCES clauses(id),
		  author_email TEXT NOT NULL,
		  kind         TEXT NOT NULL,
		  body         TEXT NOT NULL,
		  answer       TEXT,
		  created_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_annotations_clause
		ON annotations(clause_id, created_at);

		CREATE TABLE IF NOT EXISTS party_bindings (
		  submission_id TEXT NOT NULL REFERENCES submissions(id),
		  role          TEXT NOT NULL,
		  email         TEXT NOT NULL,
		  bound_at      INTEGER NOT NULL,
		  PRIMARY KEY (submission_id, role)
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
