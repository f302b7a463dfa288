package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the version written to store_metadata on creation.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes of the symbol store.
// Uses a transaction so schema creation succeeds or fails as a whole.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"symbols", createSymbolsTable},
		{"store_metadata", createStoreMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range allIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		"INSERT INTO store_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)",
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap store_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from store_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='store_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check store_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM store_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in store_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createFilesTable = `
CREATE TABLE files (
    file_path TEXT PRIMARY KEY,           -- relative path from the project root
    language TEXT NOT NULL,
    namespace TEXT NOT NULL,
    content_hash TEXT NOT NULL,           -- SHA-256 of the extracted source
    indexed_at TEXT NOT NULL
)`

const createSymbolsTable = `
CREATE TABLE symbols (
    file_path TEXT NOT NULL REFERENCES files(file_path) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,             -- position within the file's extraction
    language TEXT NOT NULL,
    namespace TEXT NOT NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    line INTEGER NOT NULL,
    deprecated INTEGER NOT NULL DEFAULT 0,
    payload TEXT NOT NULL,                -- symbol JSON
    PRIMARY KEY (file_path, ordinal)
)`

const createStoreMetadataTable = `
CREATE TABLE store_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

var allIndexes = []string{
	"CREATE INDEX idx_symbols_name ON symbols(name)",
	"CREATE INDEX idx_symbols_kind ON symbols(kind)",
	"CREATE INDEX idx_symbols_language ON symbols(language)",
	"CREATE INDEX idx_symbols_namespace ON symbols(namespace)",
}
