package storage

// Test Plan for SQLite Schema:
// - CreateSchema creates the files, symbols and store_metadata tables
// - CreateSchema creates every idx_ index
// - Deleting a file cascades to its symbols when foreign keys are on
// - (file_path, ordinal) is unique
// - Symbols cannot reference unknown files
// - Bootstrap metadata carries the schema version
// - GetSchemaVersion returns "0" for a new database and SchemaVersion after CreateSchema
// - NewStore leaves an existing schema untouched

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSchema(t *testing.T) {
	db := openTestDB(t)

	err := CreateSchema(db)
	require.NoError(t, err, "CreateSchema should succeed")

	for _, table := range []string{"files", "symbols", "store_metadata"} {
		assert.True(t, tableExists(t, db, table), "Table %s should exist", table)
	}
}

func TestCreateSchema_Indexes(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, CreateSchema(db))

	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND name LIKE 'idx_%'
		ORDER BY name
	`)
	require.NoError(t, err)
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		indexes = append(indexes, name)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []string{
		"idx_symbols_kind",
		"idx_symbols_language",
		"idx_symbols_name",
		"idx_symbols_namespace",
	}, indexes)
}

func TestCreateSchema_ForeignKeys(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, CreateSchema(db))

	_, err := db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	insertFile(t, db, "calc.go")
	insertSymbol(t, db, "calc.go", 0, "Add")
	insertSymbol(t, db, "calc.go", 1, "Sub")

	_, err = db.Exec("DELETE FROM files WHERE file_path = 'calc.go'")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM symbols").Scan(&count))
	assert.Equal(t, 0, count, "symbols should be deleted via CASCADE")

	_, err = db.Exec(`
		INSERT INTO symbols (file_path, ordinal, language, namespace, name, kind, line, payload)
		VALUES ('missing.go', 0, 'go', 'calc', 'Add', 'function', 1, '{}')
	`)
	assert.Error(t, err, "symbols must reference a stored file")
}

func TestCreateSchema_UniqueOrdinal(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, CreateSchema(db))

	insertFile(t, db, "calc.go")
	insertSymbol(t, db, "calc.go", 0, "Add")

	_, err := db.Exec(`
		INSERT INTO symbols (file_path, ordinal, language, namespace, name, kind, line, payload)
		VALUES ('calc.go', 0, 'go', 'calc', 'Other', 'function', 9, '{}')
	`)
	assert.Error(t, err, "(file_path, ordinal) should be unique")
}

func TestCreateSchema_BootstrapMetadata(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, CreateSchema(db))

	var value, updatedAt string
	err := db.QueryRow("SELECT value, updated_at FROM store_metadata WHERE key = 'schema_version'").Scan(&value, &updatedAt)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, value)
	assert.NotEmpty(t, updatedAt)
}

func TestGetSchemaVersion(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*testing.T, *sql.DB)
		expected string
		wantErr  bool
	}{
		{
			name:     "new database",
			setup:    func(t *testing.T, db *sql.DB) {},
			expected: "0",
		},
		{
			name: "schema created",
			setup: func(t *testing.T, db *sql.DB) {
				require.NoError(t, CreateSchema(db))
			},
			expected: SchemaVersion,
		},
		{
			name: "metadata without version",
			setup: func(t *testing.T, db *sql.DB) {
				require.NoError(t, CreateSchema(db))
				_, err := db.Exec("DELETE FROM store_metadata")
				require.NoError(t, err)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			tt.setup(t, db)

			version, err := GetSchemaVersion(db)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, version)
		})
	}
}

func TestNewStore_ExistingSchema(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, CreateSchema(db))
	insertFile(t, db, "calc.go")

	store, err := NewStore(db)
	require.NoError(t, err)

	files, err := store.Files(t.Context())
	require.NoError(t, err)
	assert.Contains(t, files, "calc.go", "existing data should survive NewStore")
}

// Helper functions

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, tableName string) bool {
	var count int
	query := `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type IN ('table', 'view') AND name = ?
	`
	err := db.QueryRow(query, tableName).Scan(&count)
	require.NoError(t, err)
	return count > 0
}

func insertFile(t *testing.T, db *sql.DB, path string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO files (file_path, language, namespace, content_hash, indexed_at)
		VALUES (?, 'go', 'calc', 'abc123', '2025-11-02T10:00:00Z')
	`, path)
	require.NoError(t, err)
}

func insertSymbol(t *testing.T, db *sql.DB, path string, ordinal int, name string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO symbols (file_path, ordinal, language, namespace, name, kind, line, payload)
		VALUES (?, ?, 'go', 'calc', ?, 'function', 1, '{}')
	`, path, ordinal, name)
	require.NoError(t, err)
}
