package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

// FileRecord describes one extracted file.
type FileRecord struct {
	Path        string
	Language    string
	Namespace   string
	ContentHash string
	IndexedAt   time.Time
}

// Stats summarizes the store's contents.
type Stats struct {
	Files      int            `json:"files"`
	Symbols    int            `json:"symbols"`
	ByLanguage map[string]int `json:"byLanguage"`
	ByKind     map[string]int `json:"byKind"`
}

// Store persists extracted symbols in SQLite, one row per symbol, keyed by
// file and position so reads return extraction order.
type Store struct {
	db *sql.DB
}

// Open opens or creates the store at dbPath. ":memory:" creates a private
// in-memory store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an open database, creating the schema if needed.
func NewStore(db *sql.DB) (*Store, error) {
	// Enable foreign keys (required for cascade deletes)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	if version == "0" {
		if err := CreateSchema(db); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// ReplaceFile atomically replaces a file's record and symbols.
func (s *Store) ReplaceFile(ctx context.Context, rec FileRecord, syms []symbols.Symbol) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteFiles(ctx, tx, []string{rec.Path}); err != nil {
		return err
	}

	indexedAt := rec.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now()
	}
	if _, err := sq.Insert("files").
		Columns("file_path", "language", "namespace", "content_hash", "indexed_at").
		Values(rec.Path, rec.Language, rec.Namespace, rec.ContentHash, indexedAt.UTC().Format(time.RFC3339)).
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert file %s: %w", rec.Path, err)
	}

	for i, sym := range syms {
		payload, err := json.Marshal(sym)
		if err != nil {
			return fmt.Errorf("failed to encode symbol %s: %w", sym.Name, err)
		}

		_, err = sq.Insert("symbols").
			Columns("file_path", "ordinal", "language", "namespace", "name", "kind", "line", "deprecated", "payload").
			Values(rec.Path, i, sym.Language, sym.Namespace, sym.Name, string(sym.Type), sym.Line, sym.Deprecated, string(payload)).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteFiles removes files and their symbols.
func (s *Store) DeleteFiles(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteFiles(ctx, tx, files); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// deleteFiles removes the files' symbols, then the files. The foreign key
// pragma only covers the connection that set it.
func deleteFiles(ctx context.Context, tx *sql.Tx, files []string) error {
	if _, err := sq.Delete("symbols").
		Where(sq.Eq{"file_path": files}).
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to delete symbols: %w", err)
	}

	if _, err := sq.Delete("files").
		Where(sq.Eq{"file_path": files}).
		RunWith(tx).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}

// FileSymbols returns a file's symbols in extraction order.
func (s *Store) FileSymbols(ctx context.Context, file string) ([]symbols.Symbol, error) {
	return s.querySymbols(ctx, sq.Eq{"file_path": file})
}

// All returns every stored symbol ordered by file, then extraction order.
func (s *Store) All(ctx context.Context) ([]symbols.Symbol, error) {
	return s.querySymbols(ctx, nil)
}

func (s *Store) querySymbols(ctx context.Context, where sq.Sqlizer) ([]symbols.Symbol, error) {
	query := sq.Select("payload").
		From("symbols").
		OrderBy("file_path", "ordinal")
	if where != nil {
		query = query.Where(where)
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var out []symbols.Symbol
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		var sym symbols.Symbol
		if err := json.Unmarshal([]byte(payload), &sym); err != nil {
			return nil, fmt.Errorf("failed to decode symbol: %w", err)
		}
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate symbols: %w", err)
	}
	return out, nil
}

// Files returns the record of every stored file keyed by path.
func (s *Store) Files(ctx context.Context) (map[string]FileRecord, error) {
	rows, err := sq.Select("file_path", "language", "namespace", "content_hash", "indexed_at").
		From("files").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	files := make(map[string]FileRecord)
	for rows.Next() {
		var rec FileRecord
		var indexedAt string
		if err := rows.Scan(&rec.Path, &rec.Language, &rec.Namespace, &rec.ContentHash, &indexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		rec.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		files[rec.Path] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}

// Stats counts files and symbols, with per-language and per-kind totals.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByLanguage: make(map[string]int),
		ByKind:     make(map[string]int),
	}

	if err := sq.Select("COUNT(*)").From("files").
		RunWith(s.db).QueryRowContext(ctx).Scan(&stats.Files); err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	for column, target := range map[string]map[string]int{
		"language": stats.ByLanguage,
		"kind":     stats.ByKind,
	} {
		if err := s.countBy(ctx, column, target); err != nil {
			return nil, err
		}
	}

	for _, n := range stats.ByKind {
		stats.Symbols += n
	}
	return stats, nil
}

func (s *Store) countBy(ctx context.Context, column string, target map[string]int) error {
	rows, err := sq.Select(column, "COUNT(*)").
		From("symbols").
		GroupBy(column).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to count symbols by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		target[key] = n
	}
	return rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
