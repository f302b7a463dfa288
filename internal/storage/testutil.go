package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestStore creates an in-memory symbol store for testing, with the
// schema created and cleanup registered with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    store := storage.NewTestStore(t)
//	    // ... test code ...
//	    // No need to close - t.Cleanup() handles it
//	}
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// NewTestStoreFile creates a file-backed symbol store in a temp directory,
// for tests that reopen the database or need more than one connection.
// Returns the store and its path.
func NewTestStoreFile(t testing.TB) (*Store, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "symbols.db")
	store, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}
