package testutil

import (
	"path/filepath"
	"testing"

	"github.com/dominikpree-ux/scolia-180-league/internal/store"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *store.SQLite {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	return st
}
