// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"dashboard/internal/database"
)

// New returns a migrated sqlite database living in t.TempDir().
func New(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := database.Migrate(context.Background(), db, nil); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
