package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Fatal("Open() with unsupported driver returned nil error")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		in     string
		want   string
	}{
		{"sqlite untouched", DriverSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"postgres numbered", DriverPostgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"postgres no args", DriverPostgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &DB{driver: tt.driver}
			if got := db.Rebind(tt.in); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithSQLitePragmas(t *testing.T) {
	got := withSQLitePragmas("data/app.db")
	if !strings.HasPrefix(got, "data/app.db?_pragma=foreign_keys(1)") {
		t.Errorf("withSQLitePragmas() = %q", got)
	}
	got = withSQLitePragmas("data/app.db?mode=rw")
	if !strings.Contains(got, "?mode=rw&_pragma=") {
		t.Errorf("withSQLitePragmas() with existing query = %q", got)
	}
	if got := withSQLitePragmas("x.db?_pragma=foreign_keys(0)"); got != "x.db?_pragma=foreign_keys(0)" {
		t.Errorf("withSQLitePragmas() overrode caller pragmas: %q", got)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("rows after rollback = %d, want 0", n)
	}
}

func TestRunnerApply(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"002_more.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		"README.md":    {Data: []byte("ignored")},
	}
	runner := NewRunner(db, fsys)

	applied, err := runner.Apply(ctx, nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if applied != 2 {
		t.Errorf("Apply() applied = %d, want 2", applied)
	}

	version, err := runner.CurrentVersion(ctx)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != 2 {
		t.Errorf("CurrentVersion() = %d, want 2", version)
	}

	applied, err = runner.Apply(ctx, nil)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if applied != 0 {
		t.Errorf("second Apply() applied = %d, want 0", applied)
	}
}

func TestRunnerRejectsNewerDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	runner := NewRunner(db, fstest.MapFS{"001_init.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")}})
	if err := runner.ensureVersionTable(ctx); err != nil {
		t.Fatalf("ensureVersionTable: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (9)`); err != nil {
		t.Fatalf("seed version: %v", err)
	}
	if _, err := runner.Apply(ctx, nil); err == nil {
		t.Fatal("Apply() on newer schema returned nil error")
	}
}

func TestRunnerRejectsBadFilenames(t *testing.T) {
	db := openTestDB(t)
	tests := map[string]fstest.MapFS{
		"no underscore":     {"001.sql": {Data: []byte("SELECT 1;")}},
		"non numeric":       {"abc_init.sql": {Data: []byte("SELECT 1;")}},
		"duplicate version": {"001_a.sql": {Data: []byte("SELECT 1;")}, "1_b.sql": {Data: []byte("SELECT 1;")}},
	}
	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewRunner(db, fsys).Read(); err == nil {
				t.Error("Read() returned nil error")
			}
		})
	}
}

func TestMigrateEmbeddedSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := Migrate(ctx, db, nil); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	for _, table := range []string{"tasks", "projects", "project_tasks"} {
		var n int
		err := db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&n)
		if err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing after Migrate()", table)
		}
	}
}
