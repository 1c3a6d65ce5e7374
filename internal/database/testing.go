package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/config"
)

// TestDatabase opens a throwaway sqlite database in the test's temp
// directory and closes it when the test ends.
func TestDatabase(t testing.TB) *Database {
	t.Helper()

	cfg := config.NewDefault().Database
	cfg.Driver = config.DriverSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "test.sqlite")
	cfg.LogLevel = "silent"

	db := NewDatabase(cfg, zerolog.Nop())
	if err := db.Connect(); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
