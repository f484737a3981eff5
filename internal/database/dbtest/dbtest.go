// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"gorm.io/gorm/logger"
)

// New returns an empty, migrated SQLite database closed with the test.
func New(t testing.TB) *database.GormDB {
	t.Helper()

	gdb, err := database.Open(config.DatabaseConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: ":memory:"},
	}, logger.Discard)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { gdb.Close() })

	if err := gdb.InitSchema(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return gdb
}
