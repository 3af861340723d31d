// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"account-service/pkg/common/config"
	"account-service/pkg/common/database"
)

// Open returns a migrated SQLite database living in t's temp dir. It is closed
// when the test finishes.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.DBName = filepath.Join(t.TempDir(), "accounts.db")
	cfg.Database.LogLevel = "silent"
	cfg.Database.MinPoolSize = 1
	cfg.Database.MaxPoolSize = 4

	db, err := cfg.InitDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := database.Migrate(context.Background(), db, config.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
