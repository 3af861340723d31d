// Package database owns schema migrations for the account store.
package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"account-service/pkg/common/config"
)

//go:embed migrations
var migrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) { hlog.Fatalf(format, v...) }
func (gooseLogger) Printf(format string, v ...interface{}) { hlog.Infof(format, v...) }

func dialectFor(driver string) (string, error) {
	switch driver {
	case config.DriverMySQL, "":
		return "mysql", nil
	case config.DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

// Migrations returns the embedded migration tree for driver.
func Migrations(driver string) (fs.FS, error) {
	dir := driver
	if dir == "" {
		dir = config.DriverMySQL
	}
	if _, err := dialectFor(driver); err != nil {
		return nil, err
	}
	return fs.Sub(migrations, "migrations/"+dir)
}

// Migrate brings the schema of db up to date.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}
	fsys, err := Migrations(driver)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(gooseLogger{})
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
