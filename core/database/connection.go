// Package database owns process startup's single connection to the
// configured Storage Adapter backend, keeping the pool-size choices the
// teacher's GORM connection made (1 conn for the embedded file backend, a
// 100/10 pool for the networked one) but opening through database/sql
// directly since core/storage.Adapter needs to own placeholder and
// date-function rewriting itself.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/doualaexpress/deligate/core/config"
	"github.com/doualaexpress/deligate/core/storage"
	"github.com/doualaexpress/deligate/pkg/timeutils"
)

// Global holds the singleton Storage Adapter, set by Connect.
var Global *storage.Adapter

// Connect opens the backend selected by cfg (Postgres when DATABASE_URL is
// set, otherwise the embedded SQLite file at DB_PATH) and stores it in
// Global.
func Connect(cfg *config.Config) (*storage.Adapter, error) {
	loc := timeutils.MustLoadLocation(cfg.App.TimeZone)

	if cfg.UsesNetworkedBackend() {
		adapter, err := storage.Open(storage.Postgres, cfg.Database.DatabaseURL, loc)
		if err != nil {
			return nil, err
		}
		Global = adapter
		return adapter, nil
	}

	if dir := filepath.Dir(cfg.Database.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", cfg.Database.DBPath)
	adapter, err := storage.Open(storage.SQLite, dsn, loc)
	if err != nil {
		return nil, err
	}
	Global = adapter
	return adapter, nil
}
