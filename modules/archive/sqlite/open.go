package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aikodesk/aiko/internal/archive"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// OpenStore opens a SQLite database at the given path and returns an archive
// Store backed by it. The caller is responsible for closing the returned
// *sql.DB when done.
//
// The database is created with WAL mode, the configured busy timeout, and a
// single connection (SQLite serialises writes). The schema is migrated
// automatically.
func OpenStore(path string, busyTimeout int) (archive.Store, *sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("archive.sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("archive.sqlite: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("archive.sqlite: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout)); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("archive.sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return &store{db: db}, db, nil
}
