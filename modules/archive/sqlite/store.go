package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aikodesk/aiko/internal/archive"
)

// store implements archive.Store on a SQLite database.
type store struct {
	db *sql.DB
}

// Compile-time interface check.
var _ archive.Store = (*store)(nil)

// Append records a turn.
func (s *store) Append(ctx context.Context, entry archive.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (role, content, from_cache, created_at)
		VALUES (?, ?, ?, ?)`,
		entry.Role, entry.Content, boolToInt(entry.FromCache),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("archive.sqlite: append turn: %w", err)
	}
	return nil
}

// Recent returns up to limit entries in chronological order.
func (s *store) Recent(ctx context.Context, limit int) ([]archive.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, from_cache, created_at FROM (
			SELECT id, role, content, from_cache, created_at
			FROM turns ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("archive.sqlite: recent turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Search returns up to limit entries whose content contains query,
// case-insensitively, in chronological order.
func (s *store) Search(ctx context.Context, query string, limit int) ([]archive.Entry, error) {
	if query == "" || limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, from_cache, created_at FROM (
			SELECT id, role, content, from_cache, created_at
			FROM turns
			WHERE content LIKE '%' || ? || '%'
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("archive.sqlite: search turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Len returns the total number of archived entries.
func (s *store) Len(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM turns").Scan(&count); err != nil {
		return 0, fmt.Errorf("archive.sqlite: count turns: %w", err)
	}
	return count, nil
}

func scanEntries(rows *sql.Rows) ([]archive.Entry, error) {
	var entries []archive.Entry
	for rows.Next() {
		var (
			entry        archive.Entry
			fromCache    int
			createdAtStr string
		)
		if err := rows.Scan(&entry.ID, &entry.Role, &entry.Content, &fromCache, &createdAtStr); err != nil {
			return nil, fmt.Errorf("archive.sqlite: scan turn: %w", err)
		}
		entry.FromCache = fromCache != 0

		t, err := time.Parse(time.RFC3339Nano, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("archive.sqlite: parse created_at %q: %w", createdAtStr, err)
		}
		entry.CreatedAt = t

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive.sqlite: scan rows: %w", err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
