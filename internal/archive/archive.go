// Package archive defines the permanent transcript archive. The trimmed
// conversation store forgets old exchanges; the archive keeps every turn.
package archive

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("archive: entry not found")

// Entry is one archived turn.
type Entry struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	FromCache bool      `json:"from_cache,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the append-only transcript archive.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records a turn. The entry's ID is assigned by the store.
	Append(ctx context.Context, entry Entry) error

	// Recent returns up to limit entries, newest last (chronological order).
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Search returns up to limit entries whose content matches query,
	// newest last.
	Search(ctx context.Context, query string, limit int) ([]Entry, error)

	// Len returns the total number of archived entries.
	Len(ctx context.Context) (int, error)
}
