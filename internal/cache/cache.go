package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// nopHandler is a slog.Handler that discards all log records.
// Enabled returns false so slog skips formatting entirely (zero cost).
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Cache is the persistent response cache: a key→response map loaded whole
// at startup and rewritten whole on every insert. Memory is authoritative;
// durable persistence is best-effort. The cache never grows a failure into
// a user-visible error — it is an optimization, not a correctness
// dependency. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]string
	path    string
	logger  *slog.Logger
}

// Option configures optional Cache behavior.
type Option func(*Cache)

// WithLogger injects a structured logger. When nil or omitted, all log
// output is silently discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cache persisted at path and loads any existing cache file.
// A missing, corrupt, foreign, or old-version file silently yields an empty
// cache: startup never fails on account of the cache.
func New(path string, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]string),
		path:    path,
		logger:  slog.New(nopHandler{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache file unreadable, starting empty", "path", path, "error", err)
		}
		return c
	}

	entries, err := decode(data)
	if err != nil {
		c.logger.Warn("cache file unusable, starting empty", "path", path, "error", err)
		return c
	}

	c.entries = entries
	c.logger.Info("response cache loaded", "path", path, "entries", len(entries))
	return c
}

// Lookup returns the cached response for key. Infallible read.
func (c *Cache) Lookup(key Key) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	response, ok := c.entries[key]
	return response, ok
}

// Insert stores the response for key in memory, then rewrites the cache
// file. A persistence failure is logged but does not roll back the
// in-memory entry: the cache stays correct in-process even when the disk
// does not cooperate.
func (c *Cache) Insert(key Key, response string) {
	c.mu.Lock()
	c.entries[key] = response
	data := encode(c.entries)
	c.mu.Unlock()

	if err := c.persist(data); err != nil {
		c.logger.Warn("cache persistence failed, entry kept in memory",
			"path", c.path, "key", key.String(), "error", err)
	}
}

// Len returns the number of cached responses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// persist writes the encoded cache through a temp file and rename.
func (c *Cache) persist(data []byte) error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("cache: creating directory %s: %w", dir, err)
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("cache: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cache: replacing %s: %w", c.path, err)
	}
	return nil
}
