package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrPersistence wraps any history save/load failure. Unlike cache
// persistence these failures are surfaced: the user explicitly requested
// the operation.
var ErrPersistence = errors.New("conversation: persistence failure")

// turnRecord is the on-disk representation of a Turn: an ordered JSON array
// of these objects forms the history file.
type turnRecord struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Cached    bool   `json:"cached,omitempty"`
}

// SaveTo serializes the full transcript to path. The write goes through a
// temporary file and rename so a failed save never truncates an existing
// history file. The in-memory store is unaffected by a failed save.
func (s *Store) SaveTo(path string) error {
	turns := s.Snapshot()

	records := make([]turnRecord, len(turns))
	for i, t := range turns {
		records[i] = turnRecord{
			Role:      string(t.Role),
			Content:   t.Content,
			Timestamp: t.CreatedAt.Format(time.RFC3339Nano),
			Cached:    t.FromCache,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding history: %w", ErrPersistence, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("%w: creating directory %s: %w", ErrPersistence, dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrPersistence, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replacing %s: %w", ErrPersistence, path, err)
	}
	return nil
}

// LoadFrom replaces the entire transcript with the contents of path.
// Atomic replace-or-fail: on any error the store is left unchanged.
func (s *Store) LoadFrom(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrPersistence, path, err)
	}

	var records []turnRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", ErrPersistence, path, err)
	}

	turns := make([]Turn, len(records))
	for i, r := range records {
		role := Role(r.Role)
		if role != RoleUser && role != RoleAssistant {
			return fmt.Errorf("%w: %s: record %d has unknown role %q", ErrPersistence, path, i, r.Role)
		}
		ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return fmt.Errorf("%w: %s: record %d has invalid timestamp: %w", ErrPersistence, path, i, err)
		}
		turns[i] = Turn{
			Role:      role,
			Content:   r.Content,
			CreatedAt: ts,
			FromCache: r.Cached,
		}
	}

	s.replace(turns)
	return nil
}
