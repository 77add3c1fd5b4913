package sysinfo

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// maxSearchResults caps how many matching paths a search returns.
const maxSearchResults = 100

// SearchFiles walks root looking for file names containing pattern
// (case-insensitive) and returns at most maxSearchResults paths.
// Unreadable directories are skipped rather than failing the search.
func (s *Service) SearchFiles(ctx context.Context, root, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, nil
	}
	needle := strings.ToLower(pattern)

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		// Skip hidden directories (dotfiles trees tend to be enormous).
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if d.IsDir() {
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), needle) {
			matches = append(matches, path)
			if len(matches) >= maxSearchResults {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return matches, err
	}
	return matches, nil
}
