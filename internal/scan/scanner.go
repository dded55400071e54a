// Package scan provides a bounded file-pattern scanner used as the secondary
// framework-detection signal. Scans are limited by recursion depth, a skip-list
// of heavy directories, and the caller's context deadline.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxDepth bounds recursion below the project root.
const DefaultMaxDepth = 3

// defaultSkipDirs are never descended into: dependency caches, version
// control, and build output dominate tree size without carrying signals.
var defaultSkipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	"dist":         {},
	"build":        {},
	"out":          {},
	"coverage":     {},
	".next":        {},
	".nuxt":        {},
	".svelte-kit":  {},
	".output":      {},
	".cache":       {},
	".launchpad":   {},
}

// Scanner matches file patterns under a root within depth and time bounds.
type Scanner struct {
	maxDepth int
	skipDirs map[string]struct{}
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxDepth overrides the recursion depth bound.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) { s.maxDepth = depth }
}

// WithSkipDirs replaces the directory skip-list.
func WithSkipDirs(dirs []string) Option {
	return func(s *Scanner) {
		s.skipDirs = make(map[string]struct{}, len(dirs))
		for _, d := range dirs {
			s.skipDirs[d] = struct{}{}
		}
	}
}

// New creates a scanner with the default depth bound and skip-list.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		maxDepth: DefaultMaxDepth,
		skipDirs: defaultSkipDirs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Match reports whether any file under root matches any of the glob patterns.
// The walk stops at the first match, at the depth bound, or when ctx expires.
// Context expiry returns ctx.Err(); callers treat it as "not found".
func (s *Scanner) Match(ctx context.Context, root string, patterns []string) (bool, error) {
	if len(patterns) == 0 {
		return false, nil
	}

	found := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if _, skip := s.skipDirs[d.Name()]; skip {
				return fs.SkipDir
			}
			if depth(rel) >= s.maxDepth {
				return fs.SkipDir
			}
			return nil
		}

		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				found = true
				return fs.SkipAll
			}
		}
		return nil
	})

	if err != nil {
		return false, err
	}
	return found, nil
}

// depth counts path segments of a slash-separated relative path.
func depth(rel string) int {
	return strings.Count(rel, "/") + 1
}

// DirExists reports whether a directory exists under root.
func DirExists(root, rel string) bool {
	info, err := os.Stat(filepath.Join(root, rel))
	return err == nil && info.IsDir()
}
