// Package mocks maintains the table of mock modules substituted for short
// names during test-oriented graph builds.
package mocks

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"jsdeps/internal/fastfs"
)

// Table maps short module/package names to mock file paths. It is populated
// lazily on the first query, not precomputed: each name maps to at most one
// mock path, first writer wins.
type Table struct {
	index   *fastfs.Index
	pattern *regexp.Regexp

	mu    sync.Mutex
	built bool
	paths map[string]string
}

// NewTable compiles the mock-file pattern. The pattern's first capture group,
// when present, names the mock; otherwise the file's extensionless basename
// is used.
func NewTable(index *fastfs.Index, pattern string) (*Table, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Table{
		index:   index,
		pattern: re,
		paths:   make(map[string]string),
	}, nil
}

// Path returns the mock file registered for a name.
func (t *Table) Path(name string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buildLocked()
	p, ok := t.paths[name]
	return p, ok
}

// All returns a copy of the full name-to-path table.
func (t *Table) All() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buildLocked()
	out := make(map[string]string, len(t.paths))
	for k, v := range t.paths {
		out[k] = v
	}
	return out
}

func (t *Table) buildLocked() {
	if t.built {
		return
	}
	t.built = true

	for _, file := range t.index.MatchFilesByPattern(t.pattern) {
		name := t.mockName(file)
		if name == "" {
			continue
		}
		if _, ok := t.paths[name]; ok {
			continue // first writer wins
		}
		t.paths[name] = file
	}
}

func (t *Table) mockName(file string) string {
	if m := t.pattern.FindStringSubmatch(file); len(m) > 1 && m[1] != "" {
		name := m[1]
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
