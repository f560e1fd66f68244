// Package fastfs maintains an in-memory index of the files and directories in
// a source tree. The resolver performs all of its existence and pattern checks
// against this index instead of hitting the file system for every probe.
package fastfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"jsdeps/internal/paths"
)

// Index is a snapshot of a source tree that answers existence and pattern
// queries. It is safe for concurrent use; the watcher mutates it through
// AddFile/RemoveFile/AddDir/RemoveDir.
type Index struct {
	root   string
	ignore map[string]bool

	mu    sync.RWMutex
	files map[string]bool
	dirs  map[string][]string // dir -> sorted file basenames directly inside
}

// Build walks root and indexes every file and directory, skipping the named
// ignore directories.
func Build(root string, ignoreDirs []string) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		root:   paths.Normalize(abs),
		ignore: make(map[string]bool, len(ignoreDirs)),
		files:  make(map[string]bool),
		dirs:   make(map[string][]string),
	}
	for _, d := range ignoreDirs {
		ix.ignore[d] = true
	}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are simply absent from the index
		}
		if d.IsDir() {
			if ix.ignore[d.Name()] && paths.Normalize(path) != ix.root {
				return filepath.SkipDir
			}
			ix.AddDir(path)
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		ix.AddFile(path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ix, nil
}

// Root returns the normalized absolute root of the index.
func (ix *Index) Root() string {
	return ix.root
}

// FileExists reports whether path is an indexed file.
func (ix *Index) FileExists(path string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.files[paths.Normalize(path)]
}

// DirExists reports whether path is an indexed directory.
func (ix *Index) DirExists(path string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.dirs[paths.Normalize(path)]
	return ok
}

// Matches returns the full paths of files directly inside dir whose basename
// matches re, in sorted basename order.
func (ix *Index) Matches(dir string, re *regexp.Regexp) []string {
	dir = paths.Normalize(dir)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []string
	for _, name := range ix.dirs[dir] {
		if re.MatchString(name) {
			out = append(out, dir+"/"+name)
		}
	}
	return out
}

// MatchFilesByPattern returns every indexed file whose full path matches re,
// in sorted path order.
func (ix *Index) MatchFilesByPattern(re *regexp.Regexp) []string {
	ix.mu.RLock()
	all := make([]string, 0, len(ix.files))
	for f := range ix.files {
		all = append(all, f)
	}
	ix.mu.RUnlock()

	sort.Strings(all)

	var out []string
	for _, f := range all {
		if re.MatchString(f) {
			out = append(out, f)
		}
	}
	return out
}

// AllFiles returns every indexed file in sorted order.
func (ix *Index) AllFiles() []string {
	ix.mu.RLock()
	all := make([]string, 0, len(ix.files))
	for f := range ix.files {
		all = append(all, f)
	}
	ix.mu.RUnlock()

	sort.Strings(all)
	return all
}

// AllDirs returns every indexed directory in sorted order.
func (ix *Index) AllDirs() []string {
	ix.mu.RLock()
	all := make([]string, 0, len(ix.dirs))
	for d := range ix.dirs {
		all = append(all, d)
	}
	ix.mu.RUnlock()

	sort.Strings(all)
	return all
}

// AddFile indexes a single file, creating its parent directory entries.
func (ix *Index) AddFile(path string) {
	norm := paths.Normalize(path)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.files[norm] {
		return
	}
	ix.files[norm] = true

	dir := filepath.Dir(norm)
	ix.addDirLocked(dir)

	name := filepath.Base(norm)
	names := ix.dirs[dir]
	i := sort.SearchStrings(names, name)
	if i < len(names) && names[i] == name {
		return
	}
	names = append(names, "")
	copy(names[i+1:], names[i:])
	names[i] = name
	ix.dirs[dir] = names
}

// RemoveFile drops a file from the index.
func (ix *Index) RemoveFile(path string) {
	norm := paths.Normalize(path)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if !ix.files[norm] {
		return
	}
	delete(ix.files, norm)

	dir := filepath.Dir(norm)
	name := filepath.Base(norm)
	names := ix.dirs[dir]
	i := sort.SearchStrings(names, name)
	if i < len(names) && names[i] == name {
		ix.dirs[dir] = append(names[:i], names[i+1:]...)
	}
}

// AddDir indexes a directory and its ancestors up to the index root.
func (ix *Index) AddDir(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.addDirLocked(paths.Normalize(path))
}

func (ix *Index) addDirLocked(dir string) {
	for {
		if _, ok := ix.dirs[dir]; ok {
			return
		}
		ix.dirs[dir] = nil
		if dir == ix.root || dir == "/" || dir == "." {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// RemoveDir drops a directory and everything beneath it from the index.
func (ix *Index) RemoveDir(path string) {
	norm := paths.Normalize(path)
	prefix := norm + "/"

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for f := range ix.files {
		if strings.HasPrefix(f, prefix) {
			delete(ix.files, f)
		}
	}
	for d := range ix.dirs {
		if d == norm || strings.HasPrefix(d, prefix) {
			delete(ix.dirs, d)
		}
	}
}

// IsIgnoredDir reports whether a directory basename is excluded from indexing.
func (ix *Index) IsIgnoredDir(name string) bool {
	return ix.ignore[name]
}

// Stat checks the real file system for a path's kind, used by the watcher to
// classify create events.
func Stat(path string) (isDir bool, exists bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}
