// Package modules holds the module and package entities shared across
// resolution sessions. Entities are addressed by absolute path through the
// Cache; the resolver never constructs them directly.
package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"jsdeps/internal/paths"
)

// Module represents one file on disk. It is identified by its normalized
// absolute path and carries a lazily computed content hash that serves as the
// identity key for graph deduplication.
type Module struct {
	// Path is the normalized absolute file path.
	Path string

	cache   *Cache
	isAsset bool

	hashOnce sync.Once
	hash     string
	hashErr  error
}

// IsAsset reports whether the module is an asset file (image, font, ...)
// rather than source code.
func (m *Module) IsAsset() bool {
	return m.isAsset
}

// Hash returns the module's content hash. The hash is computed on first use
// and memoized; two files with identical content share a hash.
func (m *Module) Hash() (string, error) {
	m.hashOnce.Do(func() {
		data, err := os.ReadFile(filepath.FromSlash(m.Path))
		if err != nil {
			m.hashErr = fmt.Errorf("hash %s: %w", m.Path, err)
			return
		}
		sum := xxh3.Hash128(data)
		m.hash = fmt.Sprintf("%016x%016x", sum.Hi, sum.Lo)
	})
	return m.hash, m.hashErr
}

// Package returns the package owning this module, or nil when the module is
// not inside any package.
func (m *Module) Package() *Package {
	if m.cache == nil {
		return nil
	}
	return m.cache.OwningPackage(m.Path)
}

// ShortName returns the name a mock for this module would be registered
// under: the basename without platform or file extensions.
func (m *Module) ShortName() string {
	name := filepath.Base(m.Path)
	for {
		ext := filepath.Ext(name)
		// A platform suffix ("index.ios") still counts as an extension.
		if ext == "" || ext == name {
			return name
		}
		name = strings.TrimSuffix(name, ext)
	}
}

// normalizeKey is the canonical cache key for a path.
func normalizeKey(path string) string {
	return paths.Normalize(path)
}
