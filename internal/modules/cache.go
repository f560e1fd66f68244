package modules

import (
	"path/filepath"
	"sync"

	"jsdeps/internal/fastfs"
)

// Cache hands out Module and Package instances memoized by path. Within one
// cache, the same path always yields the same instance, which is what lets
// the resolver compare modules by identity.
type Cache struct {
	index            *fastfs.Index
	replacementField string

	mu        sync.Mutex
	modules   map[string]*Module
	packages  map[string]*Package
	pkgForDir map[string]*Package // dir -> owning package (nil = none)
}

// NewCache creates a cache over the given file index. replacementField names
// the package.json field consulted for specifier redirection; empty means
// "browser".
func NewCache(index *fastfs.Index, replacementField string) *Cache {
	return &Cache{
		index:            index,
		replacementField: replacementField,
		modules:          make(map[string]*Module),
		packages:         make(map[string]*Package),
		pkgForDir:        make(map[string]*Package),
	}
}

// Index returns the file index backing this cache.
func (c *Cache) Index() *fastfs.Index {
	return c.index
}

// GetModule returns the module for a path, creating it on first use.
func (c *Cache) GetModule(path string) *Module {
	key := normalizeKey(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.modules[key]; ok {
		return m
	}
	m := &Module{Path: key, cache: c}
	c.modules[key] = m
	return m
}

// GetAssetModule returns the asset module for a path. Asset modules carry no
// source dependencies.
func (c *Cache) GetAssetModule(path string) *Module {
	key := normalizeKey(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.modules[key]; ok {
		return m
	}
	m := &Module{Path: key, cache: c, isAsset: true}
	c.modules[key] = m
	return m
}

// GetPackage returns the package for a manifest path, creating it on first
// use. The manifest itself is parsed lazily.
func (c *Cache) GetPackage(manifestPath string) *Package {
	key := normalizeKey(manifestPath)

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.getPackageLocked(key)
}

func (c *Cache) getPackageLocked(key string) *Package {
	if p, ok := c.packages[key]; ok {
		return p
	}
	p := newPackage(key, c.replacementField)
	c.packages[key] = p
	return p
}

// OwningPackage finds the nearest enclosing package.json for a path, walking
// up to the index root. Returns nil when the path is not inside a package.
func (c *Cache) OwningPackage(path string) *Package {
	dir := filepath.ToSlash(filepath.Dir(normalizeKey(path)))
	root := c.index.Root()

	c.mu.Lock()
	defer c.mu.Unlock()

	var missing []string
	for {
		if p, ok := c.pkgForDir[dir]; ok {
			for _, d := range missing {
				c.pkgForDir[d] = p
			}
			return p
		}

		manifest := dir + "/package.json"
		if c.index.FileExists(manifest) {
			p := c.getPackageLocked(manifest)
			c.pkgForDir[dir] = p
			for _, d := range missing {
				c.pkgForDir[d] = p
			}
			return p
		}

		missing = append(missing, dir)
		if dir == root || dir == "/" || dir == "." {
			break
		}
		parent := filepath.ToSlash(filepath.Dir(dir))
		if parent == dir {
			break
		}
		dir = parent
	}

	for _, d := range missing {
		c.pkgForDir[d] = nil
	}
	return nil
}
