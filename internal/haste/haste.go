// Package haste builds the global module namespace: files declaring a
// @providesModule name in their leading docblock and packages declaring a
// name in package.json, addressable by that name from anywhere in the tree.
package haste

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"jsdeps/internal/fastfs"
	"jsdeps/internal/logging"
	"jsdeps/internal/paths"
)

// EntryType distinguishes module and package entries in the namespace.
type EntryType int

const (
	// TypeModule is a single file declared via @providesModule
	TypeModule EntryType = iota
	// TypePackage is a package.json-rooted package addressed by its name
	TypePackage
)

// Entry is one namespace member.
type Entry struct {
	Type EntryType
	// Path is the file path for modules, the manifest path for packages.
	Path string
	// Root is the package root directory; empty for modules.
	Root string
}

// Map is the haste namespace index. Built once per file-index snapshot and
// read-only afterwards.
type Map struct {
	mu       sync.Mutex
	modules  map[string]map[string]string // name -> platform ("" generic) -> path
	packages map[string]*Entry
}

var providesRe = regexp.MustCompile(`@providesModule\s+(\S+)`)

// scanConcurrency bounds parallel docblock reads during the build.
const scanConcurrency = 16

// Build scans every candidate file in the index. Vendored (node_modules)
// trees never contribute to the namespace. platforms lists the file-name
// suffixes recognized as platform variants.
func Build(index *fastfs.Index, platforms []string, logger *logging.Logger) (*Map, error) {
	m := &Map{
		modules:  make(map[string]map[string]string),
		packages: make(map[string]*Entry),
	}

	platformSet := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		platformSet[p] = true
	}

	var g errgroup.Group
	g.SetLimit(scanConcurrency)

	for _, file := range index.AllFiles() {
		if paths.InsideNodeModules(file) {
			continue
		}

		switch {
		case filepath.Base(file) == "package.json":
			file := file
			g.Go(func() error {
				m.registerPackage(file, logger)
				return nil
			})
		case isHasteCandidate(file):
			file := file
			g.Go(func() error {
				m.registerModule(file, platformSet, logger)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func isHasteCandidate(file string) bool {
	switch filepath.Ext(file) {
	case ".js", ".jsx", ".ts", ".tsx":
		return true
	default:
		return false
	}
}

func (m *Map) registerModule(file string, platformSet map[string]bool, logger *logging.Logger) {
	name, ok := providesModuleName(file)
	if !ok {
		return
	}

	platform := platformSuffix(file, platformSet)

	m.mu.Lock()
	defer m.mu.Unlock()

	byPlatform, ok := m.modules[name]
	if !ok {
		byPlatform = make(map[string]string)
		m.modules[name] = byPlatform
	}
	if prev, exists := byPlatform[platform]; exists {
		logger.Warn("Duplicate haste module name", map[string]interface{}{
			"name":     name,
			"platform": platform,
			"kept":     prev,
			"ignored":  file,
		})
		return
	}
	byPlatform[platform] = file
}

func (m *Map) registerPackage(manifest string, logger *logging.Logger) {
	raw, err := os.ReadFile(filepath.FromSlash(manifest))
	if err != nil {
		return
	}
	var fields struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil || fields.Name == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, exists := m.packages[fields.Name]; exists {
		logger.Warn("Duplicate haste package name", map[string]interface{}{
			"name":    fields.Name,
			"kept":    prev.Path,
			"ignored": manifest,
		})
		return
	}
	m.packages[fields.Name] = &Entry{
		Type: TypePackage,
		Path: manifest,
		Root: filepath.ToSlash(filepath.Dir(manifest)),
	}
}

// providesModuleName extracts the @providesModule declaration from a file's
// leading docblock. Only a docblock at the very top of the file counts.
func providesModuleName(file string) (string, bool) {
	raw, err := os.ReadFile(filepath.FromSlash(file))
	if err != nil {
		return "", false
	}

	src := strings.TrimLeft(string(raw), " \t\r\n")
	if !strings.HasPrefix(src, "/*") {
		return "", false
	}
	end := strings.Index(src, "*/")
	if end < 0 {
		return "", false
	}

	match := providesRe.FindStringSubmatch(src[:end])
	if match == nil {
		return "", false
	}
	return match[1], true
}

// platformSuffix extracts a recognized platform from a file name like
// "Banana.ios.js"; returns "" for generic files.
func platformSuffix(file string, platformSet map[string]bool) string {
	name := filepath.Base(file)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	second := filepath.Ext(name)
	if second == "" {
		return ""
	}
	candidate := strings.TrimPrefix(second, ".")
	if platformSet[candidate] {
		return candidate
	}
	return ""
}

// GetModule returns the module entry for a name scoped to the active
// platform: an exact platform variant wins over the generic file.
func (m *Map) GetModule(name, platform string) *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	byPlatform, ok := m.modules[name]
	if !ok {
		return nil
	}
	if platform != "" {
		if path, ok := byPlatform[platform]; ok {
			return &Entry{Type: TypeModule, Path: path}
		}
	}
	if path, ok := byPlatform[""]; ok {
		return &Entry{Type: TypeModule, Path: path}
	}
	return nil
}

// GetPackage returns the package entry for a name.
func (m *Map) GetPackage(name string) *Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.packages[name]
}
