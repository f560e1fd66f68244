// Package paths provides path and specifier helpers shared by the resolver.
// All paths handed to the resolver are normalized through this package so that
// memo keys and index lookups agree on one canonical spelling.
package paths

import (
	"path/filepath"
	"strings"
)

// Normalize cleans a path and converts separators to forward slashes.
// This is the canonical spelling used for index lookups and memo keys.
func Normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// NormalizeSpecifier normalizes a dependency name: trailing slashes are
// stripped and separators are platform-corrected.
func NormalizeSpecifier(name string) string {
	name = filepath.ToSlash(name)
	for len(name) > 1 && strings.HasSuffix(name, "/") {
		name = name[:len(name)-1]
	}
	return name
}

// IsRelativeSpecifier reports whether a dependency name is relative
// ("./x", "../x", "." or "..").
func IsRelativeSpecifier(name string) bool {
	return name == "." || name == ".." ||
		strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../")
}

// IsAbsoluteSpecifier reports whether a dependency name is an absolute path.
func IsAbsoluteSpecifier(name string) bool {
	return strings.HasPrefix(name, "/")
}

// IsBareSpecifier reports whether a dependency name is eligible for Haste or
// node_modules resolution.
func IsBareSpecifier(name string) bool {
	return !IsRelativeSpecifier(name) && !IsAbsoluteSpecifier(name)
}

// InsideNodeModules reports whether a file path lives under a node_modules
// (vendored) tree.
func InsideNodeModules(path string) bool {
	path = Normalize(path)
	return strings.Contains(path, "/node_modules/") || strings.HasPrefix(path, "node_modules/")
}

// EnclosingPackageDir returns the directory of the node_modules package that
// contains path, e.g. "/a/node_modules/pkg" for "/a/node_modules/pkg/lib/x.js".
// Scoped packages ("@scope/name") span two path segments.
func EnclosingPackageDir(path string) (string, bool) {
	norm := Normalize(path)
	idx := strings.LastIndex(norm, "/node_modules/")
	if idx < 0 {
		return "", false
	}
	rest := norm[idx+len("/node_modules/"):]
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", false
	}
	take := 1
	if strings.HasPrefix(parts[0], "@") {
		if len(parts) < 2 {
			return "", false
		}
		take = 2
	}
	return norm[:idx+len("/node_modules/")] + strings.Join(parts[:take], "/"), true
}

// Ancestors returns the directories to search for node_modules, starting from
// the file's own directory and ascending toward the file-system root,
// exclusive of the root itself.
func Ancestors(file string) []string {
	dir := filepath.Dir(Normalize(file))
	var out []string
	for dir != "/" && dir != "." {
		out = append(out, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return out
}
