// Package assets recognizes asset files and builds the directory-scoped
// patterns used to resolve an asset specifier to one of its variants.
package assets

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ExtSet is a lookup set of asset extensions without the leading dot.
type ExtSet map[string]bool

// NewExtSet builds an ExtSet from a list of extensions. Leading dots and case
// are normalized away.
func NewExtSet(exts []string) ExtSet {
	set := make(ExtSet, len(exts))
	for _, e := range exts {
		set[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	return set
}

// IsAssetFile reports whether path has a recognized asset extension.
func (s ExtSet) IsAssetFile(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	return s[ext]
}

// ResolutionPattern builds the filename pattern matching every variant of an
// asset: optional "@<scale>x" scale suffix and optional ".<platform>"
// platform suffix before the extension. Matching is scoped to the asset's
// directory; ties among scale variants go to the first match, scale
// selection happens downstream.
func ResolutionPattern(base, platform, ext string) *regexp.Regexp {
	var platformPart string
	if platform != "" {
		platformPart = fmt.Sprintf(`(\.(%s))?`, regexp.QuoteMeta(platform))
	}
	return regexp.MustCompile(fmt.Sprintf(
		`^%s(@[\d.]+x)?%s\.%s$`,
		regexp.QuoteMeta(base), platformPart, regexp.QuoteMeta(ext),
	))
}

// SplitAssetPath breaks an asset path into the directory, the extensionless
// basename, and the extension without dot.
func SplitAssetPath(path string) (dir, base, ext string) {
	dir = filepath.Dir(path)
	name := filepath.Base(path)
	dotExt := filepath.Ext(name)
	return dir, strings.TrimSuffix(name, dotExt), strings.TrimPrefix(dotExt, ".")
}
