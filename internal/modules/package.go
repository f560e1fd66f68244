package modules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	rerr "jsdeps/internal/errors"
	"jsdeps/internal/paths"
)

// Package represents one package.json. It owns the package root, the declared
// main entry point, and the specifier-redirection table from the configured
// replacement field ("browser" or "react-native").
type Package struct {
	// ManifestPath is the normalized absolute path of the package.json.
	ManifestPath string
	// Root is the directory containing the manifest.
	Root string

	replacementField string

	once sync.Once
	data *manifestData
	err  error
}

type manifestData struct {
	name     string
	main     string
	mainSub  string            // string-form replacement field overriding main
	rewrites map[string]string // specifier -> specifier
	disabled map[string]bool   // specifier -> excluded from the build
}

func newPackage(manifestPath, replacementField string) *Package {
	norm := paths.Normalize(manifestPath)
	if replacementField == "" {
		replacementField = "browser"
	}
	return &Package{
		ManifestPath:     norm,
		Root:             filepath.ToSlash(filepath.Dir(norm)),
		replacementField: replacementField,
	}
}

// load parses the manifest once. A malformed manifest is a hard error that
// propagates out of any resolution touching this package.
func (p *Package) load() (*manifestData, error) {
	p.once.Do(func() {
		raw, err := os.ReadFile(filepath.FromSlash(p.ManifestPath))
		if err != nil {
			p.err = rerr.NewResolveError(rerr.ManifestInvalid, "read "+p.ManifestPath, err)
			return
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			p.err = rerr.NewResolveError(rerr.ManifestInvalid, "parse "+p.ManifestPath, err)
			return
		}

		data := &manifestData{
			rewrites: make(map[string]string),
			disabled: make(map[string]bool),
		}
		if v, ok := fields["name"]; ok {
			_ = json.Unmarshal(v, &data.name)
		}
		if v, ok := fields["main"]; ok {
			_ = json.Unmarshal(v, &data.main)
		}

		if v, ok := fields[p.replacementField]; ok {
			var sub string
			if err := json.Unmarshal(v, &sub); err == nil {
				data.mainSub = sub
			} else {
				var table map[string]interface{}
				if err := json.Unmarshal(v, &table); err != nil {
					p.err = rerr.NewResolveError(rerr.ManifestInvalid,
						"field "+p.replacementField+" in "+p.ManifestPath, err)
					return
				}
				for from, to := range table {
					switch t := to.(type) {
					case string:
						data.rewrites[from] = t
					case bool:
						if !t {
							data.disabled[from] = true
						}
					}
				}
			}
		}

		p.data = data
	})
	return p.data, p.err
}

// Name returns the declared package name, which may be empty.
func (p *Package) Name() (string, error) {
	data, err := p.load()
	if err != nil {
		return "", err
	}
	return data.name, nil
}

// Main returns the absolute path of the package entry point, without any
// extension probing; the loader probes it as a file-or-directory candidate.
// The replacement field's string form overrides the main field; both default
// to "index".
func (p *Package) Main() (string, error) {
	data, err := p.load()
	if err != nil {
		return "", err
	}

	main := data.main
	if data.mainSub != "" {
		main = data.mainSub
	}
	if main == "" || main == "." || main == "./" {
		main = "index"
	}
	return paths.Normalize(filepath.Join(filepath.FromSlash(p.Root), filepath.FromSlash(main))), nil
}

// RedirectRequire rewrites a specifier through the package's redirection
// table. The boolean is false when the specifier is disabled for this
// package; in every other case the (possibly unchanged) specifier is
// returned with true.
func (p *Package) RedirectRequire(name string) (string, bool, error) {
	data, err := p.load()
	if err != nil {
		return "", false, err
	}

	for _, key := range redirectKeys(name) {
		if data.disabled[key] {
			return "", false, nil
		}
		if to, ok := data.rewrites[key]; ok {
			return to, true, nil
		}
	}
	return name, true, nil
}

// redirectKeys lists the spellings a redirect table may use for a specifier.
// Relative specifiers are matched cleaned and with an implicit ".js".
func redirectKeys(name string) []string {
	keys := []string{name}
	if paths.IsRelativeSpecifier(name) {
		cleaned := "./" + filepath.ToSlash(filepath.Clean(filepath.FromSlash(name)))
		if cleaned != name {
			keys = append(keys, cleaned)
		}
		if !strings.HasSuffix(name, ".js") {
			keys = append(keys, name+".js", cleaned+".js")
		}
	}
	return keys
}
