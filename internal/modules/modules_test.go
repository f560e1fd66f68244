package modules

import (
	"os"
	"path/filepath"
	"testing"

	"jsdeps/internal/fastfs"
	"jsdeps/internal/paths"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return paths.Normalize(full)
}

func buildIndex(t *testing.T, root string) *fastfs.Index {
	t.Helper()
	ix, err := fastfs.Build(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

func TestCacheReturnsSameInstance(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "a.js", "module.exports = 1;\n")

	cache := NewCache(buildIndex(t, root), "")

	m1 := cache.GetModule(p)
	m2 := cache.GetModule(p)
	if m1 != m2 {
		t.Error("GetModule must return the same instance for the same path")
	}

	a1 := cache.GetAssetModule(paths.Normalize(filepath.Join(root, "icon.png")))
	a2 := cache.GetAssetModule(paths.Normalize(filepath.Join(root, "icon.png")))
	if a1 != a2 {
		t.Error("GetAssetModule must return the same instance for the same path")
	}
	if !a1.IsAsset() {
		t.Error("asset module should report IsAsset")
	}
	if m1.IsAsset() {
		t.Error("source module should not report IsAsset")
	}
}

func TestModuleHash(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "a.js", "same content\n")
	b := writeFile(t, root, "b.js", "same content\n")
	c := writeFile(t, root, "c.js", "different content\n")

	cache := NewCache(buildIndex(t, root), "")

	ha, err := cache.GetModule(a).Hash()
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hb, _ := cache.GetModule(b).Hash()
	hc, _ := cache.GetModule(c).Hash()

	if ha != hb {
		t.Error("identical content must hash identically")
	}
	if ha == hc {
		t.Error("different content must hash differently")
	}

	// Memoized: second call returns the same value without error.
	ha2, err := cache.GetModule(a).Hash()
	if err != nil || ha2 != ha {
		t.Errorf("Hash() second call = %q, %v", ha2, err)
	}
}

func TestModuleShortName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/root/Banana.js", "Banana"},
		{"/root/index.ios.js", "index"},
		{"/root/photo.png", "photo"},
		{"/root/noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m := &Module{Path: tt.path}
			if got := m.ShortName(); got != tt.want {
				t.Errorf("ShortName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOwningPackage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name": "app"}`)
	inner := writeFile(t, root, "node_modules/lib/package.json", `{"name": "lib"}`)
	libFile := writeFile(t, root, "node_modules/lib/src/x.js", "x\n")
	appFile := writeFile(t, root, "src/a.js", "a\n")
	writeFile(t, root, "loose.js", "loose\n")

	cache := NewCache(buildIndex(t, root), "")

	pkg := cache.GetModule(libFile).Package()
	if pkg == nil {
		t.Fatal("lib file should have an owning package")
	}
	if pkg.ManifestPath != inner {
		t.Errorf("owning manifest = %q, want %q", pkg.ManifestPath, inner)
	}
	name, err := pkg.Name()
	if err != nil || name != "lib" {
		t.Errorf("Name() = %q, %v; want lib", name, err)
	}

	appPkg := cache.GetModule(appFile).Package()
	if appPkg == nil || filepath.Base(appPkg.Root) != filepath.Base(paths.Normalize(root)) {
		t.Errorf("app file should belong to the root package, got %+v", appPkg)
	}

	// Memoized lookups return the same instance.
	if cache.GetModule(libFile).Package() != pkg {
		t.Error("OwningPackage must memoize")
	}
}

func TestPackageMain(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		field    string
		wantRel  string
	}{
		{"explicit main", `{"main": "lib/entry.js"}`, "", "lib/entry.js"},
		{"default index", `{"name": "p"}`, "", "index"},
		{"dot main", `{"main": "."}`, "", "index"},
		{"browser string overrides", `{"main": "lib/entry.js", "browser": "lib/web.js"}`, "browser", "lib/web.js"},
		{"react-native field", `{"main": "lib/entry.js", "react-native": "lib/rn.js"}`, "react-native", "lib/rn.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			manifest := writeFile(t, root, "pkg/package.json", tt.manifest)

			cache := NewCache(buildIndex(t, root), tt.field)
			pkg := cache.GetPackage(manifest)

			main, err := pkg.Main()
			if err != nil {
				t.Fatalf("Main() error = %v", err)
			}
			want := paths.Normalize(filepath.Join(root, "pkg", filepath.FromSlash(tt.wantRel)))
			if main != want {
				t.Errorf("Main() = %q, want %q", main, want)
			}
		})
	}
}

func TestPackageMainInvalidManifest(t *testing.T) {
	root := t.TempDir()
	manifest := writeFile(t, root, "pkg/package.json", `{not json`)

	cache := NewCache(buildIndex(t, root), "")
	pkg := cache.GetPackage(manifest)

	if _, err := pkg.Main(); err == nil {
		t.Error("malformed manifest must be a hard error")
	}
	// The parse error is memoized.
	if _, err := pkg.Name(); err == nil {
		t.Error("Name() must surface the same parse error")
	}
}

func TestRedirectRequire(t *testing.T) {
	root := t.TempDir()
	manifest := writeFile(t, root, "pkg/package.json", `{
		"name": "pkg",
		"browser": {
			"./server.js": false,
			"./io.js": "./io-web.js",
			"net": "net-shim"
		}
	}`)

	cache := NewCache(buildIndex(t, root), "browser")
	pkg := cache.GetPackage(manifest)

	tests := []struct {
		name        string
		in          string
		want        string
		wantEnabled bool
	}{
		{"rewritten relative", "./io.js", "./io-web.js", true},
		{"rewritten without extension", "./io", "./io-web.js", true},
		{"rewritten bare", "net", "net-shim", true},
		{"disabled", "./server.js", "", false},
		{"disabled without extension", "./server", "", false},
		{"passthrough", "./other.js", "./other.js", true},
		{"passthrough bare", "lodash", "lodash", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enabled, err := pkg.RedirectRequire(tt.in)
			if err != nil {
				t.Fatalf("RedirectRequire() error = %v", err)
			}
			if enabled != tt.wantEnabled || got != tt.want {
				t.Errorf("RedirectRequire(%q) = %q, %v; want %q, %v",
					tt.in, got, enabled, tt.want, tt.wantEnabled)
			}
		})
	}
}
