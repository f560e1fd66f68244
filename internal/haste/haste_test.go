package haste

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jsdeps/internal/fastfs"
	"jsdeps/internal/logging"
)

func buildMap(t *testing.T, files map[string]string) *Map {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	ix, err := fastfs.Build(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	m, err := Build(ix, []string{"ios", "android"}, logging.NewDiscardLogger())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestGetModule(t *testing.T) {
	m := buildMap(t, map[string]string{
		"src/Banana.js":     "/**\n * @providesModule Banana\n */\nmodule.exports = 1;\n",
		"src/Banana.ios.js": "/**\n * @providesModule Banana\n */\nmodule.exports = 2;\n",
		"src/plain.js":      "module.exports = 3;\n",
		"src/late.js":       "var x = 1;\n/** @providesModule Late */\n",
	})

	t.Run("generic lookup", func(t *testing.T) {
		e := m.GetModule("Banana", "")
		if e == nil || e.Type != TypeModule {
			t.Fatal("Banana should resolve to a module entry")
		}
		if !strings.HasSuffix(e.Path, "/src/Banana.js") {
			t.Errorf("generic lookup got %q", e.Path)
		}
	})

	t.Run("platform variant wins", func(t *testing.T) {
		e := m.GetModule("Banana", "ios")
		if e == nil || !strings.HasSuffix(e.Path, "/src/Banana.ios.js") {
			t.Fatalf("ios lookup got %+v", e)
		}
	})

	t.Run("platform without variant falls back", func(t *testing.T) {
		e := m.GetModule("Banana", "android")
		if e == nil || !strings.HasSuffix(e.Path, "/src/Banana.js") {
			t.Fatalf("android lookup got %+v", e)
		}
	})

	t.Run("undeclared file is absent", func(t *testing.T) {
		if e := m.GetModule("plain", ""); e != nil {
			t.Errorf("plain should not be in the namespace, got %+v", e)
		}
	})

	t.Run("docblock must lead the file", func(t *testing.T) {
		if e := m.GetModule("Late", ""); e != nil {
			t.Errorf("late docblock should not register, got %+v", e)
		}
	})
}

func TestGetPackage(t *testing.T) {
	m := buildMap(t, map[string]string{
		"pkgs/fruit/package.json":             `{"name": "fruit", "main": "lib/index.js"}`,
		"pkgs/fruit/lib/index.js":             "module.exports = {};\n",
		"node_modules/vendored/package.json":  `{"name": "vendored"}`,
		"node_modules/vendored/Provided.js":   "/** @providesModule Provided */\n",
		"pkgs/anonymous/package.json":         `{"private": true}`,
		"pkgs/anonymous/index.js":             "module.exports = 0;\n",
	})

	e := m.GetPackage("fruit")
	if e == nil || e.Type != TypePackage {
		t.Fatal("fruit should resolve to a package entry")
	}
	if !strings.HasSuffix(e.Root, "/pkgs/fruit") {
		t.Errorf("Root = %q", e.Root)
	}

	if m.GetPackage("vendored") != nil {
		t.Error("node_modules packages must not join the namespace")
	}
	if m.GetModule("Provided", "") != nil {
		t.Error("node_modules modules must not join the namespace")
	}
	if m.GetPackage("") != nil {
		t.Error("nameless packages must not register")
	}
}

func TestDuplicateKeepsFirst(t *testing.T) {
	m := buildMap(t, map[string]string{
		"a/Dup.js": "/** @providesModule Dup */\n",
		"b/Dup.js": "/** @providesModule Dup */\n",
	})

	e := m.GetModule("Dup", "")
	if e == nil {
		t.Fatal("Dup should be registered")
	}
	// Registration order is nondeterministic under the concurrent scan, but
	// exactly one of the two files must have won.
	if !strings.HasSuffix(e.Path, "/a/Dup.js") && !strings.HasSuffix(e.Path, "/b/Dup.js") {
		t.Errorf("unexpected winner %q", e.Path)
	}
}
