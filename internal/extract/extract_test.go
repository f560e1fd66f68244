package extract

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"jsdeps/internal/logging"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDependenciesRequire(t *testing.T) {
	path := writeSource(t, "a.js", `
const fs = require('fs');
const local = require('./local');
const { x } = require('../up/x');
require('side-effect');
`)

	e := New(0, logging.NewDiscardLogger())
	deps, err := e.Dependencies(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Dependencies() error = %v", err)
	}

	want := []string{"fs", "./local", "../up/x", "side-effect"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("deps = %v, want %v", deps, want)
	}
}

func TestDependenciesImports(t *testing.T) {
	path := writeSource(t, "a.js", `
import React from 'react';
import { View } from 'react-native';
import './polyfill';
export { helper } from './helpers';
export * from './all';
const lazy = () => import('./lazy');
`)

	e := New(0, logging.NewDiscardLogger())
	deps, err := e.Dependencies(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"react", "react-native", "./polyfill", "./helpers", "./all", "./lazy"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("deps = %v, want %v", deps, want)
	}
}

func TestDependenciesDedupe(t *testing.T) {
	path := writeSource(t, "a.js", `
const a = require('./x');
const b = require('./x');
import './x';
`)

	e := New(0, logging.NewDiscardLogger())
	deps, err := e.Dependencies(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"./x"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("deps = %v, want %v", deps, want)
	}
}

func TestDependenciesTypeScript(t *testing.T) {
	path := writeSource(t, "a.ts", `
import { thing } from './thing';
const dyn = require('./dyn');
`)

	e := New(0, logging.NewDiscardLogger())
	deps, err := e.Dependencies(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"./thing", "./dyn"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("deps = %v, want %v", deps, want)
	}
}

func TestDependenciesNonSource(t *testing.T) {
	path := writeSource(t, "data.json", `{"key": "require('./nope')"}`)

	e := New(0, logging.NewDiscardLogger())
	deps, err := e.Dependencies(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if deps != nil {
		t.Errorf("non-source file should have no deps, got %v", deps)
	}
}

func TestDependenciesMissingFile(t *testing.T) {
	e := New(0, logging.NewDiscardLogger())
	if _, err := e.Dependencies(context.Background(), "/does/not/exist.js", Options{}); err == nil {
		t.Error("missing file should error")
	}
}

func TestDependenciesCached(t *testing.T) {
	path := writeSource(t, "a.js", `require('./once');`)

	e := New(0, logging.NewDiscardLogger())
	first, err := e.Dependencies(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Dependencies(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}

	// Callers own the returned slice.
	second[0] = "mutated"
	third, _ := e.Dependencies(context.Background(), path, Options{})
	if third[0] != "./once" {
		t.Error("cache must not observe caller mutations")
	}
}

func TestScanLines(t *testing.T) {
	deps := scanLines([]byte(`
import a from 'mod-a';
export { b } from "./mod-b";
const c = require('./mod-c');
const later = import('./mod-d');
not an import line
`))

	want := []string{"mod-a", "./mod-b", "./mod-c", "./mod-d"}
	if !reflect.DeepEqual(deps, want) {
		t.Errorf("scanLines() = %v, want %v", deps, want)
	}
}

func TestConcurrentExtraction(t *testing.T) {
	e := New(4, logging.NewDiscardLogger())

	paths := make([]string, 16)
	for i := range paths {
		paths[i] = writeSource(t, "f.js", `require('./dep');`)
	}

	errs := make(chan error, len(paths))
	for _, p := range paths {
		p := p
		go func() {
			_, err := e.Dependencies(context.Background(), p, Options{})
			errs <- err
		}()
	}
	for range paths {
		if err := <-errs; err != nil {
			t.Errorf("concurrent extraction error: %v", err)
		}
	}
}
