package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"jsdeps/internal/resolver"
)

func sampleGraph() *resolver.Graph {
	return &resolver.Graph{
		Entry: "/app/entry.js",
		Modules: []resolver.GraphModule{
			{
				Path: "/app/entry.js",
				Dependencies: []resolver.GraphDependency{
					{Name: "./a", Path: "/app/a.js"},
				},
			},
			{Path: "/app/a.js", Dependencies: []resolver.GraphDependency{}},
		},
	}
}

func TestWriteGraphJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "graph.json")
	graphFormat = "json"
	graphOutput = out
	defer func() { graphFormat = "json"; graphOutput = "" }()

	if err := writeGraph(sampleGraph()); err != nil {
		t.Fatalf("writeGraph: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var g resolver.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if g.Entry != "/app/entry.js" || len(g.Modules) != 2 {
		t.Errorf("decoded graph = %+v", g)
	}
}

func TestWriteGraphZstd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "graph.json.zst")
	graphFormat = "json"
	graphOutput = out
	defer func() { graphOutput = "" }()

	if err := writeGraph(sampleGraph()); err != nil {
		t.Fatalf("writeGraph: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(data, nil)
	if err != nil {
		t.Fatalf("output is not a zstd frame: %v", err)
	}
	if !strings.Contains(string(plain), "/app/entry.js") {
		t.Errorf("decompressed output missing entry path")
	}
}
