// Package extract pulls the ordered list of dependency names out of a source
// file: import/export sources and require() arguments, in declaration order.
//
// Extraction is the only operation in the resolution pipeline that reads file
// contents, so it is globally throttled and its results are cached by content
// hash.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/semaphore"

	rerr "jsdeps/internal/errors"
	"jsdeps/internal/logging"
)

// DefaultConcurrency bounds simultaneous in-flight extractions system-wide.
const DefaultConcurrency = 32

// cacheSize is the number of per-file results kept across graph builds.
const cacheSize = 4096

// Options carries per-build extraction settings.
type Options struct {
	// Dev marks development builds; recorded for logging only, extraction is
	// identical in both modes.
	Dev bool
	// Platform is the active platform, recorded for logging.
	Platform string
}

// Extractor extracts dependency names from source files. Safe for concurrent
// use; callers beyond the concurrency bound queue in arrival order.
type Extractor struct {
	sem     *semaphore.Weighted
	cache   *lru.Cache[string, []string]
	parsers sync.Pool
	logger  *logging.Logger
}

// New creates an extractor with the given concurrency bound; zero or negative
// means DefaultConcurrency.
func New(concurrency int, logger *logging.Logger) *Extractor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	cache, _ := lru.New[string, []string](cacheSize)
	return &Extractor{
		sem:   semaphore.NewWeighted(int64(concurrency)),
		cache: cache,
		parsers: sync.Pool{
			New: func() interface{} { return sitter.NewParser() },
		},
		logger: logger,
	}
}

// Dependencies returns the dependency names declared by the file at path, in
// declaration order with duplicates removed. Files that are not JavaScript or
// TypeScript sources have no dependencies.
func (e *Extractor) Dependencies(ctx context.Context, path string, opts Options) ([]string, error) {
	lang := languageFor(path)
	if lang == nil {
		return nil, nil
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	source, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return nil, rerr.NewResolveError(rerr.ExtractFailed, "read "+path, err)
	}

	sum := xxh3.Hash128(source)
	key := fmt.Sprintf("%s:%016x%016x", path, sum.Hi, sum.Lo)
	if deps, ok := e.cache.Get(key); ok {
		return append([]string(nil), deps...), nil
	}

	deps, err := e.parse(ctx, source, lang)
	if err != nil {
		e.logger.Debug("Parser failed, falling back to line scan", map[string]interface{}{
			"file":     path,
			"platform": opts.Platform,
			"error":    err.Error(),
		})
		deps = scanLines(source)
	}

	e.cache.Add(key, deps)
	return append([]string(nil), deps...), nil
}

func (e *Extractor) parse(ctx context.Context, source []byte, lang *sitter.Language) ([]string, error) {
	parser := e.parsers.Get().(*sitter.Parser)
	defer e.parsers.Put(parser)

	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var ordered []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		ordered = append(ordered, name)
	}

	collectDeps(tree.RootNode(), source, add)
	return ordered, nil
}

// collectDeps walks the AST in source order, recording import/export sources
// and require()/import() arguments.
func collectDeps(node *sitter.Node, source []byte, add func(string)) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "import_statement", "export_statement":
		if src := node.ChildByFieldName("source"); src != nil {
			add(stringLiteral(src, source))
		}

	case "call_expression":
		fn := node.ChildByFieldName("function")
		if fn != nil && isRequireCall(fn, source) {
			if args := node.ChildByFieldName("arguments"); args != nil {
				for i := 0; i < int(args.NamedChildCount()); i++ {
					arg := args.NamedChild(i)
					if arg.Type() == "string" {
						add(stringLiteral(arg, source))
						break
					}
				}
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectDeps(node.Child(i), source, add)
	}
}

// isRequireCall matches require(...) and dynamic import(...).
func isRequireCall(fn *sitter.Node, source []byte) bool {
	switch fn.Type() {
	case "identifier":
		return string(source[fn.StartByte():fn.EndByte()]) == "require"
	case "import":
		return true
	default:
		return false
	}
}

// stringLiteral returns a string node's content without surrounding quotes.
func stringLiteral(node *sitter.Node, source []byte) string {
	text := string(source[node.StartByte():node.EndByte()])
	if len(text) >= 2 {
		switch text[0] {
		case '\'', '"', '`':
			return text[1 : len(text)-1]
		}
	}
	return text
}

func languageFor(path string) *sitter.Language {
	switch filepath.Ext(path) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	case ".ts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	default:
		return nil
	}
}
