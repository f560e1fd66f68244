// Package resolver maps dependency names to files on disk and collects the
// ordered dependency graph of an entry module.
//
// Resolution runs a fixed strategy order: the per-package redirect table
// first, then the haste namespace for eligible bare specifiers, then node
// resolution (relative paths and the ascending node_modules search), with
// file-then-directory probing at every candidate path.
package resolver

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"jsdeps/internal/assets"
	rerr "jsdeps/internal/errors"
	"jsdeps/internal/extract"
	"jsdeps/internal/fastfs"
	"jsdeps/internal/haste"
	"jsdeps/internal/logging"
	"jsdeps/internal/modules"
	"jsdeps/internal/paths"
)

// Options configures a Resolver.
type Options struct {
	Index     *fastfs.Index
	Cache     *modules.Cache
	Haste     *haste.Map
	Extractor *extract.Extractor

	// Platform is the active platform suffix probed between the exact path
	// and the generic ".js" extension.
	Platform string
	// PreferNativePlatform enables the ".native.js" probe.
	PreferNativePlatform bool
	// AssetExts lists the extensions treated as assets.
	AssetExts []string

	// DeprecatedAssetMap maps legacy asset names directly to files. It is
	// consulted before the memo and the pipeline.
	DeprecatedAssetMap map[string]string

	// ShouldThrowOnUnresolved decides, per failed edge, whether the failure
	// propagates or the edge is silently dropped. Nil tolerates everything.
	ShouldThrowOnUnresolved func(entryPath, platform string) bool

	Logger *logging.Logger
}

// Resolver resolves dependency names and builds dependency graphs. One
// resolver may serve many graph builds; per-build state lives in a session.
type Resolver struct {
	index     *fastfs.Index
	cache     *modules.Cache
	haste     *haste.Map
	extractor *extract.Extractor

	platform     string
	preferNative bool
	assetExts    assets.ExtSet

	deprecatedAssets map[string]string
	shouldThrow      func(entryPath, platform string) bool

	logger *logging.Logger
}

// New creates a resolver from options.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	shouldThrow := opts.ShouldThrowOnUnresolved
	if shouldThrow == nil {
		shouldThrow = func(string, string) bool { return false }
	}
	return &Resolver{
		index:            opts.Index,
		cache:            opts.Cache,
		haste:            opts.Haste,
		extractor:        opts.Extractor,
		platform:         opts.Platform,
		preferNative:     opts.PreferNativePlatform,
		assetExts:        assets.NewExtSet(opts.AssetExts),
		deprecatedAssets: opts.DeprecatedAssetMap,
		shouldThrow:      shouldThrow,
		logger:           logger,
	}
}

// ResolveDependency resolves a single dependency name from a module, outside
// any graph build. Returns nil without error when the failure is tolerated by
// the unresolved policy.
func (r *Resolver) ResolveDependency(ctx context.Context, fromPath, name string) (*modules.Module, error) {
	from := r.cache.GetModule(fromPath)
	s := newSession(r, from.Path)
	return s.resolveDependency(ctx, from, name)
}

// session holds the state of one resolution session: the memo and the entry
// the unresolved policy is evaluated against. Constructed fresh per build so
// stale edges never leak across independent graph builds.
type session struct {
	r         *Resolver
	entryPath string

	mu   sync.Mutex
	memo map[string]*modules.Module // stored nil = tolerated unresolved
}

func newSession(r *Resolver, entryPath string) *session {
	return &session{
		r:    r,
		memo: make(map[string]*modules.Module),

		entryPath: entryPath,
	}
}

// resolveDependency is the memoized entry point for one edge. The memo is
// cache-aside: two concurrent requests for the same key may both compute, and
// the second write is an idempotent overwrite.
func (s *session) resolveDependency(ctx context.Context, from *modules.Module, name string) (*modules.Module, error) {
	// Legacy asset names bypass both the memo and the pipeline.
	if path, ok := s.r.deprecatedAssets[name]; ok {
		return s.r.cache.GetAssetModule(path), nil
	}

	key := paths.Normalize(from.Path) + ":" + name

	s.mu.Lock()
	if m, ok := s.memo[key]; ok {
		s.mu.Unlock()
		return m, nil
	}
	s.mu.Unlock()

	m, err := s.resolve(ctx, from, name)
	if err != nil {
		if !rerr.IsUnableToResolve(err) {
			return nil, err
		}
		if s.r.shouldThrow(s.entryPath, s.r.platform) {
			return nil, err
		}
		s.r.logger.Debug("Tolerating unresolved dependency", map[string]interface{}{
			"from": from.Path,
			"name": name,
		})
		m = nil
	}

	s.mu.Lock()
	s.memo[key] = m
	s.mu.Unlock()
	return m, nil
}

// resolve runs the ordered strategy list for one edge.
func (s *session) resolve(ctx context.Context, from *modules.Module, name string) (*modules.Module, error) {
	type strategy func(context.Context, *modules.Module, string) (*modules.Module, error)

	var strategies []strategy
	if paths.IsBareSpecifier(name) && !paths.InsideNodeModules(from.Path) {
		strategies = []strategy{s.resolveHaste, s.resolveNode}
	} else {
		strategies = []strategy{s.resolveNode}
	}

	var lastErr error
	for _, strat := range strategies {
		m, err := strat(ctx, from, name)
		if err == nil {
			return m, nil
		}
		if !rerr.IsUnableToResolve(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// redirect rewrites a specifier through the requesting module's package, if
// any. Disabled specifiers surface as UnableToResolve.
func (s *session) redirect(from *modules.Module, name string) (string, error) {
	pkg := from.Package()
	if pkg == nil {
		return name, nil
	}
	to, enabled, err := pkg.RedirectRequire(name)
	if err != nil {
		return "", err
	}
	if !enabled {
		return "", rerr.NewUnableToResolve(from.Path, name, "disabled by "+pkg.ManifestPath)
	}
	return to, nil
}

// resolveHaste resolves a bare specifier against the global namespace: an
// exact module match first, then a package match on the name's ancestor
// components from most to least specific.
func (s *session) resolveHaste(ctx context.Context, from *modules.Module, origName string) (*modules.Module, error) {
	name, err := s.redirect(from, paths.NormalizeSpecifier(origName))
	if err != nil {
		return nil, err
	}

	if entry := s.r.haste.GetModule(name, s.r.platform); entry != nil {
		return s.r.cache.GetModule(entry.Path), nil
	}

	parts := strings.Split(name, "/")
	for i := len(parts); i >= 1; i-- {
		pkg := s.r.haste.GetPackage(strings.Join(parts[:i], "/"))
		if pkg == nil {
			continue
		}
		candidate := pkg.Root
		if rest := parts[i:]; len(rest) > 0 {
			candidate += "/" + strings.Join(rest, "/")
		}
		return s.resolveFileOrDir(ctx, from, paths.Normalize(candidate))
	}

	return nil, rerr.NewUnableToResolve(from.Path, origName, "unknown haste module "+name)
}

// resolveNode resolves relative and absolute specifiers against the
// requester's directory, and bare specifiers through the ascending
// node_modules search: closest node_modules first, file-then-directory at
// each level, first success wins.
func (s *session) resolveNode(ctx context.Context, from *modules.Module, origName string) (*modules.Module, error) {
	name, err := s.redirect(from, origName)
	if err != nil {
		return nil, err
	}

	if paths.IsAbsoluteSpecifier(name) {
		return s.resolveFileOrDir(ctx, from, paths.Normalize(name))
	}

	fromDir := filepath.ToSlash(filepath.Dir(from.Path))

	if paths.IsRelativeSpecifier(name) {
		base := fromDir
		if paths.IsBareSpecifier(origName) {
			// The redirect turned a bare name relative; anchor it inside the
			// enclosing vendored package when there is one.
			if pkgDir, ok := paths.EnclosingPackageDir(from.Path); ok {
				base = pkgDir
			}
		}
		candidate := paths.Normalize(filepath.Join(filepath.FromSlash(base), filepath.FromSlash(name)))
		return s.resolveFileOrDir(ctx, from, candidate)
	}

	for _, ancestor := range paths.Ancestors(from.Path) {
		if filepath.Base(ancestor) == "node_modules" {
			continue
		}
		candidate := paths.Normalize(ancestor + "/node_modules/" + name)
		m, err := s.resolveFileOrDir(ctx, from, candidate)
		if err == nil {
			return m, nil
		}
		if !rerr.IsUnableToResolve(err) {
			return nil, err
		}
	}

	if isNodeBuiltin(name) {
		return nil, rerr.NewUnableToResolve(from.Path, origName, "Node standard library module")
	}
	// The failure is the original not-found condition, not the error of the
	// last candidate tried.
	return nil, rerr.NewUnableToResolve(from.Path, origName,
		"not found in any node_modules directory up from "+fromDir)
}

// resolveFileOrDir probes a candidate path as a file first and as a directory
// only when file resolution failed with the tolerated error kind.
func (s *session) resolveFileOrDir(ctx context.Context, from *modules.Module, candidate string) (*modules.Module, error) {
	m, err := s.loadAsFile(ctx, from, candidate)
	if err == nil {
		return m, nil
	}
	if !rerr.IsUnableToResolve(err) {
		return nil, err
	}
	return s.loadAsDir(ctx, from, candidate)
}
