package resolver

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	rerr "jsdeps/internal/errors"
	"jsdeps/internal/extract"
	"jsdeps/internal/mocks"
	"jsdeps/internal/modules"
	"jsdeps/internal/paths"
)

// GraphOptions configures one dependency graph build.
type GraphOptions struct {
	// EntryPath is the entry module, absolute or relative to the index root.
	EntryPath string
	// MocksPattern, when non-empty, enables mock collection and injection.
	MocksPattern string
	// Recursive controls whether dependencies of dependencies are visited.
	Recursive bool
	// Dev marks a development build.
	Dev bool
	// OnProgress receives (finished, total) after each module completes.
	// Both counters only grow. Nil disables reporting.
	OnProgress func(finished, total int)
	// Response, when non-nil, is the accumulator to append into.
	Response *Response
}

// GetOrderedDependencies walks the dependency graph breadth-first from the
// entry module. Modules appear in discovery order, each module's resolved
// pairs in declaration order; identical file contents are visited once.
func (r *Resolver) GetOrderedDependencies(ctx context.Context, opts GraphOptions) (*Response, error) {
	buildID := uuid.New().String()
	start := time.Now()

	entry := opts.EntryPath
	if !filepath.IsAbs(filepath.FromSlash(entry)) {
		entry = r.index.Root() + "/" + entry
	}
	entry = paths.Normalize(entry)
	if !r.index.FileExists(entry) {
		return nil, rerr.NewResolveError(rerr.EntryNotFound, entry, nil)
	}

	r.logger.Info("Starting graph build", map[string]interface{}{
		"buildId":  buildID,
		"entry":    entry,
		"platform": r.platform,
		"dev":      opts.Dev,
	})

	resp := opts.Response
	if resp == nil {
		resp = NewResponse()
	}

	var mockTable *mocks.Table
	if opts.MocksPattern != "" {
		var err error
		mockTable, err = mocks.NewTable(r.index, opts.MocksPattern)
		if err != nil {
			return nil, err
		}
	}
	attached := make(map[string]bool)

	s := newSession(r, entry)
	extractOpts := extract.Options{Dev: opts.Dev, Platform: r.platform}

	entryModule := r.cache.GetModule(entry)
	entryHash, err := entryModule.Hash()
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{entryHash: true}
	queue := []*modules.Module{entryModule}
	resp.addModule(entryModule)

	finished, total := 0, 1

	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]

		pairs, err := s.modulePairs(ctx, m, extractOpts, mockTable, attached)
		if err != nil {
			return nil, err
		}
		resp.setDependencies(m, pairs)

		for _, p := range pairs {
			hash, err := p.Module.Hash()
			if err != nil {
				return nil, err
			}
			if visited[hash] {
				continue
			}
			visited[hash] = true
			resp.addModule(p.Module)
			total++
			if opts.Recursive {
				queue = append(queue, p.Module)
			}
		}

		finished++
		if opts.OnProgress != nil {
			opts.OnProgress(finished, total)
		}
	}

	if mockTable != nil {
		resp.Mocks = mockTable.All()
	}

	r.logger.Info("Graph build finished", map[string]interface{}{
		"buildId":  buildID,
		"modules":  len(resp.Modules),
		"duration": time.Since(start).String(),
	})
	return resp, nil
}

// modulePairs extracts a module's dependency names and resolves them
// concurrently, keeping results in declaration order. Tolerated-unresolved
// edges are dropped unless a matching mock substitutes for them; the module's
// own mock, when present and unclaimed, is appended as an extra edge.
func (s *session) modulePairs(ctx context.Context, m *modules.Module, extractOpts extract.Options, mockTable *mocks.Table, attached map[string]bool) ([]ResolvedPair, error) {
	var names []string
	if !m.IsAsset() {
		var err error
		names, err = s.r.extractor.Dependencies(ctx, m.Path, extractOpts)
		if err != nil {
			return nil, rerr.NewResolveError(rerr.ExtractFailed, m.Path, err)
		}
	}

	targets := make([]*modules.Module, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			target, err := s.resolveDependency(gctx, m, name)
			if err != nil {
				return err
			}
			targets[i] = target
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pairs := make([]ResolvedPair, 0, len(names))
	for i, name := range names {
		target := targets[i]
		if target == nil {
			// A mock takes the place of an unresolved edge once.
			if mockTable != nil && !attached[name] {
				if path, ok := mockTable.Path(name); ok {
					attached[name] = true
					pairs = append(pairs, ResolvedPair{Name: name, Module: s.r.cache.GetModule(path)})
					continue
				}
			}
			continue
		}
		pairs = append(pairs, ResolvedPair{Name: name, Module: target})
	}

	if mockTable != nil {
		pairs = s.appendOwnMocks(m, pairs, mockTable, attached)
	}
	return pairs, nil
}

// appendOwnMocks adds edges for mocks registered under the module's own short
// name or its package name, so a mocked module pulls its mock into the graph
// even when nothing requires it by that name.
func (s *session) appendOwnMocks(m *modules.Module, pairs []ResolvedPair, mockTable *mocks.Table, attached map[string]bool) []ResolvedPair {
	candidates := []string{m.ShortName()}
	if pkg := m.Package(); pkg != nil {
		if name, err := pkg.Name(); err == nil && name != "" {
			candidates = append(candidates, name)
		}
	}
	for _, name := range candidates {
		if attached[name] {
			continue
		}
		path, ok := mockTable.Path(name)
		if !ok {
			continue
		}
		attached[name] = true
		pairs = append(pairs, ResolvedPair{Name: name, Module: s.r.cache.GetModule(path)})
	}
	return pairs
}
