package resolver

import (
	"context"
	"path/filepath"

	"jsdeps/internal/assets"
	rerr "jsdeps/internal/errors"
	"jsdeps/internal/modules"
)

// loadAsFile resolves a candidate path as a concrete file: assets through the
// variant pattern, source files through the extension probe order.
func (s *session) loadAsFile(ctx context.Context, from *modules.Module, path string) (*modules.Module, error) {
	if s.r.assetExts.IsAssetFile(path) {
		return s.loadAsset(from, path)
	}

	probes := []string{path}
	if s.r.platform != "" {
		probes = append(probes, path+"."+s.r.platform+".js")
	}
	if s.r.preferNative {
		probes = append(probes, path+".native.js")
	}
	probes = append(probes, path+".js", path+".json")

	for _, p := range probes {
		if s.r.index.FileExists(p) {
			return s.r.cache.GetModule(p), nil
		}
	}
	return nil, rerr.NewUnableToResolve(from.Path, path, "file does not exist")
}

// loadAsset resolves an asset request to the first on-disk variant of the
// requested name, honoring scale and platform suffixes. Directory listings
// are sorted, so ties pick the lexicographically first variant.
func (s *session) loadAsset(from *modules.Module, path string) (*modules.Module, error) {
	dir := filepath.ToSlash(filepath.Dir(path))
	if !s.r.index.DirExists(dir) {
		return nil, rerr.NewUnableToResolve(from.Path, path, "directory "+dir+" does not exist")
	}

	_, base, ext := assets.SplitAssetPath(path)
	pattern := assets.ResolutionPattern(base, s.r.platform, ext)
	matches := s.r.index.Matches(dir, pattern)
	if len(matches) == 0 {
		return nil, rerr.NewUnableToResolve(from.Path, path, "no asset variant on disk")
	}
	// Matches come back in sorted basename order; ties pick the first.
	return s.r.cache.GetAssetModule(matches[0]), nil
}

// loadAsDir resolves a candidate path as a directory: the manifest's main
// entry when a package.json is present, the index file otherwise.
func (s *session) loadAsDir(ctx context.Context, from *modules.Module, path string) (*modules.Module, error) {
	if !s.r.index.DirExists(path) {
		return nil, rerr.NewUnableToResolve(from.Path, path, "directory does not exist")
	}

	manifest := path + "/package.json"
	if s.r.index.FileExists(manifest) {
		pkg := s.r.cache.GetPackage(manifest)
		main, err := pkg.Main()
		if err != nil {
			return nil, err
		}
		return s.resolveFileOrDir(ctx, from, main)
	}

	return s.loadAsFile(ctx, from, path+"/index")
}
