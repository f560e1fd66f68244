package main

import (
	"fmt"
	"path/filepath"

	"jsdeps/internal/config"
	rerr "jsdeps/internal/errors"
	"jsdeps/internal/extract"
	"jsdeps/internal/fastfs"
	"jsdeps/internal/haste"
	"jsdeps/internal/logging"
	"jsdeps/internal/modules"
	"jsdeps/internal/resolver"
)

// engine bundles everything one command invocation needs: the file index is
// built once and shared by the haste map, the module cache, and the resolver.
type engine struct {
	root     string
	cfg      *config.Config
	logger   *logging.Logger
	index    *fastfs.Index
	cache    *modules.Cache
	resolver *resolver.Resolver

	platform     string
	preferNative bool
}

// refresh rebuilds everything derived from file contents over the live index.
// Used between watch-mode rebuilds: the index tracks the file system
// incrementally, but memoized hashes and parsed manifests go stale.
func (e *engine) refresh() error {
	hasteMap, err := haste.Build(e.index, e.cfg.Platforms, e.logger)
	if err != nil {
		return err
	}
	e.cache = modules.NewCache(e.index, "browser")
	e.resolver = newResolver(e.cfg, e.index, e.cache, hasteMap, e.platform, e.preferNative, e.logger)
	return nil
}

// newLoggerFromConfig builds the command logger, letting the --log-level and
// --log-format flags override the configured values.
func newLoggerFromConfig(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := logging.Format(cfg.Logging.Format)
	if logFormatFlag != "" {
		format = logging.Format(logFormatFlag)
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(level),
	})
}

// newEngine loads configuration, builds the file index, and wires the
// resolver. platform overrides the configured platform when non-empty.
func newEngine(platform string, preferNative bool) (*engine, error) {
	root, err := filepath.Abs(rootFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := newLoggerFromConfig(cfg)

	if platform == "" {
		platform = cfg.Platform
	}

	index, err := fastfs.Build(root, cfg.IgnoreDirs)
	if err != nil {
		return nil, rerr.NewResolveError(rerr.IndexUnavailable, root, err)
	}
	logger.Debug("File index built", map[string]interface{}{
		"root":  root,
		"files": len(index.AllFiles()),
	})

	hasteMap, err := haste.Build(index, cfg.Platforms, logger)
	if err != nil {
		return nil, err
	}

	cache := modules.NewCache(index, "browser")
	res := newResolver(cfg, index, cache, hasteMap, platform, preferNative, logger)

	return &engine{
		root:         filepath.ToSlash(root),
		cfg:          cfg,
		logger:       logger,
		index:        index,
		cache:        cache,
		resolver:     res,
		platform:     platform,
		preferNative: preferNative,
	}, nil
}

func newResolver(cfg *config.Config, index *fastfs.Index, cache *modules.Cache, hasteMap *haste.Map, platform string, preferNative bool, logger *logging.Logger) *resolver.Resolver {
	var shouldThrow func(string, string) bool
	if cfg.StrictResolution {
		shouldThrow = func(string, string) bool { return true }
	}

	return resolver.New(resolver.Options{
		Index:                   index,
		Cache:                   cache,
		Haste:                   hasteMap,
		Extractor:               extract.New(cfg.ExtractConcurrency, logger),
		Platform:                platform,
		PreferNativePlatform:    preferNative || cfg.PreferNativePlatform,
		AssetExts:               cfg.AssetExts,
		DeprecatedAssetMap:      cfg.DeprecatedAssetMap,
		ShouldThrowOnUnresolved: shouldThrow,
		Logger:                  logger,
	})
}
