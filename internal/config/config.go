// Package config loads and persists jsdeps project configuration.
// Configuration lives in .jsdeps/config.json at the project root and is read
// through viper so values can also arrive from JSDEPS_* environment variables.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete jsdeps configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	Platform string `json:"platform" mapstructure:"platform"`

	// PreferNativePlatform enables the ".native.js" probe between the
	// platform-specific and generic extension probes.
	PreferNativePlatform bool `json:"preferNativePlatform" mapstructure:"preferNativePlatform"`

	// Platforms lists the platform suffixes recognized in file names
	// (e.g. "index.ios.js").
	Platforms []string `json:"platforms" mapstructure:"platforms"`

	// IgnoreDirs are directory names excluded from the file index walk.
	IgnoreDirs []string `json:"ignoreDirs" mapstructure:"ignoreDirs"`

	// AssetExts are file extensions (without dot) treated as assets.
	AssetExts []string `json:"assetExts" mapstructure:"assetExts"`

	// MocksPattern, when non-empty, is the regular expression locating mock
	// files; its first capture group is the mocked name.
	MocksPattern string `json:"mocksPattern" mapstructure:"mocksPattern"`

	// StrictResolution makes unresolved dependencies fail the build instead
	// of being dropped from the graph.
	StrictResolution bool `json:"strictResolution" mapstructure:"strictResolution"`

	// ExtractConcurrency bounds simultaneous dependency-extraction file reads.
	ExtractConcurrency int `json:"extractConcurrency" mapstructure:"extractConcurrency"`

	// DeprecatedAssetMap maps legacy asset names directly to files, consulted
	// before any other resolution.
	DeprecatedAssetMap map[string]string `json:"deprecatedAssetMap,omitempty" mapstructure:"deprecatedAssetMap"`

	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// DefaultAssetExts are the asset extensions recognized out of the box.
var DefaultAssetExts = []string{
	"png", "jpg", "jpeg", "gif", "bmp", "webp", "svg", "psd",
	"ttf", "otf",
	"mp3", "wav", "aac", "m4a",
	"mp4", "mov", "webm",
	"html", "pdf",
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:              1,
		Platform:             "",
		PreferNativePlatform: false,
		Platforms:            []string{"ios", "android", "web", "native"},
		IgnoreDirs:           []string{".git", ".hg", ".jsdeps"},
		AssetExts:            append([]string(nil), DefaultAssetExts...),
		MocksPattern:         "",
		StrictResolution:     false,
		ExtractConcurrency:   32,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "human",
		},
	}
}

// Load reads configuration from <projectRoot>/.jsdeps/config.json.
// A missing config file yields the defaults, not an error.
func Load(projectRoot string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("platforms", def.Platforms)
	v.SetDefault("ignoreDirs", def.IgnoreDirs)
	v.SetDefault("assetExts", def.AssetExts)
	v.SetDefault("extractConcurrency", def.ExtractConcurrency)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".jsdeps"))
	v.SetEnvPrefix("JSDEPS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.ExtractConcurrency <= 0 {
		cfg.ExtractConcurrency = def.ExtractConcurrency
	}

	return &cfg, nil
}

// Save writes the configuration to <projectRoot>/.jsdeps/config.json
func (c *Config) Save(projectRoot string) error {
	dir := filepath.Join(projectRoot, ".jsdeps")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}
