package main

import (
	"jsdeps/internal/version"

	"github.com/spf13/cobra"
)

var (
	// rootFlag is the CLI --root flag value
	rootFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
	// logFormatFlag overrides the configured log format
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "jsdeps",
	Short: "jsdeps - JavaScript dependency graph resolver",
	Long: `jsdeps resolves JavaScript dependency specifiers the way a bundler does
(haste namespace, node_modules search, platform extensions, assets, package.json
redirects) and collects the ordered dependency graph of an entry module.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("jsdeps version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Project root directory")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json (default from config)")
}
