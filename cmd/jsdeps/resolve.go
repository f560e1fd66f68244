package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	resolvePlatform     string
	resolvePreferNative bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <from> <specifier>",
	Short: "Resolve a single dependency specifier",
	Long: `Resolves one specifier as if it were required from the given module and
prints the file it maps to. Exits non-zero when the specifier cannot be
resolved and would be dropped from a graph build.`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolvePlatform, "platform", "", "Target platform (e.g. ios, android)")
	resolveCmd.Flags().BoolVar(&resolvePreferNative, "prefer-native", false, "Probe .native.js before .js")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(resolvePlatform, resolvePreferNative)
	if err != nil {
		return err
	}

	from, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	m, err := eng.resolver.ResolveDependency(cmd.Context(), from, args[1])
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("unable to resolve %q from %s", args[1], args[0])
	}

	fmt.Println(m.Path)
	return nil
}
