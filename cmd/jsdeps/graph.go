package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"jsdeps/internal/fastfs"
	"jsdeps/internal/resolver"
)

var (
	graphEntry        string
	graphPlatform     string
	graphDev          bool
	graphNoRecursive  bool
	graphPreferNative bool
	graphMocks        string
	graphFormat       string
	graphOutput       string
	graphWatch        bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Collect the ordered dependency graph of an entry module",
	Long: `Resolves the entry module's dependencies recursively and prints the graph:
modules in discovery order, each module's resolved dependencies in declaration
order. Unresolvable dependencies are dropped unless strict resolution is on.`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVar(&graphEntry, "entry", "", "Entry module path (required)")
	graphCmd.Flags().StringVar(&graphPlatform, "platform", "", "Target platform (e.g. ios, android)")
	graphCmd.Flags().BoolVar(&graphDev, "dev", false, "Development build")
	graphCmd.Flags().BoolVar(&graphNoRecursive, "no-recursive", false, "Only collect the entry's direct dependencies")
	graphCmd.Flags().BoolVar(&graphPreferNative, "prefer-native", false, "Probe .native.js before .js")
	graphCmd.Flags().StringVar(&graphMocks, "mocks", "", "Mock file pattern; first capture group is the mocked name")
	graphCmd.Flags().StringVar(&graphFormat, "format", "json", "Output format: json or yaml")
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Output file (stdout if empty; .zst enables compression)")
	graphCmd.Flags().BoolVar(&graphWatch, "watch", false, "Rebuild the graph when files change")
	_ = graphCmd.MarkFlagRequired("entry")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	if graphFormat != "json" && graphFormat != "yaml" {
		return fmt.Errorf("unknown format %q (want json or yaml)", graphFormat)
	}

	eng, err := newEngine(graphPlatform, graphPreferNative)
	if err != nil {
		return err
	}

	build := func(ctx context.Context) error {
		resp, err := eng.resolver.GetOrderedDependencies(ctx, resolver.GraphOptions{
			EntryPath:    graphEntry,
			MocksPattern: graphMocks,
			Recursive:    !graphNoRecursive,
			Dev:          graphDev,
			OnProgress:   progressPrinter(),
			Response:     resolver.NewResponse(),
		})
		if err != nil {
			return err
		}
		return writeGraph(resp.Graph())
	}

	ctx := cmd.Context()
	if err := build(ctx); err != nil {
		return err
	}

	if !graphWatch {
		return nil
	}

	rebuild := func() {
		if err := eng.refresh(); err != nil {
			eng.logger.Error("Refresh failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		if err := build(ctx); err != nil {
			eng.logger.Error("Rebuild failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	watcher, err := fastfs.Watch(eng.index, eng.logger, rebuild)
	if err != nil {
		return err
	}
	defer watcher.Close()

	eng.logger.Info("Watching for changes", map[string]interface{}{
		"root": eng.root,
	})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

// progressPrinter reports build progress on stderr when it is a terminal.
func progressPrinter() func(finished, total int) {
	info, err := os.Stderr.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return nil
	}
	green := color.New(color.FgGreen)
	return func(finished, total int) {
		green.Fprintf(os.Stderr, "\rResolving modules %d/%d", finished, total)
		if finished == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}

// writeGraph serializes the graph to the selected destination. A .zst output
// path gets zstd compression around the chosen format.
func writeGraph(g *resolver.Graph) error {
	var out io.Writer = os.Stdout
	var closers []io.Closer

	if graphOutput != "" {
		f, err := os.Create(graphOutput)
		if err != nil {
			return err
		}
		closers = append(closers, f)
		out = f

		if strings.HasSuffix(graphOutput, ".zst") {
			zw, err := zstd.NewWriter(f)
			if err != nil {
				return err
			}
			closers = append(closers, zw)
			out = zw
		}
	}

	var encodeErr error
	switch graphFormat {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			encodeErr = err
		} else {
			encodeErr = enc.Close()
		}
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		encodeErr = enc.Encode(g)
	}

	// Close the compressor before the file so the frame is flushed.
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil && encodeErr == nil {
			encodeErr = err
		}
	}
	return encodeErr
}
