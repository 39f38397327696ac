package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldertools/comparetree/internal/exporter"
	"github.com/foldertools/comparetree/internal/pipeline"
	"github.com/foldertools/comparetree/internal/progress"
	"github.com/foldertools/comparetree/internal/types"
)

// compareOptions binds every CompareConfig field in spec.md §6 to a flag,
// following cmd/dupedog/dedupe.go's dedupeOptions + Flags().*Var pattern.
type compareOptions struct {
	mode        string
	pairing     string
	topK        int
	maxPairs    int
	keyColumns  []string
	ignoreCols  []string
	tolerance   float64
	algorithm   string
	maxDiffSize string
	excludes    []string
	ignoreRegex string
	minSize     string
	maxFpSize   string
	workers     int
	outDir      string
	quiet       bool

	ignoreEOL        bool
	ignoreTrailingWS bool
	ignoreAllWS      bool
	ignoreCase       bool
	skipEmptyLines   bool
}

func newCompareCmd() *cobra.Command {
	opts := &compareOptions{
		mode: "auto", pairing: "all_vs_all", topK: 3, tolerance: 0.0001,
		algorithm: "diff", maxDiffSize: "1MiB", workers: 8, outDir: ".",
	}

	cmd := &cobra.Command{
		Use:   "compare <path1> <path2>",
		Short: "Compare two directory trees and write a run report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(args[0], args[1], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mode, "mode", opts.mode, "comparison mode: auto, text, structured")
	f.StringVar(&opts.pairing, "pairing", opts.pairing, "pairing strategy: same_path, same_name, all_vs_all")
	f.IntVar(&opts.topK, "top-k", opts.topK, "max candidates per left entry (all_vs_all only)")
	f.IntVar(&opts.maxPairs, "max-pairs", opts.maxPairs, "cap on total candidate pairs, all_vs_all only (0 = unbounded)")
	f.StringSliceVar(&opts.keyColumns, "key-columns", nil, "structured join key columns, in order")
	f.StringSliceVar(&opts.ignoreCols, "ignore-columns", nil, "structured columns to exclude from comparison")
	f.Float64Var(&opts.tolerance, "numeric-tolerance", opts.tolerance, "absolute/relative numeric tolerance")
	f.StringVar(&opts.algorithm, "algorithm", opts.algorithm, "text similarity algorithm")
	f.StringVar(&opts.maxDiffSize, "max-diff-size", opts.maxDiffSize, "cap on rendered diff size, e.g. 1MiB")
	f.StringSliceVar(&opts.excludes, "exclude", nil, "glob pattern to exclude (repeatable, supports **)")
	f.StringVar(&opts.ignoreRegex, "ignore-regex", "", "regex substituted with <IGNORED> before diffing")
	f.StringVar(&opts.minSize, "min-size", "0", "minimum file size to index, e.g. 1KiB")
	f.StringVar(&opts.maxFpSize, "max-fingerprint-size", "0", "skip SimHash and text line diff above this size (0 = no limit)")
	f.IntVar(&opts.workers, "workers", opts.workers, "max concurrent workers per stage")
	f.StringVarP(&opts.outDir, "output", "o", opts.outDir, "directory under which the run directory is created")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "disable the progress bar")

	f.BoolVar(&opts.ignoreEOL, "ignore-eol", false, "ignore end-of-line differences")
	f.BoolVar(&opts.ignoreTrailingWS, "ignore-trailing-ws", false, "ignore trailing whitespace")
	f.BoolVar(&opts.ignoreAllWS, "ignore-all-ws", false, "collapse all whitespace runs before comparing")
	f.BoolVar(&opts.ignoreCase, "ignore-case", false, "fold case before comparing")
	f.BoolVar(&opts.skipEmptyLines, "skip-empty-lines", false, "skip blank lines before comparing")

	return cmd
}

func runCompare(path1, path2 string, opts *compareOptions) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return &types.SetupError{Op: "parse options", Err: err}
	}

	var reporter progress.Reporter = progress.Noop{}
	if !opts.quiet {
		reporter = progress.NewBar()
	}

	engine := pipeline.New(cfg, reporter)
	result, err := engine.Run(path1, path2)
	if err != nil {
		return err
	}

	runDir, err := exporter.NewRunDir(opts.outDir)
	if err != nil {
		return err
	}
	if err := exporter.Export(runDir, result); err != nil {
		return err
	}

	drainErrors(engine.Errors)
	s := result.Summary
	fmt.Fprintf(os.Stdout, "%d pairs compared, %d identical, %d different, %d errors (avg similarity %.3f)\n",
		s.PairsCompared, s.IdenticalPairs, s.DifferentPairs, s.ErrorPairs, s.AverageSimilarity)
	fmt.Fprintln(os.Stdout, "report written to", runDir)
	return nil
}

// drainErrors prints every non-fatal error accumulated during the run,
// matching cmd/dupedog/util.go's drainErrors.
func drainErrors(errs []error) {
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
}
