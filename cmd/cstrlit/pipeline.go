package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cstrlit/internal/diag"
	"cstrlit/internal/diagfmt"
	"cstrlit/internal/driver"
	"cstrlit/internal/observ"
	"cstrlit/internal/project"
	"cstrlit/internal/source"
)

type globalOptions struct {
	quiet          bool
	timings        bool
	maxDiagnostics int
	color          bool
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	flags := cmd.Root().PersistentFlags()
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return globalOptions{}, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return globalOptions{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return globalOptions{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return globalOptions{
		quiet:          quiet,
		timings:        timings,
		maxDiagnostics: maxDiagnostics,
		color:          useColor(cmd),
	}, nil
}

// pipelineResult is what check and build share: the manifest, every
// diagnostic and the per-literal outcomes.
type pipelineResult struct {
	manifest *project.Manifest
	fs       *source.FileSet
	inputs   []driver.Input
	report   *driver.Report
	bag      *diag.Bag
	timer    *observ.Timer
}

// ok reports whether every declared literal made it through.
func (r *pipelineResult) ok() bool {
	return !r.bag.HasErrors() && r.report.OK() && len(r.inputs) == len(r.manifest.Config.Literals)
}

type pipelineOptions struct {
	jobs  int
	ui    bool
	title string
}

func runPipeline(cmd *cobra.Command, path string, global globalOptions, opts pipelineOptions) (*pipelineResult, error) {
	timer := observ.NewTimer()

	load := timer.Begin("load")
	manifestPath, err := project.Locate(path)
	if err != nil {
		return nil, err
	}
	manifest, err := project.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	fs := source.NewFileSetWithBase(manifest.Root)
	inputs, frontBag := driver.FromManifest(fs, manifest)
	timer.End(load, fmt.Sprintf("%d literals", len(inputs)))
	cliLogger.Debug("manifest loaded", zap.String("path", manifest.Path), zap.Int("literals", len(inputs)))

	req := driver.Request{
		Literals:       inputs,
		Jobs:           opts.jobs,
		MaxDiagnostics: global.maxDiagnostics,
		Timer:          timer,
	}
	var report *driver.Report
	if opts.ui && len(inputs) > 0 {
		report, err = runWithUI(cmd.Context(), opts.title+" "+manifest.Config.Package.Name, req)
	} else {
		report, err = driver.Run(cmd.Context(), req)
	}
	if err != nil {
		return nil, err
	}

	bag := mergeDiagnostics(global.maxDiagnostics, frontBag, report.Bag)

	return &pipelineResult{
		manifest: manifest,
		fs:       fs,
		inputs:   inputs,
		report:   report,
		bag:      bag,
		timer:    timer,
	}, nil
}

// mergeDiagnostics collects the bags into one sorted bag without duplicates.
func mergeDiagnostics(limit int, bags ...*diag.Bag) *diag.Bag {
	bag := diag.NewBag(limit)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for _, src := range bags {
		if src == nil {
			continue
		}
		for _, d := range src.Items() {
			rep.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
		}
	}
	bag.Sort()
	return bag
}

type diagFormat string

const (
	diagFormatPretty diagFormat = "pretty"
	diagFormatJSON   diagFormat = "json"
	diagFormatShort  diagFormat = "short"
)

func readDiagFormat(value string) (diagFormat, error) {
	switch f := diagFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case diagFormatPretty, diagFormatJSON, diagFormatShort:
		return f, nil
	case "":
		return diagFormatPretty, nil
	}
	return "", fmt.Errorf("unsupported diagnostics format %q (expected pretty|json|short)", value)
}

type printOptions struct {
	format    diagFormat
	withNotes bool
	fullPath  bool
	color     bool
	timer     *observ.Timer // non-nil when --timings is set
	path      string
}

func printDiagnostics(out io.Writer, bag *diag.Bag, fs *source.FileSet, opts printOptions) error {
	pathMode := diagfmt.PathModeRelative
	if opts.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch opts.format {
	case diagFormatJSON:
		if opts.timer != nil {
			driver.AppendTimings(bag, opts.timer, opts.path)
		}
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     opts.withNotes,
		})
	case diagFormatShort:
		if err := diagfmt.Short(out, bag, fs, opts.withNotes); err != nil {
			return err
		}
	default:
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   0,
			PathMode:  pathMode,
			ShowNotes: opts.withNotes,
		})
	}
	if opts.timer != nil {
		fmt.Fprint(os.Stderr, opts.timer.Summary())
	}
	return nil
}
