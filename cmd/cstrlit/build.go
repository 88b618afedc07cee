package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cstrlit/internal/bundle"
	"cstrlit/internal/emit"
	"cstrlit/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Encode a project and write the generated file",
	Long: `Run check and, when every literal encodes cleanly, write
<out>/<package><ext> in the selected format (c, go, llvm, asm, json) or a
msgpack bundle (<package>.ctb). If any literal fails nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("format", "", "output format overriding [output].format (c|go|llvm|asm|json|bundle)")
	buildCmd.Flags().String("out", "", "output directory overriding [output].dir")
	buildCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().String("diagnostics", "pretty", "diagnostics format (pretty|json|short)")
	buildCmd.Flags().Bool("no-comments", false, "omit source text comments in generated code")
}

func runBuild(cmd *cobra.Command, args []string) error {
	global, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	outFlag, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	diagFlag, err := cmd.Flags().GetString("diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics flag: %w", err)
	}
	dformat, err := readDiagFormat(diagFlag)
	if err != nil {
		return err
	}
	noComments, err := cmd.Flags().GetBool("no-comments")
	if err != nil {
		return fmt.Errorf("failed to get no-comments flag: %w", err)
	}

	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	useUI := shouldUseTUI(mode) && !global.quiet && dformat == diagFormatPretty
	res, err := runPipeline(cmd, path, global, pipelineOptions{jobs: jobs, ui: useUI, title: "build"})
	if err != nil {
		return err
	}

	format := strings.ToLower(strings.TrimSpace(formatFlag))
	if format == "" {
		format = res.manifest.Config.Output.Format
	}
	if !slices.Contains(project.Formats, format) {
		return fmt.Errorf("unknown format %q (expected %s)", format, strings.Join(project.Formats, "|"))
	}
	outDir := res.manifest.OutputDir()
	if outFlag != "" {
		outDir = outFlag
	}

	if !res.ok() {
		opts := printOptions{format: dformat, withNotes: true, color: global.color, path: res.manifest.Path}
		if global.timings {
			opts.timer = res.timer
		}
		if err := printDiagnostics(cmd.ErrOrStderr(), res.bag, res.fs, opts); err != nil {
			return err
		}
		return errDiagnostics
	}

	phase := res.timer.Begin("emit")
	target, err := writeOutput(res, format, outDir, !noComments)
	res.timer.End(phase, format)
	if err != nil {
		return err
	}

	// предупреждения печатаем, но сборку не роняем
	if res.bag.Len() > 0 || global.timings {
		opts := printOptions{format: dformat, withNotes: true, color: global.color, path: res.manifest.Path}
		if global.timings {
			opts.timer = res.timer
		}
		if err := printDiagnostics(cmd.ErrOrStderr(), res.bag, res.fs, opts); err != nil {
			return err
		}
	}
	if !global.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d literals)\n", displayPath(target), len(res.inputs))
	}
	return nil
}

// writeOutput renders every artifact and returns the written path.
func writeOutput(res *pipelineResult, format, outDir string, comments bool) (string, error) {
	m := res.manifest
	name := m.Config.Package.Name

	if format == "bundle" {
		payload := &bundle.Payload{Package: name}
		for _, out := range res.report.Results {
			payload.Entries = append(payload.Entries, bundle.NewEntry(out.Name, out.Artifact, out.Digest))
		}
		target := filepath.Join(outDir, name+bundle.Ext)
		if err := bundle.Write(target, payload); err != nil {
			return "", err
		}
		return target, nil
	}

	f, err := emit.ParseFormat(format)
	if err != nil {
		return "", err
	}
	entries := make([]emit.Entry, len(res.report.Results))
	for i, out := range res.report.Results {
		entries[i] = emit.Entry{Name: out.Name, Artifact: out.Artifact, Text: res.inputs[i].Text}
	}
	pkg := name
	if f == emit.FormatGo {
		pkg = m.Config.Output.GoPackage
	}
	var buf bytes.Buffer
	if err := emit.Render(&buf, f, entries, emit.Options{Package: pkg, Comments: comments}); err != nil {
		return "", err
	}

	target := filepath.Join(outDir, name+f.Ext())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	cliLogger.Debug("output written", zap.String("path", target), zap.Int("bytes", buf.Len()))
	return target, nil
}

func displayPath(path string) string {
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}
