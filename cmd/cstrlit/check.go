package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cstrlit/internal/diag"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Encode every literal of a project and report problems",
	Long: `Load cstrlit.toml (from [path] or the nearest parent directory), encode all
literals and print diagnostics. Nothing is written. Exits with status 1 when a
diagnostic at or above --fail-on is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|short)")
	checkCmd.Flags().String("fail-on", "error", "lowest severity that fails the check (info|warning|error)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	global, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := readDiagFormat(formatFlag)
	if err != nil {
		return err
	}
	failOnFlag, err := cmd.Flags().GetString("fail-on")
	if err != nil {
		return fmt.Errorf("failed to get fail-on flag: %w", err)
	}
	failOn, err := diag.ParseSeverity(failOnFlag)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	res, err := runPipeline(cmd, path, global, pipelineOptions{jobs: jobs})
	if err != nil {
		return err
	}

	opts := printOptions{
		format:    format,
		withNotes: withNotes,
		fullPath:  fullPath,
		color:     global.color,
		path:      res.manifest.Path,
	}
	if global.timings {
		opts.timer = res.timer
	}
	out := cmd.OutOrStdout()
	if err := printDiagnostics(out, res.bag, res.fs, opts); err != nil {
		return err
	}

	failed := res.bag.AtLeast(failOn) || !res.ok()
	if format == diagFormatPretty && !global.quiet {
		summary := fmt.Sprintf("%s: %d literals, %d failed, %d errors, %d warnings",
			res.manifest.Config.Package.Name, len(res.manifest.Config.Literals),
			len(res.manifest.Config.Literals)-len(res.inputs)+res.report.Failed(),
			res.bag.Count(diag.SevError), res.bag.Count(diag.SevWarning))
		if res.bag.Len() > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, summary)
	}
	if failed {
		return errDiagnostics
	}
	return nil
}
