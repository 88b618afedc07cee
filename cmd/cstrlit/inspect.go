package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"cstrlit/internal/bundle"
	"cstrlit/internal/emit"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE.ctb",
	Short: "Show the literals stored in a bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	payload, err := bundle.Read(args[0])
	if err != nil {
		return err
	}

	entries := make([]emit.Entry, 0, len(payload.Entries))
	for _, e := range payload.Entries {
		a, err := e.Artifact()
		if err != nil {
			return err
		}
		entries = append(entries, emit.Entry{Name: e.Name, Artifact: a, Text: a.String()})
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		return emit.Render(out, emit.FormatJSON, entries, emit.Options{Package: payload.Package, Comments: true})
	case "pretty":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	fmt.Fprintf(out, "bundle %s: package %s, schema %d, %d literals\n",
		args[0], payload.Package, payload.Schema, len(payload.Entries))
	if len(entries) == 0 {
		return nil
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "WIDTH", "UNITS", "DIGEST", "TEXT")
	for i, e := range entries {
		t.Row(
			e.Name,
			e.Artifact.Width().String(),
			fmt.Sprint(e.Artifact.Len()),
			payload.Entries[i].Digest.Short(),
			fmt.Sprintf("%q", e.Text),
		)
	}
	fmt.Fprintln(out, t.String())
	return nil
}
