package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"cstrlit/internal/diag"
	"cstrlit/internal/driver"
	"cstrlit/internal/emit"
	"cstrlit/internal/source"
	"cstrlit/internal/width"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [flags] TEXT",
	Short: "Encode a single literal and print it",
	Long: `Encode TEXT (or standard input when TEXT is "-") as one null-terminated literal
and print it in the selected format. "units" prints the bare unit values.`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().String("width", "narrow", "unit width (narrow|wide)")
	encodeCmd.Flags().String("format", "c", "output format (c|go|llvm|asm|json|units)")
	encodeCmd.Flags().String("name", "literal", "name of the emitted declaration")
	encodeCmd.Flags().Bool("nfc", false, "apply Unicode NFC normalization before encoding")
}

func runEncode(cmd *cobra.Command, args []string) error {
	global, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	widthFlag, err := cmd.Flags().GetString("width")
	if err != nil {
		return fmt.Errorf("failed to get width flag: %w", err)
	}
	w, err := width.Parse(widthFlag)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return fmt.Errorf("failed to get name flag: %w", err)
	}
	nfc, err := cmd.Flags().GetBool("nfc")
	if err != nil {
		return fmt.Errorf("failed to get nfc flag: %w", err)
	}

	text, origin := args[0], "<arg>"
	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.ReplaceAll(string(data), "\r\n", "\n")
		text, origin = strings.TrimSuffix(text, "\n"), "<stdin>"
	}

	fs := source.NewFileSet()
	id := fs.AddVirtual(origin, []byte(text))
	if !utf8.ValidString(text) {
		bag := diag.NewBag(1)
		bag.Add(diag.NewError(diag.SrcInvalidUTF8, source.Span{File: id}, origin+" is not valid UTF-8"))
		return reportEncodeFailure(cmd, bag, fs, global)
	}
	idx, err := source.NewScalarIndex(id, 0, text)
	if err != nil {
		return err
	}
	in := driver.Input{
		Name:       emit.Identifier(name),
		Text:       text,
		Width:      w,
		Normalize:  nfc,
		Span:       idx.Whole(),
		Decl:       idx.Whole(),
		FileBacked: true,
		Index:      idx,
	}

	out, bag := driver.Encode(in, global.maxDiagnostics)
	if out.Err != nil {
		return reportEncodeFailure(cmd, bag, fs, global)
	}
	if bag.Len() > 0 && !global.quiet {
		diagfmtPretty(cmd, bag, fs, global)
	}

	stdout := cmd.OutOrStdout()
	if format == "units" {
		units := out.Artifact.Units()
		parts := make([]string, len(units))
		for i, u := range units {
			parts[i] = fmt.Sprint(u)
		}
		_, err := fmt.Fprintln(stdout, strings.Join(parts, " "))
		return err
	}
	f, err := emit.ParseFormat(format)
	if err != nil {
		return err
	}
	entry := emit.Entry{Name: in.Name, Artifact: out.Artifact, Text: text}
	return emit.Render(stdout, f, []emit.Entry{entry}, emit.Options{Package: "cstrlit", Comments: true})
}

func reportEncodeFailure(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, global globalOptions) error {
	diagfmtPretty(cmd, bag, fs, global)
	return errDiagnostics
}

func diagfmtPretty(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, global globalOptions) {
	_ = printDiagnostics(cmd.ErrOrStderr(), bag, fs, printOptions{
		format:    diagFormatPretty,
		withNotes: true,
		color:     global.color,
	})
}
