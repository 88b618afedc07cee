package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cstrlit/internal/emit"
	"cstrlit/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Create a starter cstrlit.toml",
	Long: `Initialize a cstrlit project by writing a starter manifest (cstrlit.toml).
If [path|name] is omitted, initializes the current directory. If a non-existing
name is provided, a directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		target = abs
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	name := packageNameFor(target)
	if err := os.WriteFile(manifestPath, fmt.Appendf(nil, project.Starter, name), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized cstrlit project %q in %s\n", name, displayPath(target))
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", project.ManifestName)
	}
	return nil
}

// packageNameFor derives an identifier from the directory name.
func packageNameFor(dir string) string {
	name := strings.TrimSpace(filepath.Base(dir))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "strings"
	}
	name = emit.Identifier(name)
	if !project.IsValidName(name) {
		return "strings"
	}
	return name
}
