package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// useColor resolves --color; "auto" colours only terminals and honours NO_COLOR.
// The result is also applied to fatih/color globally.
func useColor(cmd *cobra.Command) bool {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		colorFlag = "auto"
	}
	enabled := colorEnabled(colorFlag, isTerminal(os.Stdout), os.Getenv("NO_COLOR") != "")
	color.NoColor = !enabled
	return enabled
}

func colorEnabled(flag string, tty, noColorEnv bool) bool {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "on", "always":
		return true
	case "off", "never":
		return false
	default:
		return tty && !noColorEnv
	}
}
