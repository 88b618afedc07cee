package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColored_NoColor(t *testing.T) {
	origNoColor, origVersion := color.NoColor, Version
	t.Cleanup(func() {
		color.NoColor = origNoColor
		Version = origVersion
	})
	color.NoColor = true

	tests := map[string]string{
		"0.1.0-dev":            "0.1.0-dev",
		"1.2.3":                "1.2.3",
		"1.2.3-rc.1+build.123": "1.2.3-rc.1+build.123",
		"devel":                "devel",
	}
	for in, want := range tests {
		Version = in
		if got := Colored(); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColored_WithColor(t *testing.T) {
	origNoColor := color.NoColor
	t.Cleanup(func() { color.NoColor = origNoColor })
	color.NoColor = false

	if got := Colored(); got == Version {
		t.Errorf("expected ANSI sequences in %q", got)
	}
}
