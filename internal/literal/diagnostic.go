package literal

import (
	"errors"
	"fmt"
	"strings"

	"cstrlit/internal/width"
)

// ErrUnsupportedCharacter is matched by every *UnsupportedError.
var ErrUnsupportedCharacter = errors.New("unsupported character")

// Diagnostic reports one scalar that does not fit the target width.
type Diagnostic struct {
	Char   rune
	Offset int // zero-based scalar index
}

// Message renders the diagnostic for humans.
func (d Diagnostic) Message() string {
	return fmt.Sprintf("unsupported character %s (%s) at offset %d", quoteChar(d.Char), codePoint(d.Char), d.Offset)
}

func (d Diagnostic) String() string { return d.Message() }

// UnsupportedError is the failure value of Result.Artifact.
type UnsupportedError struct {
	Width       width.Width
	Diagnostics []Diagnostic
}

func (e *UnsupportedError) Error() string {
	if len(e.Diagnostics) == 0 {
		return ErrUnsupportedCharacter.Error()
	}
	var b strings.Builder
	b.WriteString(e.Diagnostics[0].Message())
	fmt.Fprintf(&b, " for %s literal", e.Width)
	if extra := len(e.Diagnostics) - 1; extra > 0 {
		fmt.Fprintf(&b, " (and %d more)", extra)
	}
	return b.String()
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupportedCharacter
}

func quoteChar(r rune) string {
	// %q escapes unprintable runes; invalid ones render as U+FFFD
	return fmt.Sprintf("%q", string(r))
}

func codePoint(r rune) string {
	if r < 0 {
		return fmt.Sprintf("-0x%X", -int64(r))
	}
	return fmt.Sprintf("U+%04X", r)
}
