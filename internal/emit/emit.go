// Package emit renders encoded literals as declarations in the syntax of a
// consuming toolchain: C, Go, LLVM IR, GNU assembler or JSON.
package emit

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"cstrlit/internal/literal"
	"cstrlit/internal/width"
)

// Format selects the output syntax.
type Format string

const (
	FormatC    Format = "c"
	FormatGo   Format = "go"
	FormatLLVM Format = "llvm"
	FormatAsm  Format = "asm"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatC, FormatGo, FormatLLVM, FormatAsm, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (expected c|go|llvm|asm|json)", s)
}

// Ext returns the file extension used by `cstrlit build`.
func (f Format) Ext() string {
	switch f {
	case FormatC:
		return ".h"
	case FormatGo:
		return ".go"
	case FormatLLVM:
		return ".ll"
	case FormatAsm:
		return ".s"
	case FormatJSON:
		return ".json"
	}
	return ""
}

// Entry is one named literal to render.
type Entry struct {
	Name     string
	Artifact *literal.Artifact
	Text     string // source text, used for comments
}

// Options are shared by all renderers.
type Options struct {
	Package  string // Go package clause / header guard stem
	Comments bool   // prefix each declaration with the source text
}

type renderer func(w io.Writer, entries []Entry, opts Options) error

var renderers = map[Format]renderer{
	FormatC:    renderC,
	FormatGo:   renderGo,
	FormatLLVM: renderLLVM,
	FormatAsm:  renderAsm,
	FormatJSON: renderJSON,
}

// Render writes all entries in the given order.
func Render(w io.Writer, format Format, entries []Entry, opts Options) error {
	r, ok := renderers[format]
	if !ok {
		return fmt.Errorf("emit: unknown format %q", format)
	}
	for _, e := range entries {
		if e.Artifact == nil {
			return fmt.Errorf("emit: literal %q has no artifact", e.Name)
		}
	}
	ew := &errWriter{w: w}
	if err := r(ew, entries, opts); err != nil {
		return err
	}
	return ew.err
}

// Identifier turns name into a C/Go identifier: invalid bytes become '_' and a
// leading digit gets a '_' prefix.
func Identifier(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			b.WriteByte(c)
		case c >= '0' && c <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// joinUnits formats units as decimal numbers, prefix goes before each one.
func joinUnits(a *literal.Artifact, prefix, sep string) string {
	var b strings.Builder
	for i := range a.Len() {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(prefix)
		b.WriteString(strconv.Itoa(int(a.At(i))))
	}
	return b.String()
}

func llvmType(w width.Width) string {
	if w == width.Narrow {
		return "i8"
	}
	return "i16"
}

// commentText keeps comments on one line and away from comment terminators.
func commentText(s string) string {
	s = strconv.Quote(s)
	s = strings.ReplaceAll(s, "*/", "*\\/")
	return s
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
