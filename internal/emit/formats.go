package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cstrlit/internal/width"
)

func renderC(w io.Writer, entries []Entry, opts Options) error {
	guard := strings.ToUpper(Identifier(opts.Package)) + "_CSTRLIT_H"
	fmt.Fprintf(w, "/* Code generated by cstrlit. DO NOT EDIT. */\n")
	fmt.Fprintf(w, "#ifndef %s\n#define %s\n\n", guard, guard)
	for _, e := range entries {
		a := e.Artifact
		if opts.Comments {
			fmt.Fprintf(w, "/* %s */\n", commentText(e.Text))
		}
		fmt.Fprintf(w, "static const %s %s[%d] = { %s };\n", a.Width().CType(), Identifier(e.Name), a.Len(), joinUnits(a, "", ", "))
	}
	fmt.Fprintf(w, "\n#endif /* %s */\n", guard)
	return nil
}

func renderGo(w io.Writer, entries []Entry, opts Options) error {
	pkg := Identifier(opts.Package)
	fmt.Fprintf(w, "// Code generated by cstrlit. DO NOT EDIT.\n\npackage %s\n", pkg)
	for _, e := range entries {
		a := e.Artifact
		fmt.Fprintln(w)
		if opts.Comments {
			fmt.Fprintf(w, "// %s is %s.\n", Identifier(e.Name), commentText(e.Text))
		}
		fmt.Fprintf(w, "var %s = [%d]%s{%s}\n", Identifier(e.Name), a.Len(), a.Width().GoType(), joinUnits(a, "", ", "))
	}
	return nil
}

func renderLLVM(w io.Writer, entries []Entry, opts Options) error {
	fmt.Fprintf(w, "; Code generated by cstrlit. DO NOT EDIT.\n")
	if opts.Package != "" {
		fmt.Fprintf(w, "; ModuleID = '%s'\n", Identifier(opts.Package))
	}
	fmt.Fprintln(w)
	for _, e := range entries {
		a := e.Artifact
		ty := llvmType(a.Width())
		if opts.Comments {
			fmt.Fprintf(w, "; %s\n", commentText(e.Text))
		}
		align := a.Width().UnitBytes()
		fmt.Fprintf(w, "@%s = unnamed_addr constant [%d x %s] [%s], align %d\n",
			Identifier(e.Name), a.Len(), ty, joinUnits(a, ty+" ", ", "), align)
	}
	return nil
}

func renderAsm(w io.Writer, entries []Entry, opts Options) error {
	fmt.Fprintf(w, "# Code generated by cstrlit. DO NOT EDIT.\n")
	fmt.Fprintf(w, "  .section .rodata\n")
	for _, e := range entries {
		a := e.Artifact
		directive := ".byte"
		if a.Width() == width.Wide {
			directive = ".short"
		}
		name := Identifier(e.Name)
		if opts.Comments {
			fmt.Fprintf(w, "# %s\n", commentText(e.Text))
		}
		fmt.Fprintf(w, "  .globl %s\n", name)
		if align := a.Width().UnitBytes(); align > 1 {
			fmt.Fprintf(w, "  .balign %d\n", align)
		}
		fmt.Fprintf(w, "%s:\n", name)
		for i := range a.Len() {
			fmt.Fprintf(w, "  %s %d\n", directive, a.At(i))
		}
		fmt.Fprintf(w, "  .size %s, %d\n", name, a.Len()*a.Width().UnitBytes())
	}
	return nil
}

type jsonLiteral struct {
	Name  string  `json:"name"`
	Width string  `json:"width"`
	Text  string  `json:"text,omitempty"`
	Units []int16 `json:"units"`
}

type jsonOutput struct {
	Package  string        `json:"package,omitempty"`
	Literals []jsonLiteral `json:"literals"`
}

func renderJSON(w io.Writer, entries []Entry, opts Options) error {
	out := jsonOutput{Package: opts.Package, Literals: make([]jsonLiteral, 0, len(entries))}
	for _, e := range entries {
		lit := jsonLiteral{
			Name:  e.Name,
			Width: e.Artifact.Width().String(),
			Units: e.Artifact.Units(),
		}
		if opts.Comments {
			lit.Text = e.Text
		}
		out.Literals = append(out.Literals, lit)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
