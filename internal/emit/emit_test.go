package emit

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cstrlit/internal/literal"
	"cstrlit/internal/width"
)

func mustBuild(t *testing.T, s string, w width.Width) *literal.Artifact {
	t.Helper()
	a, err := literal.Build(s, w)
	if err != nil {
		t.Fatalf("Build(%q): %v", s, err)
	}
	return a
}

func sampleEntries(t *testing.T) []Entry {
	return []Entry{
		{Name: "hi", Artifact: mustBuild(t, "Hé", width.Narrow), Text: "Hé"},
		{Name: "wide-hi", Artifact: mustBuild(t, "П", width.Wide), Text: "П"},
	}
}

func render(t *testing.T, f Format, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, f, sampleEntries(t), opts); err != nil {
		t.Fatalf("Render(%s): %v", f, err)
	}
	return buf.String()
}

func TestRenderC(t *testing.T) {
	got := render(t, FormatC, Options{Package: "strs"})
	want := "/* Code generated by cstrlit. DO NOT EDIT. */\n" +
		"#ifndef STRS_CSTRLIT_H\n#define STRS_CSTRLIT_H\n\n" +
		"static const signed char hi[3] = { 72, -23, 0 };\n" +
		"static const short wide_hi[2] = { 1055, 0 };\n" +
		"\n#endif /* STRS_CSTRLIT_H */\n"
	if got != want {
		t.Fatalf("C output mismatch:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestRenderGo(t *testing.T) {
	got := render(t, FormatGo, Options{Package: "strs", Comments: true})
	want := "// Code generated by cstrlit. DO NOT EDIT.\n\npackage strs\n" +
		"\n// hi is \"Hé\".\nvar hi = [3]int8{72, -23, 0}\n" +
		"\n// wide_hi is \"П\".\nvar wide_hi = [2]int16{1055, 0}\n"
	if got != want {
		t.Fatalf("Go output mismatch:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestRenderLLVM(t *testing.T) {
	got := render(t, FormatLLVM, Options{})
	for _, want := range []string{
		"@hi = unnamed_addr constant [3 x i8] [i8 72, i8 -23, i8 0], align 1\n",
		"@wide_hi = unnamed_addr constant [2 x i16] [i16 1055, i16 0], align 2\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("LLVM output misses %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "private") {
		t.Error("globals must keep external linkage")
	}
	if strings.Contains(got, "ModuleID") {
		t.Error("ModuleID must be omitted without a package")
	}
}

func TestRenderAsm(t *testing.T) {
	got := render(t, FormatAsm, Options{})
	want := "# Code generated by cstrlit. DO NOT EDIT.\n" +
		"  .section .rodata\n" +
		"  .globl hi\nhi:\n  .byte 72\n  .byte -23\n  .byte 0\n  .size hi, 3\n" +
		"  .globl wide_hi\n  .balign 2\nwide_hi:\n  .short 1055\n  .short 0\n  .size wide_hi, 4\n"
	if got != want {
		t.Fatalf("asm output mismatch:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestRenderJSON(t *testing.T) {
	got := render(t, FormatJSON, Options{Package: "p", Comments: true})
	var out jsonOutput
	if err := json.Unmarshal([]byte(got), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, got)
	}
	if out.Package != "p" || len(out.Literals) != 2 {
		t.Fatalf("unexpected output %+v", out)
	}
	if l := out.Literals[0]; l.Width != "narrow" || l.Text != "Hé" || len(l.Units) != 3 || l.Units[1] != -23 {
		t.Fatalf("literal 0 = %+v", l)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderErrors(t *testing.T) {
	if err := Render(&bytes.Buffer{}, Format("rust"), nil, Options{}); err == nil {
		t.Fatal("unknown format must fail")
	}
	if err := Render(&bytes.Buffer{}, FormatC, []Entry{{Name: "x"}}, Options{}); err == nil {
		t.Fatal("missing artifact must fail")
	}
	if err := Render(failingWriter{}, FormatAsm, sampleEntries(t), Options{}); err == nil {
		t.Fatal("writer error must propagate")
	}
}

func TestIdentifier(t *testing.T) {
	for in, want := range map[string]string{
		"greeting": "greeting",
		"wide-hi":  "wide_hi",
		"9lives":   "_9lives",
		"":         "_",
		"имя":      "______",
	} {
		if got := Identifier(in); got != want {
			t.Errorf("Identifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"c", "GO", " llvm ", "asm", "json"} {
		f, err := ParseFormat(name)
		if err != nil || f.Ext() == "" {
			t.Errorf("ParseFormat(%q) = %q, %v", name, f, err)
		}
	}
	if _, err := ParseFormat("bundle"); err == nil {
		t.Fatal("bundle is not a text format")
	}
}
