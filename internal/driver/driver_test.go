package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"cstrlit/internal/diag"
	"cstrlit/internal/literal"
	"cstrlit/internal/project"
	"cstrlit/internal/source"
	"cstrlit/internal/width"
)

func TestRunKeepsInputOrder(t *testing.T) {
	texts := []string{"Hello world!", "", "é", "abc", "z"}
	inputs := make([]Input, len(texts))
	for i, text := range texts {
		inputs[i] = Inline(string(rune('a'+i)), text, width.Narrow, source.Span{})
	}
	report, err := Run(context.Background(), Request{Literals: inputs, Jobs: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.OK() || report.Bag.Len() != 0 {
		t.Fatalf("unexpected failures: %d, diags %d", report.Failed(), report.Bag.Len())
	}
	for i, res := range report.Results {
		if res.Name != inputs[i].Name {
			t.Fatalf("result %d is %q, want %q", i, res.Name, inputs[i].Name)
		}
		if got := res.Artifact.String(); got != texts[i] {
			t.Fatalf("result %d decodes to %q, want %q", i, got, texts[i])
		}
		if res.Digest != project.HashLiteral(inputs[i].Name, 8, texts[i]) {
			t.Fatalf("result %d digest mismatch", i)
		}
	}
	if got := report.Results[2].Artifact.Narrow(); !slices.Equal(got, []int8{-23, 0}) {
		t.Fatalf("é encoded as %v", got)
	}
}

func TestRunFileBackedSpans(t *testing.T) {
	fs := source.NewFileSet()
	text := "aПb"
	id := fs.AddVirtual("msg.txt", []byte(text))
	idx, err := source.NewScalarIndex(id, 0, text)
	if err != nil {
		t.Fatal(err)
	}
	in := Input{Name: "msg", Text: text, Width: width.Narrow, Span: idx.Whole(), FileBacked: true, Index: idx}

	report, err := Run(context.Background(), Request{Literals: []Input{in}})
	if err != nil {
		t.Fatal(err)
	}
	if report.OK() {
		t.Fatal("expected failure")
	}
	items := report.Bag.Items()
	if len(items) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(items))
	}
	d := items[0]
	if d.Code != diag.EncUnsupportedChar || d.Severity != diag.SevError {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Primary.Start != 1 || d.Primary.End != 3 {
		t.Fatalf("span = %v, want bytes 1..3", d.Primary)
	}
	if !strings.Contains(d.Message, "offset 1") {
		t.Fatalf("message %q lacks offset", d.Message)
	}
	if len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, `"msg"`) {
		t.Fatalf("notes = %+v", d.Notes)
	}
	res := report.Results[0]
	if res.Artifact != nil || !errors.Is(res.Err, literal.ErrUnsupportedCharacter) {
		t.Fatalf("outcome = %+v", res)
	}
}

func TestRunReportsEveryOffender(t *testing.T) {
	in := Inline("privet", "Привет", width.Narrow, source.Span{})
	report, err := Run(context.Background(), Request{Literals: []Input{in}, MaxDiagnostics: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Bag.Len(); got != 3 {
		t.Fatalf("bag holds %d diagnostics, want capped 3", got)
	}
	var unsupported *literal.UnsupportedError
	if !errors.As(report.Results[0].Err, &unsupported) {
		t.Fatalf("err = %v", report.Results[0].Err)
	}
	if len(unsupported.Diagnostics) != 6 {
		t.Fatalf("error carries %d diagnostics, want 6", len(unsupported.Diagnostics))
	}

	wide := Inline("privet", "Привет", width.Wide, source.Span{})
	report, err = Run(context.Background(), Request{Literals: []Input{wide}})
	if err != nil {
		t.Fatal(err)
	}
	if !report.OK() || report.Results[0].Artifact.Len() != 7 {
		t.Fatalf("wide literal failed: %v", report.Results[0].Err)
	}
}

func TestRunNormalize(t *testing.T) {
	decomposed := "e\u0301"
	plain := Inline("e", decomposed, width.Narrow, source.Span{})
	nfc := plain
	nfc.Normalize = true

	report, err := Run(context.Background(), Request{Literals: []Input{plain, nfc}})
	if err != nil {
		t.Fatal(err)
	}
	if report.Results[0].Err == nil {
		t.Fatal("combining accent must not fit a narrow unit")
	}
	if report.Results[1].Err != nil {
		t.Fatalf("NFC literal failed: %v", report.Results[1].Err)
	}
	if got := report.Results[1].Artifact.Narrow(); !slices.Equal(got, []int8{-23, 0}) {
		t.Fatalf("NFC literal = %v", got)
	}
	if report.Results[0].Digest != report.Results[1].Digest {
		t.Fatal("digest must be computed over the source text")
	}
}

func TestRunEmbeddedNulWarns(t *testing.T) {
	in := Inline("nul", "a\x00b", width.Narrow, source.Span{})
	report, err := Run(context.Background(), Request{Literals: []Input{in}})
	if err != nil {
		t.Fatal(err)
	}
	if !report.OK() {
		t.Fatalf("embedded NUL must not fail: %v", report.Results[0].Err)
	}
	if report.Bag.HasErrors() || !report.Bag.HasWarnings() {
		t.Fatal("expected a single warning")
	}
	if code := report.Bag.Items()[0].Code; code != diag.EncEmbeddedNul {
		t.Fatalf("code = %v", code)
	}
}

func TestRunInvalidWidth(t *testing.T) {
	in := Inline("x", "x", width.Width(3), source.Span{})
	out, bag := Encode(in, 0)
	if !errors.Is(out.Err, width.ErrUnknownWidth) {
		t.Fatalf("err = %v", out.Err)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.EncInvalidWidth {
		t.Fatalf("bag = %+v", bag.Items())
	}
}

func TestRunProgressEvents(t *testing.T) {
	inputs := []Input{
		Inline("ok", "ok", width.Narrow, source.Span{}),
		Inline("bad", "Ω", width.Narrow, source.Span{}),
	}
	var mu sync.Mutex
	counts := map[Status]int{}
	sink := SinkFunc(func(evt Event) {
		mu.Lock()
		defer mu.Unlock()
		counts[evt.Status]++
		if evt.Status == StatusError && evt.Literal != "bad" {
			t.Errorf("error event for %q", evt.Literal)
		}
	})
	if _, err := Run(context.Background(), Request{Literals: inputs, Progress: sink}); err != nil {
		t.Fatal(err)
	}
	want := map[Status]int{StatusQueued: 2, StatusWorking: 2, StatusDone: 1, StatusError: 1}
	for status, n := range want {
		if counts[status] != n {
			t.Fatalf("%s events = %d, want %d", status, counts[status], n)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Request{Literals: []Input{Inline("a", "a", width.Narrow, source.Span{})}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunEmpty(t *testing.T) {
	report, err := Run(context.Background(), Request{})
	if err != nil || len(report.Results) != 0 || !report.OK() {
		t.Fatalf("empty batch: %v %+v", err, report)
	}
}

const testManifest = `[package]
name = "demo"

[defaults]
width = "narrow"

[[literal]]
name = "hello"
text = "Hello world!"

[[literal]]
name = "from_file"
file = "msgs/hello.txt"
width = "wide"

[[literal]]
name = "hello"
text = "again"

[[literal]]
name = "odd"
text = "x"
width = "32"

[[literal]]
name = "both"
text = "x"
file = "msgs/hello.txt"

[[literal]]
name = "neither"

[[literal]]
name = "broken"
file = "msgs/broken.txt"

[[literal]]
name = "escape"
file = "../outside.txt"

[[literal]]
name = "9lives"
text = "x"
`

func TestFromManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "msgs"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"cstrlit.toml":    []byte(testManifest),
		"msgs/hello.txt":  []byte("\xEF\xBB\xBFПривет\n"),
		"msgs/broken.txt": {'a', 0xff},
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), data, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	m, err := project.Load(filepath.Join(dir, "cstrlit.toml"))
	if err != nil {
		t.Fatal(err)
	}

	fs := source.NewFileSetWithBase(dir)
	inputs, bag := FromManifest(fs, m)

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	if !slices.Equal(names, []string{"hello", "from_file"}) {
		t.Fatalf("accepted %v", names)
	}
	file := inputs[1]
	if !file.FileBacked || file.Text != "Привет" || file.Width != width.Wide {
		t.Fatalf("file literal = %+v", file)
	}
	if file.Index == nil || file.Index.Len() != 6 {
		t.Fatal("file literal is not indexed")
	}

	manifestFile := fs.Get(inputs[0].Decl.File)
	if manifestFile == nil {
		t.Fatal("manifest not registered")
	}
	decl := inputs[0].Decl
	if got := string(manifestFile.Content[decl.Start:decl.End]); got != `name = "hello"` {
		t.Fatalf("inline decl span covers %q", got)
	}

	codes := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		codes = append(codes, d.Code)
	}
	want := []diag.Code{
		diag.EncDuplicateName,
		diag.EncInvalidWidth,
		diag.ProjLiteralTextAndFile,
		diag.ProjLiteralNoText,
		diag.SrcInvalidUTF8,
		diag.ProjManifestInvalid,
		diag.EncInvalidName,
	}
	if !slices.Equal(codes, want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}

	dup := bag.Items()[0]
	if len(dup.Notes) != 1 || dup.Notes[0].Span != inputs[0].Decl {
		t.Fatalf("duplicate note = %+v", dup.Notes)
	}
	if dup.Primary == inputs[0].Decl {
		t.Fatal("duplicate must point at the second declaration")
	}
	broken := bag.Items()[4]
	if broken.Primary.Start != 1 || broken.Primary.End != 2 {
		t.Fatalf("invalid UTF-8 span = %v", broken.Primary)
	}

	report, err := Run(context.Background(), Request{Literals: inputs})
	if err != nil {
		t.Fatal(err)
	}
	if !report.OK() {
		t.Fatalf("manifest literals failed: %d", report.Failed())
	}
}

func TestFromManifestFileSpans(t *testing.T) {
	dir := t.TempDir()
	manifest := "[package]\nname = \"demo\"\n\n[[literal]]\nname = \"msg\"\nfile = \"msg.txt\"\n"
	if err := os.WriteFile(filepath.Join(dir, "cstrlit.toml"), []byte(manifest), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "msg.txt"), []byte("okП!"), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := project.Load(filepath.Join(dir, "cstrlit.toml"))
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	inputs, bag := FromManifest(fs, m)
	if bag.Len() != 0 || len(inputs) != 1 {
		t.Fatalf("unexpected front-end result: %d inputs, %d diags", len(inputs), bag.Len())
	}
	report, err := Run(context.Background(), Request{Literals: inputs})
	if err != nil {
		t.Fatal(err)
	}
	d := report.Bag.Items()[0]
	start, _ := fs.Resolve(d.Primary)
	if start.Line != 1 || start.Col != 3 {
		t.Fatalf("position = %+v, want 1:3", start)
	}
	if d.Notes[0].Span.File == d.Primary.File {
		t.Fatal("note must point into the manifest")
	}
}

func TestFromManifestSharedFile(t *testing.T) {
	dir := t.TempDir()
	manifest := "[package]\nname = \"demo\"\n\n" +
		"[[literal]]\nname = \"narrow_msg\"\nfile = \"msg.txt\"\n\n" +
		"[[literal]]\nname = \"wide_msg\"\nfile = \"msg.txt\"\nwidth = \"wide\"\n"
	if err := os.WriteFile(filepath.Join(dir, "cstrlit.toml"), []byte(manifest), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "msg.txt"), []byte("hi\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := project.Load(filepath.Join(dir, "cstrlit.toml"))
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetWithBase(dir)
	inputs, bag := FromManifest(fs, m)
	if bag.Len() != 0 || len(inputs) != 2 {
		t.Fatalf("unexpected front-end result: %d inputs, %d diags", len(inputs), bag.Len())
	}
	if inputs[0].Span.File != inputs[1].Span.File {
		t.Fatal("literals sharing a file must share its FileID")
	}
	// manifest + one text file
	if fs.Len() != 2 {
		t.Fatalf("file set holds %d files, want 2", fs.Len())
	}
}

func TestRunSpanOutsideLiteralFallsBack(t *testing.T) {
	fs := source.NewFileSet()
	text := "aП"
	id := fs.AddVirtual("msg.txt", []byte(text))
	idx, err := source.NewScalarIndex(id, 0, text)
	if err != nil {
		t.Fatal(err)
	}
	decl := source.Span{File: id + 1, Start: 4, End: 9}
	in := Input{Name: "msg", Text: text, Width: width.Narrow, Span: decl, Decl: decl, Index: idx}

	report, err := Run(context.Background(), Request{Literals: []Input{in}})
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Bag.Items()[0].Primary; got != decl {
		t.Fatalf("span = %v, want literal span %v", got, decl)
	}
}
