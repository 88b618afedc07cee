package diag

import (
	"testing"

	"cstrlit/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	msgs := fs.Add("/workspace/msgs/hello.txt", []byte("a\nПр\n"), 0)

	diags := []*Diagnostic{
		NewError(EncUnsupportedChar, source.Span{File: msgs, Start: 4, End: 6}, "unsupported character\n\"р\"").
			WithNote(source.Span{File: msgs, Start: 0, End: 1}, "literal starts here"),
		New(SevWarning, EncEmbeddedNul, source.Span{File: msgs, Start: 0, End: 1}, "embedded NUL"),
	}

	expected := "note ENC1001 msgs/hello.txt:1:1 literal starts here\n" +
		"warning ENC1005 msgs/hello.txt:1:1 embedded NUL\n" +
		"error ENC1001 msgs/hello.txt:2:3 unsupported character \"р\""

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
	if got := FormatShortDiagnostics(nil, fs, true); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		EncUnsupportedChar:  "ENC1001",
		SrcInvalidUTF8:      "SRC2001",
		IOLoadFileError:     "IO4001",
		ProjManifestInvalid: "PRJ5001",
		ObsTimings:          "OBS6001",
		UnknownCode:         "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("Code(%d).ID() = %q, want %q", code, got, want)
		}
	}
	if got := EncUnsupportedChar.String(); got != "[ENC1001]: Unsupported character" {
		t.Errorf("String() = %q", got)
	}
	if got := Code(1999).Title(); got != "Unknown error" {
		t.Errorf("unknown title = %q", got)
	}
}

func TestBagLimitAndErrors(t *testing.T) {
	b := NewBag(2)
	if !b.Add(New(SevInfo, EncInfo, source.Span{}, "a")) {
		t.Fatal("first add failed")
	}
	if b.HasErrors() || b.HasWarnings() {
		t.Fatal("info only bag reports errors")
	}
	b.Add(NewError(EncUnsupportedChar, source.Span{}, "b"))
	if b.Add(NewError(EncUnsupportedChar, source.Span{}, "c")) {
		t.Fatal("add beyond limit must fail")
	}
	if !b.HasErrors() || b.Len() != 2 || b.Count(SevError) != 1 {
		t.Fatalf("unexpected bag state: len=%d errors=%d", b.Len(), b.Count(SevError))
	}
	if b.Add(nil) {
		t.Fatal("nil diagnostic must be ignored")
	}
}

func TestBagMergeGrows(t *testing.T) {
	a, b := NewBag(1), NewBag(2)
	a.Add(NewError(EncInvalidWidth, source.Span{}, "x"))
	b.Add(NewError(EncInvalidWidth, source.Span{}, "y"))
	b.Add(NewError(EncInvalidWidth, source.Span{}, "z"))
	a.Merge(b)
	if a.Len() != 3 || a.Cap() != 3 {
		t.Fatalf("merge: len=%d cap=%d", a.Len(), a.Cap())
	}
}

func TestBagSort(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(EncUnsupportedChar, source.Span{File: 0, Start: 5, End: 6}, "late"))
	b.Add(New(SevWarning, EncEmbeddedNul, source.Span{File: 0, Start: 1, End: 2}, "warn"))
	b.Add(NewError(EncUnsupportedChar, source.Span{File: 0, Start: 1, End: 2}, "early"))
	b.Sort()
	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("sort left %d items", len(items))
	}
	if items[0].Message != "early" || items[1].Message != "warn" || items[2].Message != "late" {
		t.Fatalf("unexpected order: %q %q %q", items[0].Message, items[1].Message, items[2].Message)
	}
}

func TestReportBuilderAndDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 0, Start: 3, End: 4}
	for range 3 {
		ReportError(r, EncUnsupportedChar, sp, "same").WithNote(sp, "note").Emit()
	}
	ReportWarning(r, EncEmbeddedNul, sp, "other").Emit()

	b := ReportInfo(r, EncInfo, sp, "once")
	b.Emit()
	b.Emit()

	if bag.Len() != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatal("note was not forwarded")
	}
	var nilBuilder *ReportBuilder
	if nilBuilder.WithNote(sp, "x") != nil {
		t.Fatal("nil builder must stay nil")
	}
	nilBuilder.Emit()
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{"info": SevInfo, "WARN": SevWarning, " error ": SevError} {
		got, err := ParseSeverity(in)
		if err != nil || got != want {
			t.Errorf("ParseSeverity(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Fatal("expected error")
	}
	b := NewBag(4)
	b.Add(New(SevWarning, EncEmbeddedNul, source.Span{}, "w"))
	if !b.AtLeast(SevWarning) || b.AtLeast(SevError) {
		t.Fatal("AtLeast mismatch")
	}
}
