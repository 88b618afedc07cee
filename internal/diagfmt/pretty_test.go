package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"cstrlit/internal/diag"
	"cstrlit/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("aПb\n")
	fileID := fs.AddVirtual("/home/user/project/msgs/hello.txt", content)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.EncUnsupportedChar, source.Span{File: fileID, Start: 1, End: 3},
		`unsupported character "П" (U+041F) at offset 1`))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/msgs/hello.txt:1:2"},
		{name: "Relative path", mode: PathModeRelative, contains: "msgs/hello.txt:1:2"},
		{name: "Basename only", mode: PathModeBasename, contains: "hello.txt:1:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR ENC1001") {
				t.Errorf("Expected severity and code in output, got:\n%s", output)
			}
		})
	}
}

func TestPrettyCaret(t *testing.T) {
	tests := []struct {
		name    string
		content string
		start   uint32
		end     uint32
		want    string
	}{
		{
			name:    "cyrillic",
			content: "aПb",
			start:   1, end: 3,
			want: "t.txt:1:2: ERROR ENC1001: boom\n" +
				"1 | aПb\n" +
				"  |  ^\n",
		},
		{
			name:    "wide glyph",
			content: "a中b",
			start:   1, end: 4,
			want: "t.txt:1:2: ERROR ENC1001: boom\n" +
				"1 | a中b\n" +
				"  |  ^~\n",
		},
		{
			name:    "after wide glyph",
			content: "a中b",
			start:   4, end: 5,
			want: "t.txt:1:5: ERROR ENC1001: boom\n" +
				"1 | a中b\n" +
				"  |    ^\n",
		},
		{
			name:    "tab",
			content: "\tП",
			start:   1, end: 3,
			want: "t.txt:1:2: ERROR ENC1001: boom\n" +
				"1 |     П\n" +
				"  |     ^\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual("t.txt", []byte(tt.content))
			bag := diag.NewBag(1)
			bag.Add(diag.NewError(diag.EncUnsupportedChar, source.Span{File: id, Start: tt.start, End: tt.end}, "boom"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
			if got := buf.String(); got != tt.want {
				t.Fatalf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestPrettyContextAndNotes(t *testing.T) {
	fs := source.NewFileSet()
	manifest := fs.AddVirtual("cstrlit.toml", []byte("[[literal]]\nname = \"x\"\ntext = \"Ω\"\n"))

	bag := diag.NewBag(4)
	d := diag.NewError(diag.EncUnsupportedChar, source.Span{File: manifest, Start: 12, End: 22}, "unsupported").
		WithNote(source.Span{File: manifest, Start: 0, End: 11}, "declared here")
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename, ShowNotes: true})
	want := "cstrlit.toml:2:1: ERROR ENC1001: unsupported\n" +
		"1 | [[literal]]\n" +
		"2 | name = \"x\"\n" +
		"  | ^~~~~~~~~~\n" +
		"3 | text = \"Ω\"\n" +
		"  note: cstrlit.toml:1:1: declared here\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes printed without ShowNotes:\n%s", buf.String())
	}
}

func TestPrettyTimings(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("cstrlit.toml", []byte("[package]\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings (build): total 1.00 ms").
		WithNote(source.Span{}, `{"kind":"build"}`))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	want := "INFO OBS6001: timings (build): total 1.00 ms\n" +
		"  note: {\"kind\":\"build\"}\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.txt", []byte("Ω"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.EncUnsupportedChar, source.Span{File: id, Start: 0, End: 2}, "boom"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatal("plain output contains escape codes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatal("colored output has no escape codes")
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.txt", []byte("aП"))
	bag := diag.NewBag(2)
	bag.Add(diag.NewError(diag.EncUnsupportedChar, source.Span{File: id, Start: 1, End: 3}, "boom").
		WithNote(source.Span{File: id}, "here"))

	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, true); err != nil {
		t.Fatal(err)
	}
	want := "note ENC1001 t.txt:1:1 here\nerror ENC1001 t.txt:1:2 boom\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
