package driver

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"cstrlit/internal/diag"
	"cstrlit/internal/project"
	"cstrlit/internal/source"
	"cstrlit/internal/width"
)

// Input is one literal ready to be encoded.
type Input struct {
	Name      string
	Text      string
	Width     width.Width
	Normalize bool // apply NFC before encoding

	// Span covers the text itself: the scalars of a file-backed literal or the
	// declaration of an inline one.
	Span source.Span
	// Decl points at the `[[literal]]` entry that declared the literal.
	Decl       source.Span
	FileBacked bool
	// Index maps scalar offsets to byte spans; set for file-backed literals.
	Index *source.ScalarIndex
}

// Inline builds an Input for text that has no file behind it.
func Inline(name, text string, w width.Width, span source.Span) Input {
	return Input{Name: name, Text: text, Width: w, Span: span, Decl: span}
}

// FromManifest turns the manifest's literals into Inputs. The manifest content is
// registered in fs so that diagnostics can point into it; `file =` literals are
// loaded through fs as well. Literals with errors are reported in the returned
// bag and left out of the result.
func FromManifest(fs *source.FileSet, m *project.Manifest) ([]Input, *diag.Bag) {
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	manifestID := fs.Add(m.Path, m.Content, 0)
	loc := newLocator(manifestID, m)

	specs := m.Literals()
	inputs := make([]Input, 0, len(specs))
	seen := make(map[string]source.Span, len(specs))

	for _, spec := range specs {
		decl := loc.decl(spec.Index, spec.Name)

		switch {
		case spec.Name == "":
			diag.ReportError(rep, diag.EncEmptyName, decl, fmt.Sprintf("literal #%d has no name", spec.Index+1)).Emit()
			continue
		case !project.IsValidName(spec.Name):
			diag.ReportError(rep, diag.EncInvalidName, decl,
				fmt.Sprintf("literal name %q is not an identifier (ASCII letters, digits, '_')", spec.Name)).Emit()
			continue
		}
		if first, dup := seen[spec.Name]; dup {
			diag.ReportError(rep, diag.EncDuplicateName, decl, fmt.Sprintf("duplicate literal name %q", spec.Name)).
				WithNote(first, "first declared here").
				Emit()
			continue
		}
		seen[spec.Name] = decl

		ok := true
		w, err := width.Parse(spec.Width)
		if err != nil {
			diag.ReportError(rep, diag.EncInvalidWidth, decl,
				fmt.Sprintf("literal %q: invalid width %q (expected narrow|wide)", spec.Name, spec.Width)).Emit()
			ok = false
		}
		switch spec.Normalize {
		case "none", "nfc":
		default:
			diag.ReportError(rep, diag.ProjUnknownNormalize, decl,
				fmt.Sprintf("literal %q: unknown normalization %q (expected %s)", spec.Name, spec.Normalize,
					strings.Join(project.NormalizeForms, "|"))).Emit()
			ok = false
		}
		switch {
		case spec.HasText && spec.File != "":
			diag.ReportError(rep, diag.ProjLiteralTextAndFile, decl,
				fmt.Sprintf("literal %q sets both text and file", spec.Name)).Emit()
			ok = false
		case !spec.HasText && spec.File == "":
			diag.ReportError(rep, diag.ProjLiteralNoText, decl,
				fmt.Sprintf("literal %q needs text or file", spec.Name)).Emit()
			ok = false
		}
		if !ok {
			continue
		}

		in := Input{
			Name:      spec.Name,
			Width:     w,
			Normalize: spec.Normalize == "nfc",
			Decl:      decl,
		}
		if spec.HasText {
			in.Text = spec.Text
			in.Span = decl
			inputs = append(inputs, in)
			continue
		}

		if !m.FileWithinRoot(spec.File) {
			diag.ReportError(rep, diag.ProjManifestInvalid, decl,
				fmt.Sprintf("literal %q: file %s is outside the project directory", spec.Name, spec.File)).Emit()
			continue
		}
		if !loadFile(fs, rep, spec, &in) {
			continue
		}
		inputs = append(inputs, in)
	}

	Logger().Debug("manifest literals collected",
		zap.String("manifest", m.Path),
		zap.Int("declared", len(specs)),
		zap.Int("accepted", len(inputs)))
	return inputs, bag
}

func loadFile(fs *source.FileSet, rep diag.Reporter, spec project.LiteralSpec, in *Input) bool {
	// несколько литералов могут ссылаться на один файл
	id, loaded := fs.GetLatest(spec.File)
	var err error
	if !loaded {
		id, err = fs.Load(spec.File)
	}
	if err != nil {
		code := diag.IOLoadFileError
		if errors.Is(err, source.ErrOddUTF16) {
			code = diag.SrcBadEncoding
		}
		diag.ReportError(rep, code, in.Decl, fmt.Sprintf("literal %q: %v", spec.Name, err)).Emit()
		return false
	}
	file := fs.Get(id)
	content := file.Content
	if bad := firstInvalidUTF8(content); bad >= 0 {
		start, _ := safecast.Conv[uint32](bad)
		diag.ReportError(rep, diag.SrcInvalidUTF8, source.Span{File: id, Start: start, End: start + 1},
			fmt.Sprintf("literal %q: file is not valid UTF-8", spec.Name)).
			WithNote(in.Decl, "literal declared here").
			Emit()
		return false
	}

	// одна завершающая пустая строка не считается частью литерала
	text := strings.TrimSuffix(string(content), "\n")
	idx, err := source.NewScalarIndex(id, 0, text)
	if err != nil {
		diag.ReportError(rep, diag.IOLoadFileError, in.Decl, fmt.Sprintf("literal %q: %v", spec.Name, err)).Emit()
		return false
	}
	in.Text = text
	in.FileBacked = true
	in.Index = idx
	in.Span = idx.Whole()
	return true
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// locator finds declaration spans inside the manifest.
type locator struct {
	file    source.FileID
	headers []int
	names   map[string][2]int
}

func newLocator(file source.FileID, m *project.Manifest) locator {
	return locator{file: file, headers: m.LiteralHeaders(), names: m.LiteralOffsets()}
}

func (l locator) decl(index int, name string) source.Span {
	if index >= len(l.headers) {
		return l.span(0, 0)
	}
	lo := l.headers[index]
	hi := -1
	if index+1 < len(l.headers) {
		hi = l.headers[index+1]
	}
	if at, ok := l.names[name]; ok && at[0] >= lo && (hi < 0 || at[0] < hi) {
		return l.span(at[0], at[1])
	}
	return l.span(lo, len("[[literal]]"))
}

func (l locator) span(off, n int) source.Span {
	start, err := safecast.Conv[uint32](off)
	if err != nil {
		return source.Span{File: l.file}
	}
	end, err := safecast.Conv[uint32](off + n)
	if err != nil {
		return source.Span{File: l.file, Start: start, End: start}
	}
	return source.Span{File: l.file, Start: start, End: end}
}
