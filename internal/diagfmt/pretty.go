package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cstrlit/internal/diag"
	"cstrlit/internal/source"
)

// ширина в ячейках без учёта локали (EastAsianWidth), чтобы вывод был стабилен
var cells = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

type palette struct {
	err, warn, info, note, code, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pr := prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	if pr.opts.TabWidth == 0 {
		pr.opts.TabWidth = 4
	}
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		pr.diagnostic(d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
}

func (pr prettyPrinter) diagnostic(d *diag.Diagnostic) {
	sev := pr.pal.severity(d.Severity).Sprint(d.Severity.String())
	code := pr.pal.code.Sprint(d.Code.ID())

	file, ok := located(pr.fs, d.Code, d.Primary)
	if !ok {
		fmt.Fprintf(pr.w, "%s %s: %s\n", sev, code, d.Message)
		pr.notes(d)
		return
	}
	start, _ := pr.fs.Resolve(d.Primary)
	where := fmt.Sprintf("%s:%d:%d", formatPath(file, pr.fs, pr.opts.PathMode), start.Line, start.Col)
	fmt.Fprintf(pr.w, "%s: %s %s: %s\n", pr.pal.path.Sprint(where), sev, code, d.Message)
	pr.snippet(file, d.Primary)
	pr.notes(d)
}

func (pr prettyPrinter) notes(d *diag.Diagnostic) {
	if !pr.opts.ShowNotes && d.Code != diag.ObsTimings {
		return
	}
	label := pr.pal.note.Sprint("note")
	for _, n := range d.Notes {
		file, ok := located(pr.fs, d.Code, n.Span)
		if !ok {
			fmt.Fprintf(pr.w, "  %s: %s\n", label, n.Msg)
			continue
		}
		start, _ := pr.fs.Resolve(n.Span)
		fmt.Fprintf(pr.w, "  %s: %s:%d:%d: %s\n", label,
			formatPath(file, pr.fs, pr.opts.PathMode), start.Line, start.Col, n.Msg)
	}
}

// snippet prints the primary line with Context lines around it and marks the
// span with a caret. Columns are counted in terminal cells, so wide and
// combining characters keep the caret under the right glyph.
func (pr prettyPrinter) snippet(file *source.File, span source.Span) {
	start, end := pr.fs.Resolve(span)
	ctx := uint32(max(pr.opts.Context, 0))
	lineCount, err := safecast.Conv[uint32](len(file.LineIdx) + 1)
	if err != nil {
		lineCount = start.Line
	}
	first := start.Line - min(ctx, start.Line-1)
	last := min(start.Line+ctx, max(lineCount, start.Line))

	gutterWidth := len(fmt.Sprint(last))
	blank := strings.Repeat(" ", gutterWidth)

	for ln := first; ln <= last; ln++ {
		line := file.GetLine(ln)
		fmt.Fprintf(pr.w, "%s %s %s\n",
			pr.gutter(fmt.Sprintf("%*d", gutterWidth, ln)), pr.gutter("|"), pr.expandTabs(line))
		if ln != start.Line {
			continue
		}

		colStart := clampCol(start.Col, line)
		colEnd := len(line)
		if end.Line == start.Line {
			colEnd = clampCol(end.Col, line)
		}
		pad := cells.StringWidth(pr.expandTabs(line[:colStart]))
		mark := cells.StringWidth(pr.expandTabs(line[colStart:max(colEnd, colStart)]))
		marker := "^"
		if mark > 1 {
			marker += strings.Repeat("~", mark-1)
		}
		fmt.Fprintf(pr.w, "%s %s %s%s\n", blank, pr.gutter("|"), strings.Repeat(" ", pad), pr.pal.caret.Sprint(marker))
	}
}

func (pr prettyPrinter) gutter(s string) string {
	return pr.pal.gutter.Sprint(s)
}

func (pr prettyPrinter) expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", int(pr.opts.TabWidth)))
}

// clampCol converts a 1-based byte column into a byte index within line.
func clampCol(col uint32, line string) int {
	if col == 0 {
		return 0
	}
	return min(int(col-1), len(line))
}
