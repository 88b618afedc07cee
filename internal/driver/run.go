package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"cstrlit/internal/diag"
	"cstrlit/internal/literal"
	"cstrlit/internal/observ"
	"cstrlit/internal/project"
	"cstrlit/internal/source"
	"cstrlit/internal/width"
)

// Request describes one batch.
type Request struct {
	Literals       []Input
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int // per literal and for the merged bag
	Progress       ProgressSink
	Timer          *observ.Timer // optional; phases are appended to it
}

// Outcome is the result for one Input. Artifact is nil whenever Err is set.
type Outcome struct {
	Name     string
	Artifact *literal.Artifact
	Digest   project.Digest // HashLiteral over the text before normalization
	Err      error
}

// Report collects the batch. Results follow the order of Request.Literals.
type Report struct {
	Results []Outcome
	Bag     *diag.Bag
	Timer   *observ.Timer
}

// OK reports whether every literal produced an artifact.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the number of literals without an artifact.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Run encodes every literal of req in parallel. It returns an error only when
// ctx is cancelled; unsupported characters end up in Report.Bag and in the
// corresponding Outcome.Err.
func Run(ctx context.Context, req Request) (*Report, error) {
	n := len(req.Literals)
	report := &Report{
		Results: make([]Outcome, n),
		Bag:     diag.NewBag(req.MaxDiagnostics),
		Timer:   req.Timer,
	}
	if report.Timer == nil {
		report.Timer = observ.NewTimer()
	}
	if n == 0 {
		return report, nil
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for i, in := range req.Literals {
		notify(req.Progress, Event{Literal: in.Name, Index: i, Status: StatusQueued})
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	bags := make([]*diag.Bag, n)
	phase := report.Timer.Begin("encode")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, n))
	for i, in := range req.Literals {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			notify(req.Progress, Event{Literal: in.Name, Index: i, Status: StatusWorking})

			out, bag := encodeOne(in, req.MaxDiagnostics)
			report.Results[i] = out
			bags[i] = bag

			status := StatusDone
			if out.Err != nil {
				status = StatusError
			}
			notify(req.Progress, Event{Literal: in.Name, Index: i, Status: status, Err: out.Err, Elapsed: time.Since(start)})
			return nil
		})
	}
	err := g.Wait()
	report.Timer.End(phase, fmt.Sprintf("%d literals, jobs=%d", n, min(jobs, n)))
	if err != nil {
		return nil, err
	}

	for _, bag := range bags {
		if bag == nil {
			continue
		}
		for _, d := range bag.Items() {
			if !report.Bag.Add(d) {
				break
			}
		}
	}
	Logger().Debug("batch encoded",
		zap.Int("literals", n),
		zap.Int("failed", report.Failed()),
		zap.Int("diagnostics", report.Bag.Len()))
	return report, nil
}

// Encode runs a single literal without a worker pool.
func Encode(in Input, maxDiagnostics int) (Outcome, *diag.Bag) {
	return encodeOne(in, maxDiagnostics)
}

func encodeOne(in Input, maxDiagnostics int) (Outcome, *diag.Bag) {
	bag := diag.NewBag(maxDiagnostics)
	rep := diag.BagReporter{Bag: bag}
	out := Outcome{
		Name:   in.Name,
		Digest: project.HashLiteral(in.Name, uint8(in.Width), in.Text),
	}

	if !in.Width.Valid() {
		diag.ReportError(rep, diag.EncInvalidWidth, in.Decl,
			fmt.Sprintf("literal %q: invalid width %d", in.Name, uint8(in.Width))).Emit()
		out.Err = fmt.Errorf("literal %q: %w", in.Name, width.ErrUnknownWidth)
		return out, bag
	}

	text := in.Text
	normalized := false
	if in.Normalize {
		nfc := norm.NFC.String(text)
		normalized = nfc != text
		text = nfc
	}

	res := literal.Encode(text, in.Width)
	where := fmt.Sprintf("in literal %q (%s, max U+%04X)", in.Name, in.Width, in.Width.MaxScalar())
	for _, d := range res.Diagnostics {
		b := diag.ReportError(rep, diag.EncUnsupportedChar, in.scalarSpan(d.Offset, normalized), d.Message()).WithNote(in.Decl, where)
		if normalized {
			b = b.WithNote(in.Decl, "offset counts scalars of the NFC-normalized text")
		}
		b.Emit()
	}

	offset := 0
	for _, c := range text {
		if c == 0 {
			diag.ReportWarning(rep, diag.EncEmbeddedNul, in.scalarSpan(offset, normalized),
				fmt.Sprintf("literal %q contains U+0000 at offset %d; C consumers will see it truncated", in.Name, offset)).
				Emit()
		}
		offset++
	}

	out.Artifact, out.Err = res.Artifact()
	if out.Err != nil {
		Logger().Debug("literal rejected",
			zap.String("literal", in.Name),
			zap.Stringer("width", in.Width),
			zap.Int("unsupported", len(res.Diagnostics)))
	}
	return out, bag
}

// scalarSpan locates the scalar at offset, falling back to the literal's own
// span when no byte mapping applies.
func (in Input) scalarSpan(offset int, normalized bool) source.Span {
	// после NFC смещения уже не совпадают с байтами файла
	if in.Index == nil || normalized {
		return in.Span
	}
	if sp := in.Index.Span(offset); in.Span.Contains(sp) {
		return sp
	}
	return in.Span
}
