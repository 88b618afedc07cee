package literal

import (
	"fmt"

	"cstrlit/internal/width"
)

// Terminator is the value of the last unit of every literal.
const Terminator int16 = 0

// Unit is one position of a Result. Valid is false for the placeholder left
// where an unsupported character was found.
type Unit struct {
	Value int16
	Valid bool
}

// Result is the outcome of one walk over the input.
// Units always holds one entry per scalar plus the terminator.
type Result struct {
	Width       width.Width
	Units       []Unit
	Diagnostics []Diagnostic
}

// OK reports whether the walk found no unsupported characters.
func (r Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Artifact returns the encoded literal or, when any diagnostic was recorded,
// an *UnsupportedError carrying all of them.
func (r Result) Artifact() (*Artifact, error) {
	if !r.OK() {
		diags := make([]Diagnostic, len(r.Diagnostics))
		copy(diags, r.Diagnostics)
		return nil, &UnsupportedError{Width: r.Width, Diagnostics: diags}
	}
	units := make([]int16, len(r.Units))
	for i, u := range r.Units {
		units[i] = u.Value
	}
	return newArtifact(r.Width, units), nil
}

// Encode walks s scalar by scalar. Invalid UTF-8 sequences are seen as
// U+FFFD, which never fits a narrow unit; the front-end is expected to have
// rejected such input already.
func Encode(s string, w width.Width) Result {
	mustValid(w)
	res := Result{
		Width: w,
		Units: make([]Unit, 0, len(s)+1),
	}
	offset := 0
	for _, c := range s {
		res.add(c, offset)
		offset++
	}
	return res.terminate()
}

// EncodeRunes is Encode for an already decoded scalar sequence.
func EncodeRunes(rs []rune, w width.Width) Result {
	mustValid(w)
	res := Result{
		Width: w,
		Units: make([]Unit, 0, len(rs)+1),
	}
	for i, c := range rs {
		res.add(c, i)
	}
	return res.terminate()
}

// Build is shorthand for Encode(s, w).Artifact().
func Build(s string, w width.Width) (*Artifact, error) {
	return Encode(s, w).Artifact()
}

func (r *Result) add(c rune, offset int) {
	if !r.Width.Fits(c) {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{Char: c, Offset: offset})
		r.Units = append(r.Units, Unit{})
		return
	}
	r.Units = append(r.Units, Unit{Value: r.Width.Reinterpret(c), Valid: true})
}

func (r Result) terminate() Result {
	r.Units = append(r.Units, Unit{Value: Terminator, Valid: true})
	return r
}

func mustValid(w width.Width) {
	if !w.Valid() {
		panic(fmt.Sprintf("literal: unsupported width %d", uint8(w)))
	}
}
