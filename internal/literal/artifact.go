package literal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"cstrlit/internal/width"
)

var (
	// ErrMissingTerminator is returned by FromUnits when the last unit is not zero.
	ErrMissingTerminator = errors.New("literal is not null-terminated")
	// ErrEmbeddedTerminator is returned by FromUnits when a zero appears before the end.
	ErrEmbeddedTerminator = errors.New("literal contains an embedded terminator")
)

// Artifact is an immutable, null-terminated array of signed units.
// Len is the number of scalars of the source text plus one.
type Artifact struct {
	width  width.Width
	narrow []int8
	wide   []int16
}

func newArtifact(w width.Width, units []int16) *Artifact {
	a := &Artifact{width: w}
	if w == width.Narrow {
		a.narrow = make([]int8, len(units))
		for i, u := range units {
			a.narrow[i] = int8(u)
		}
		return a
	}
	a.wide = units
	return a
}

// FromUnits rebuilds an artifact from stored unit values. The last unit must be
// the terminator; U+0000 inside the text is allowed only when allowEmbedded is set.
func FromUnits(w width.Width, units []int16, allowEmbedded bool) (*Artifact, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("literal: unsupported width %d", uint8(w))
	}
	if len(units) == 0 || units[len(units)-1] != Terminator {
		return nil, ErrMissingTerminator
	}
	for i, u := range units {
		if !w.InUnitRange(u) {
			return nil, fmt.Errorf("literal: unit %d at index %d does not fit %s width", u, i, w)
		}
		if !allowEmbedded && u == Terminator && i != len(units)-1 {
			return nil, fmt.Errorf("%w at index %d", ErrEmbeddedTerminator, i)
		}
	}
	cp := make([]int16, len(units))
	copy(cp, units)
	return newArtifact(w, cp), nil
}

// Width returns the unit width tag.
func (a *Artifact) Width() width.Width { return a.width }

// Len returns the number of units including the terminator.
func (a *Artifact) Len() int {
	if a.width == width.Narrow {
		return len(a.narrow)
	}
	return len(a.wide)
}

// At returns the signed value of unit i, widened to int16.
func (a *Artifact) At(i int) int16 {
	if a.width == width.Narrow {
		return int16(a.narrow[i])
	}
	return a.wide[i]
}

// Units returns a copy of all unit values widened to int16.
func (a *Artifact) Units() []int16 {
	out := make([]int16, a.Len())
	for i := range out {
		out[i] = a.At(i)
	}
	return out
}

// Narrow returns a copy of the 8-bit units, or nil for a wide artifact.
func (a *Artifact) Narrow() []int8 {
	if a.width != width.Narrow {
		return nil
	}
	out := make([]int8, len(a.narrow))
	copy(out, a.narrow)
	return out
}

// Wide returns a copy of the 16-bit units, or nil for a narrow artifact.
func (a *Artifact) Wide() []int16 {
	if a.width != width.Wide {
		return nil
	}
	out := make([]int16, len(a.wide))
	copy(out, a.wide)
	return out
}

// CStr returns a pointer to the first unit of a narrow artifact.
// The pointed-to memory must be treated as read-only.
func (a *Artifact) CStr() *int8 {
	if a.width != width.Narrow {
		return nil
	}
	return &a.narrow[0]
}

// WStr returns a pointer to the first unit of a wide artifact.
// The pointed-to memory must be treated as read-only.
func (a *Artifact) WStr() *int16 {
	if a.width != width.Wide {
		return nil
	}
	return &a.wide[0]
}

// Bytes returns the memory image of the literal in the given byte order.
func (a *Artifact) Bytes(order binary.AppendByteOrder) []byte {
	if a.width == width.Narrow {
		out := make([]byte, len(a.narrow))
		for i, u := range a.narrow {
			out[i] = byte(u)
		}
		return out
	}
	out := make([]byte, 0, 2*len(a.wide))
	for _, u := range a.wide {
		out = order.AppendUint16(out, uint16(u))
	}
	return out
}

// String decodes the units back into text, terminator excluded.
func (a *Artifact) String() string {
	var b strings.Builder
	for i := range a.Len() - 1 {
		b.WriteRune(a.width.Recover(a.At(i)))
	}
	return b.String()
}

// Equal reports whether both artifacts have the same width and units.
func (a *Artifact) Equal(other *Artifact) bool {
	if a == nil || other == nil {
		return a == other
	}
	if a.width != other.width || a.Len() != other.Len() {
		return false
	}
	for i := range a.Len() {
		if a.At(i) != other.At(i) {
			return false
		}
	}
	return true
}
