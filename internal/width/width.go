// Package width describes the two code-unit widths a literal can be encoded into
// and the numeric rules that go with them.
package width

import (
	"errors"
	"fmt"
	"strings"
)

// Width is the size of one code unit of an encoded literal.
type Width uint8

const (
	// Narrow matches a `char` string constant: 8-bit signed units.
	Narrow Width = 8
	// Wide matches a 16-bit `wchar_t` string constant: 16-bit signed units.
	Wide Width = 16
)

// ErrUnknownWidth is returned by Parse for names that do not denote a width.
var ErrUnknownWidth = errors.New("unknown width")

// Valid reports whether w is one of the supported widths.
func (w Width) Valid() bool {
	return w == Narrow || w == Wide
}

// MaxScalar is the largest scalar value representable in one unit (inclusive).
func (w Width) MaxScalar() rune {
	switch w {
	case Narrow:
		return 0xFF
	case Wide:
		return 0xFFFF
	}
	return 0
}

// UnitBits returns 8 or 16, zero for an invalid width.
func (w Width) UnitBits() int {
	if !w.Valid() {
		return 0
	}
	return int(w)
}

// UnitBytes returns the in-memory size of one unit.
func (w Width) UnitBytes() int {
	return w.UnitBits() / 8
}

// SignedLimit is the first scalar value that turns negative after reinterpretation.
func (w Width) SignedLimit() rune {
	return (w.MaxScalar() + 1) >> 1
}

// Fits reports whether r can be stored in one unit without loss.
// Negative runes never fit.
func (w Width) Fits(r rune) bool {
	return uint32(r) <= uint32(w.MaxScalar())
}

// Reinterpret truncates r to the unit size and reads the result as a
// two's-complement signed integer. The value is widened to int16 so both widths
// share one transport type; for Narrow it is always in [-128, 127].
func (w Width) Reinterpret(r rune) int16 {
	switch w {
	case Narrow:
		return int16(int8(uint8(r)))
	case Wide:
		return int16(uint16(r))
	}
	panic(fmt.Sprintf("width: invalid width %d", uint8(w)))
}

// Recover is the inverse of Reinterpret: the unit is read back as unsigned.
func (w Width) Recover(u int16) rune {
	switch w {
	case Narrow:
		return rune(uint8(int8(u)))
	case Wide:
		return rune(uint16(u))
	}
	panic(fmt.Sprintf("width: invalid width %d", uint8(w)))
}

// InUnitRange reports whether a stored unit value is representable at w.
func (w Width) InUnitRange(u int16) bool {
	if !w.Valid() {
		return false
	}
	lim := int32(w.SignedLimit())
	return int32(u) >= -lim && int32(u) < lim
}

// CType is the signed C element type of the emitted array.
func (w Width) CType() string {
	switch w {
	case Narrow:
		return "signed char"
	case Wide:
		return "short"
	}
	return "?"
}

// GoType is the Go element type of the emitted array.
func (w Width) GoType() string {
	switch w {
	case Narrow:
		return "int8"
	case Wide:
		return "int16"
	}
	return "?"
}

func (w Width) String() string {
	switch w {
	case Narrow:
		return "narrow"
	case Wide:
		return "wide"
	}
	return fmt.Sprintf("width(%d)", uint8(w))
}

// Parse converts a user supplied name into a Width.
func Parse(s string) (Width, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "narrow", "char", "c", "8":
		return Narrow, nil
	case "wide", "wchar", "wchar_t", "w", "16":
		return Wide, nil
	}
	return 0, fmt.Errorf("%w: %q (expected narrow|wide)", ErrUnknownWidth, s)
}
