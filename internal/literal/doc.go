// Package literal encodes Unicode text into null-terminated arrays of signed
// code units with the same memory layout as a native string constant.
//
// Encode walks the input one scalar value at a time. Scalars that do not fit
// the selected width are collected as Diagnostics (all of them, not just the
// first) and leave a placeholder Unit behind; representable scalars are
// truncated to the unit size and read back as two's-complement integers, so
// 0xE9 stored narrow becomes -23. A single `0` terminator always closes the
// sequence.
//
// A Result with diagnostics never yields an Artifact. Callers surface the
// diagnostics (offsets are scalar indices, not byte positions) and fail the
// build.
package literal
