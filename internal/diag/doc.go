// Package diag defines the diagnostic model shared by the loading, encoding and
// emitting phases.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form (ENC1001, PRJ5002, ...), a short Message, the Primary span inside
// the FileSet and optional Notes. Producers usually go through a Reporter
// (BagReporter for collection, DedupReporter to drop repeats) or add directly to
// a Bag, which supports sorting, deduplication and merging.
//
// Package diag performs no formatting or IO; rendering lives in
// internal/diagfmt.
package diag
