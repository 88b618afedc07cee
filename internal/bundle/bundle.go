// Package bundle stores encoded literals in a msgpack file so that later build
// steps can splice them in without re-reading the manifest.
package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"cstrlit/internal/literal"
	"cstrlit/internal/project"
	"cstrlit/internal/width"
)

// Ext is the file extension of bundles.
const Ext = ".ctb"

// Current schema version - increment when Payload format changes
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned by Read for bundles written by another schema.
var ErrSchemaMismatch = errors.New("bundle schema mismatch")

// Payload is the on-disk content of a bundle.
type Payload struct {
	Schema  uint16
	Package string
	Entries []Entry
}

// Entry is one literal. Units include the terminator.
type Entry struct {
	Name   string
	Width  uint8
	Units  []int16
	Digest project.Digest // HashLiteral(name, width, text) of the source text
}

// NewEntry captures an artifact under name.
func NewEntry(name string, a *literal.Artifact, digest project.Digest) Entry {
	return Entry{
		Name:   name,
		Width:  uint8(a.Width()),
		Units:  a.Units(),
		Digest: digest,
	}
}

// Artifact rebuilds and validates the stored literal.
func (e Entry) Artifact() (*literal.Artifact, error) {
	a, err := literal.FromUnits(width.Width(e.Width), e.Units, true)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", e.Name, err)
	}
	return a, nil
}

// Fresh reports whether the entry was produced from exactly this text.
func (e Entry) Fresh(text string) bool {
	return e.Digest == project.HashLiteral(e.Name, e.Width, text)
}

// Write serializes a payload to path atomically (temp file + rename).
func Write(path string, payload *Payload) (err error) {
	if payload == nil {
		return errors.New("bundle: nil payload")
	}
	out := *payload
	if out.Schema == 0 {
		out.Schema = SchemaVersion
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(&out); err != nil {
		return fmt.Errorf("bundle: encode: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(tmp, path)
}

// Read loads a bundle and checks its schema and every entry.
func Read(path string) (*Payload, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, fmt.Errorf("bundle: decode %s: %w", path, err)
	}
	if payload.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %s has schema %d, want %d", ErrSchemaMismatch, path, payload.Schema, SchemaVersion)
	}
	for _, e := range payload.Entries {
		if _, err := e.Artifact(); err != nil {
			return nil, fmt.Errorf("bundle: %s: %w", path, err)
		}
	}
	return &payload, nil
}
