package diagfmt

import (
	"io"

	"cstrlit/internal/diag"
	"cstrlit/internal/source"
)

// Short writes one line per diagnostic (and per note when includeNotes is set).
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
