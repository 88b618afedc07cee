package source

import (
	"unicode/utf8"

	"fortio.org/safecast"
)

// ScalarIndex maps scalar offsets inside a piece of text back to byte spans of
// the file the text was read from.
type ScalarIndex struct {
	file   FileID
	starts []uint32 // байтовое начало каждого скаляра
	end    uint32
}

// NewScalarIndex indexes text that begins at byte base of file.
func NewScalarIndex(file FileID, base uint32, text string) (*ScalarIndex, error) {
	idx := &ScalarIndex{
		file:   file,
		starts: make([]uint32, 0, utf8.RuneCountInString(text)),
	}
	for i := range text {
		off, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, err
		}
		idx.starts = append(idx.starts, base+off)
	}
	n, err := safecast.Conv[uint32](len(text))
	if err != nil {
		return nil, err
	}
	idx.end = base + n
	return idx, nil
}

// Len returns the number of indexed scalars.
func (x *ScalarIndex) Len() int {
	return len(x.starts)
}

// Span returns the byte span of the scalar at offset. Offsets past the end
// yield an empty span at the end of the text.
func (x *ScalarIndex) Span(offset int) Span {
	if offset < 0 || offset >= len(x.starts) {
		return Span{File: x.file, Start: x.end, End: x.end}
	}
	end := x.end
	if offset+1 < len(x.starts) {
		end = x.starts[offset+1]
	}
	return Span{File: x.file, Start: x.starts[offset], End: end}
}

// Whole returns the span covering the full text.
func (x *ScalarIndex) Whole() Span {
	if len(x.starts) == 0 {
		return Span{File: x.file, Start: x.end, End: x.end}
	}
	return x.Span(0).Cover(x.Span(len(x.starts) - 1))
}
