package source

import (
	"bytes"
	"errors"

	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ErrOddUTF16 is returned when a UTF-16 file has an odd number of bytes.
var ErrOddUTF16 = errors.New("truncated UTF-16 content")

// Decode turns raw file bytes into UTF-8. A UTF-8 BOM is stripped; a UTF-16
// BOM (either byte order) selects UTF-16 decoding. Content without a BOM is
// returned unchanged and is expected to be UTF-8. UTF-32 is not recognised.
func Decode(raw []byte) ([]byte, FileFlags, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return raw[len(bomUTF8):], FileHadBOM, nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeUTF16(raw, unicode.LittleEndian)
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeUTF16(raw, unicode.BigEndian)
	}
	return raw, 0, nil
}

func decodeUTF16(raw []byte, order unicode.Endianness) ([]byte, FileFlags, error) {
	if len(raw)%2 != 0 {
		return nil, 0, ErrOddUTF16
	}
	out, err := unicode.UTF16(order, unicode.ExpectBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return nil, 0, err
	}
	return out, FileHadBOM | FileDecodedUTF16, nil
}
