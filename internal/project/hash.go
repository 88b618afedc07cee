package project

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex digits, enough for listings.
func (d Digest) Short() string {
	return d.String()[:12]
}

// HashLiteral fingerprints one literal: H( len(name) || name || width || text ).
// Bundles store it so stale entries can be detected without re-encoding.
func HashLiteral(name string, unitBits uint8, text string) Digest {
	h := sha256.New()
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(name)))
	_, _ = h.Write(n[:])
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{unitBits})
	_, _ = h.Write([]byte(text))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Combine строит хеш набора: H( d1 || d2 ... ). Порядок должен быть детерминированным.
func Combine(parts ...Digest) Digest {
	h := sha256.New()
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
