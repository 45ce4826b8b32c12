package classify

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Seed keys every combined Class.
//
// It is part of the on-disk contract of reduced corpora: identifiers written
// by one run are compared against identifiers computed by later runs, so the
// seed must never be derived from process state.
const Seed uint64 = 0x636f727075737264 // "corpusrd"

// Hasher is the streaming form of Fold.
//
// The fold is order sensitive: Write(a); Write(b) and Write(b); Write(a)
// produce different classes. Every Class is written as 8 little-endian bytes
// and Sum appends the element count, so sequences of different length never
// share an encoding.
type Hasher struct {
	d   *xxhash.Digest
	n   uint64
	buf [8]byte
}

// NewHasher returns a Hasher keyed with Seed.
func NewHasher() *Hasher {
	return &Hasher{d: xxhash.NewWithSeed(Seed)}
}

// Reset clears the hasher so it can be reused.
func (h *Hasher) Reset() {
	h.d.ResetWithSeed(Seed)
	h.n = 0
}

// Write appends one class to the fold.
func (h *Hasher) Write(c Class) {
	binary.LittleEndian.PutUint64(h.buf[:], uint64(c))
	_, _ = h.d.Write(h.buf[:])
	h.n++
}

// Sum returns the combined class of everything written so far.
// It does not change the hasher state.
func (h *Hasher) Sum() Class {
	d := *h.d
	var trailer [8]byte
	binary.LittleEndian.PutUint64(trailer[:], h.n)
	_, _ = d.Write(trailer[:])
	return combined(d.Sum64())
}

// Fold combines classes, in order, into one Class.
func Fold(classes ...Class) Class {
	h := NewHasher()
	for _, c := range classes {
		h.Write(c)
	}
	return h.Sum()
}

// Label hashes a text label (a field or key name) into a Class. Labels share
// the combined range, never a leaf class.
func Label(s string) Class {
	d := xxhash.NewWithSeed(Seed)
	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], uint64(len(s)))
	_, _ = d.Write(prefix[:])
	_, _ = d.WriteString(s)
	return combined(d.Sum64())
}

// combined moves a raw hash out of the reserved leaf range.
func combined(sum uint64) Class {
	c := Class(sum)
	if c < reservedLimit {
		c = ^c
	}
	return c
}
