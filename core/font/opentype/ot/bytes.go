package ot

import (
	"errors"
)

// Reading bytes from a font's binary representation

// ErrBufferBounds is returned for reads outside of a segment.
var ErrBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// --- Segments --------------------------------------------------------------

// Segment is a segment of font data, usually a table or a sub-table.
// Offsets given to its methods are relative to the start of the segment.
//
// The unchecked accessors (U16, I16, U32) return 0 for reads out of bounds,
// which lets clients read along a chain of offsets and check once at the end.
// Use View and the checked accessors where an error must stop processing.
type Segment []byte

// Size returns the size of the segment in bytes.
func (b Segment) Size() int {
	return len(b)
}

// Slice returns a sub-segment, clipping the bounds to the segment.
func (b Segment) Slice(from int, to int) Segment {
	if from < 0 {
		from = 0
	}
	if to > len(b) {
		to = len(b)
	}
	if from > to {
		return Segment{}
	}
	return b[from:to]
}

// From returns the sub-segment starting at offset, or an empty segment if
// offset is out of bounds.
func (b Segment) From(offset int) Segment {
	if offset < 0 || offset > len(b) {
		return Segment{}
	}
	return b[offset:]
}

// View returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b Segment) View(offset, n int) (Segment, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, ErrBufferBounds
	}
	return b[offset : offset+n], nil
}

// Uint16 returns the uint16 in b at the relative offset i.
func (b Segment) Uint16(i int) (uint16, error) {
	buf, err := b.View(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// Uint32 returns the uint32 in b at the relative offset i.
func (b Segment) Uint32(i int) (uint32, error) {
	buf, err := b.View(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// U16 is an unchecked version of Uint16.
func (b Segment) U16(i int) uint16 {
	n, err := b.Uint16(i)
	if err != nil {
		return 0
	}
	return n
}

// I16 reads a signed 16 bit value, unchecked.
func (b Segment) I16(i int) int16 {
	return int16(b.U16(i))
}

// U32 is an unchecked version of Uint32.
func (b Segment) U32(i int) uint32 {
	n, err := b.Uint32(i)
	if err != nil {
		return 0
	}
	return n
}

// Tag reads a tag at offset i, unchecked.
func (b Segment) Tag(i int) Tag {
	return Tag(b.U32(i))
}

// Glyphs converts count consecutive 16 bit entries at offset i to glyph
// indices. Entries out of bounds are dropped.
func (b Segment) Glyphs(i, count int) []GlyphIndex {
	glyphs := make([]GlyphIndex, 0, count)
	for j := 0; j < count; j++ {
		g, err := b.Uint16(i + 2*j)
		if err != nil {
			break
		}
		glyphs = append(glyphs, GlyphIndex(g))
	}
	return glyphs
}

// --- Checksums -------------------------------------------------------------

// Checksum calculates the OpenType table checksum of b: the sum of its
// big-endian uint32 words, with b padded by zeros to a multiple of 4.
func Checksum(b []byte) uint32 {
	var sum uint32
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		sum += u32(b[i:])
	}
	if rest := len(b) - n; rest > 0 {
		var last [4]byte
		copy(last[:], b[n:])
		sum += u32(last[:])
	}
	return sum
}
