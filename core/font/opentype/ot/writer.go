package ot

import (
	"errors"
	"fmt"
	"math"
)

// Writer accumulates big-endian binary data for a font table.
//
// Offsets in OpenType are relative to some anchor, usually the start of the
// enclosing table or sub-table. Writer supports this by reserving room for an
// offset (Reserve16, Reserve32) and patching it later, once the position of
// the target is known (Patch16, Patch32).
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with an initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the bytes written so far. The slice is not copied.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteU8 appends a byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteU16 appends a big-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

// WriteI16 appends a big-endian int16.
func (w *Writer) WriteI16(v int16) {
	w.WriteU16(uint16(v))
}

// WriteU32 appends a big-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteI64 appends a big-endian int64, e.g. for LONGDATETIME fields.
func (w *Writer) WriteI64(v int64) {
	w.WriteU32(uint32(uint64(v) >> 32))
	w.WriteU32(uint32(v))
}

// WriteTag appends a tag.
func (w *Writer) WriteTag(t Tag) {
	w.WriteU32(uint32(t))
}

// WriteF2Dot14 appends a 2.14 fixed-point number.
func (w *Writer) WriteF2Dot14(f F2Dot14) {
	w.WriteU16(uint16(f))
}

// WriteFixed appends a 16.16 fixed-point number.
func (w *Writer) WriteFixed(f Fixed) {
	w.WriteU32(uint32(f))
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Zeros appends n zero bytes.
func (w *Writer) Zeros(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// Align4 pads with zeros to the next multiple of 4 and returns the number of
// padding bytes.
func (w *Writer) Align4() int {
	pad := (4 - len(w.buf)&3) & 3
	w.Zeros(pad)
	return pad
}

// Reserve16 appends a zero 16 bit placeholder and returns its position.
func (w *Writer) Reserve16() int {
	pos := len(w.buf)
	w.WriteU16(0)
	return pos
}

// Reserve32 appends a zero 32 bit placeholder and returns its position.
func (w *Writer) Reserve32() int {
	pos := len(w.buf)
	w.WriteU32(0)
	return pos
}

// Patch16 overwrites the 16 bit value at pos.
func (w *Writer) Patch16(pos int, v uint16) {
	w.buf[pos] = byte(v >> 8)
	w.buf[pos+1] = byte(v)
}

// Patch32 overwrites the 32 bit value at pos.
func (w *Writer) Patch32(pos int, v uint32) {
	w.buf[pos] = byte(v >> 24)
	w.buf[pos+1] = byte(v >> 16)
	w.buf[pos+2] = byte(v >> 8)
	w.buf[pos+3] = byte(v)
}

// ErrOffsetOverflow is returned if an offset does not fit into its field.
var ErrOffsetOverflow = errors.New("offset overflow")

// ErrFixedRange is returned if a value does not fit into 16.16 fixed point.
var ErrFixedRange = errors.New("value out of 16.16 fixed point range")

// PatchOffset16 writes the distance between anchor and the current end of
// data into the placeholder at pos. It fails if the distance does not fit
// into an Offset16.
func (w *Writer) PatchOffset16(pos, anchor int) error {
	off := len(w.buf) - anchor
	if off < 0 || off > math.MaxUint16 {
		tracer().Debugf("Offset16 overflow: %d bytes from anchor", off)
		return fmt.Errorf("%w: offset %d from anchor %d as Offset16", ErrOffsetOverflow, off, anchor)
	}
	w.Patch16(pos, uint16(off))
	return nil
}

// PatchOffset32 is the 32 bit variant of PatchOffset16.
func (w *Writer) PatchOffset32(pos, anchor int) error {
	off := len(w.buf) - anchor
	if off < 0 || int64(off) > math.MaxUint32 {
		return fmt.Errorf("%w: offset %d from anchor %d as Offset32", ErrOffsetOverflow, off, anchor)
	}
	w.Patch32(pos, uint32(off))
	return nil
}
