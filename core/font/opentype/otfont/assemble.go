package otfont

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"github.com/npillmayer/shaperfont/core/font/opentype/otbuild"
)

// SFNTVersionCFF is the sfnt version of fonts with CFF outlines ('OTTO').
// Shaping fonts have no outlines at all, but the CFF flavor does not
// require glyf and loca tables.
const SFNTVersionCFF uint32 = 0x4F54544F

// ChecksumMagic is the constant the checksums of a font add up to.
const ChecksumMagic uint32 = 0xB1B0AFBA

const (
	headerSize      = 12
	tableRecordSize = 16
)

// Errors returned by Assemble.
var (
	ErrNoTables = errors.New("font has no tables")
	ErrNoHead   = errors.New("font has no valid 'head' table")
)

// Assemble writes the table directory followed by the tables. 'head' must
// be present; its checksumAdjustment field is overwritten.
//
// From the OpenType documentation: "Table records must be sorted in ascending order by tag",
// and "all tables must begin on four-byte boundaries, and any remaining
// space between tables is padded with zeros".
func Assemble(tables []otbuild.Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, ErrNoTables
	}
	if len(tables) > math.MaxUint16/tableRecordSize {
		return nil, fmt.Errorf("too many tables for a font: %d", len(tables))
	}
	sorted := append([]otbuild.Table(nil), tables...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tag < sorted[j].Tag })
	head := -1
	for i, t := range sorted {
		if i > 0 && t.Tag == sorted[i-1].Tag {
			return nil, fmt.Errorf("duplicate table '%s'", t.Tag)
		}
		if t.Tag == ot.T("head") {
			head = i
		}
	}
	if head < 0 || len(sorted[head].Data) < 12 {
		return nil, ErrNoHead
	}
	numTables := uint16(len(sorted))
	entrySelector := uint16(bits.Len16(numTables) - 1) // floor(log2(numTables))
	searchRange := uint16(1) << (entrySelector + 4)
	size := headerSize + tableRecordSize*len(sorted)
	for _, t := range sorted {
		size += (len(t.Data) + 3) &^ 3
	}
	w := ot.NewWriter(size)
	w.WriteU32(SFNTVersionCFF)
	w.WriteU16(numTables)                  // numTables
	w.WriteU16(searchRange)                // searchRange
	w.WriteU16(entrySelector)              // entrySelector
	w.WriteU16(numTables*16 - searchRange) // rangeShift
	// table records are filled in after the tables have been written
	w.Zeros(tableRecordSize * len(sorted))
	offsets := make([]int, len(sorted))
	var adjustment int
	for i, t := range sorted {
		offsets[i] = w.Len()
		if i == head {
			adjustment = w.Len() + 8
		}
		w.WriteBytes(t.Data)
		w.Align4()
	}
	buf := w.Bytes()
	// checksumAdjustment has to be zero while checksums are calculated
	buf[adjustment], buf[adjustment+1], buf[adjustment+2], buf[adjustment+3] = 0, 0, 0, 0
	for i, t := range sorted {
		pos := headerSize + i*tableRecordSize
		padded := (len(t.Data) + 3) &^ 3
		checksum := ot.Checksum(buf[offsets[i] : offsets[i]+padded])
		w.Patch32(pos, uint32(t.Tag))
		w.Patch32(pos+4, checksum)
		w.Patch32(pos+8, uint32(offsets[i]))
		w.Patch32(pos+12, uint32(len(t.Data)))
		tracer().Debugf("table '%s' at %d, %d bytes, checksum %08x", t.Tag, offsets[i], len(t.Data), checksum)
	}
	w.Patch32(adjustment, ChecksumMagic-ot.Checksum(buf))
	tracer().Infof("assembled font with %d tables, %d bytes", numTables, w.Len())
	return w.Bytes(), nil
}
