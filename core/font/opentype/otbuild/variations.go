package otbuild

import (
	"fmt"

	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// FVar builds the font variations table: one record per axis, no named
// instances.
func FVar(axes []variation.Axis, nameIDs []uint16) ([]byte, error) {
	w := ot.NewWriter(16 + 20*len(axes))
	w.WriteU16(1)                       // majorVersion
	w.WriteU16(0)                       // minorVersion
	w.WriteU16(16)                      // axesArrayOffset
	w.WriteU16(2)                       // reserved
	w.WriteU16(uint16(len(axes)))       // axisCount
	w.WriteU16(20)                      // axisSize
	w.WriteU16(0)                       // instanceCount
	w.WriteU16(uint16(4 + 4*len(axes))) // instanceSize
	for i, a := range axes {
		if !ot.FitsFixed(a.Min) || !ot.FitsFixed(a.Max) {
			return nil, fmt.Errorf("%w: axis '%s' spans %g…%g", ot.ErrFixedRange, a.Tag, a.Min, a.Max)
		}
		w.WriteTag(a.Tag)
		w.WriteFixed(ot.ToFixed(a.Min))
		w.WriteFixed(ot.ToFixed(a.Default))
		w.WriteFixed(ot.ToFixed(a.Max))
		w.WriteU16(0) // flags
		w.WriteU16(nameIDs[i])
	}
	return w.Bytes(), nil
}

// GDEF builds a version 1.3 glyph definition table, which holds nothing but
// the item variation store.
func GDEF(store *variation.Store) ([]byte, error) {
	w := ot.NewWriter(64)
	w.WriteU16(1) // majorVersion
	w.WriteU16(3) // minorVersion
	w.Zeros(10)   // glyphClassDef, attachList, ligCaretList, markAttachClassDef, markGlyphSetsDef
	pos := w.Reserve32()
	if err := w.PatchOffset32(pos, 0); err != nil {
		return nil, err
	}
	if err := writeItemVariationStore(w, store); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// HVar builds a horizontal metrics variations table which keeps every
// advance constant. Without an advance width mapping, glyph indices address
// the rows of the first item variation data directly, so there is one row
// per glyph, referencing no region.
func HVar(axisCount, numGlyphs int) ([]byte, error) {
	store := &variation.Store{
		AxisCount: axisCount,
		Data:      []variation.VarData{{Rows: make([][]int16, numGlyphs)}},
	}
	w := ot.NewWriter(40)
	w.WriteU16(1) // majorVersion
	w.WriteU16(0) // minorVersion
	pos := w.Reserve32()
	w.Zeros(12) // advanceWidthMapping, lsbMapping, rsbMapping
	if err := w.PatchOffset32(pos, 0); err != nil {
		return nil, err
	}
	if err := writeItemVariationStore(w, store); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// writeItemVariationStore writes a format 1 item variation store. All deltas
// are stored as 16 bit words.
func writeItemVariationStore(w *ot.Writer, store *variation.Store) error {
	start := w.Len()
	w.WriteU16(1) // format
	regionList := w.Reserve32()
	w.WriteU16(uint16(len(store.Data))) // itemVariationDataCount
	dataOffsets := make([]int, len(store.Data))
	for i := range store.Data {
		dataOffsets[i] = w.Reserve32()
	}
	if err := w.PatchOffset32(regionList, start); err != nil {
		return err
	}
	w.WriteU16(uint16(store.AxisCount))    // axisCount
	w.WriteU16(uint16(len(store.Regions))) // regionCount
	for _, r := range store.Regions {
		for i := 0; i < store.AxisCount; i++ {
			var t variation.Tent
			if i < len(r) {
				t = r[i]
			}
			w.WriteF2Dot14(ot.ToF2Dot14(t.Start))
			w.WriteF2Dot14(ot.ToF2Dot14(t.Peak))
			w.WriteF2Dot14(ot.ToF2Dot14(t.End))
		}
	}
	for i, data := range store.Data {
		if err := w.PatchOffset32(dataOffsets[i], start); err != nil {
			return err
		}
		n := uint16(len(data.RegionIndexes))
		w.WriteU16(uint16(len(data.Rows))) // itemCount
		w.WriteU16(n)                      // wordDeltaCount
		w.WriteU16(n)                      // regionIndexCount
		for _, ri := range data.RegionIndexes {
			w.WriteU16(ri)
		}
		for _, row := range data.Rows {
			for j := 0; j < int(n); j++ {
				var d int16
				if j < len(row) {
					d = row[j]
				}
				w.WriteI16(d)
			}
		}
	}
	return nil
}
