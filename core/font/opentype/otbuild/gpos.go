package otbuild

import (
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// Value format flags, lookup types and formats of GPOS.
const (
	ValueXAdvance   uint16 = 0x0004
	ValueXAdvDevice uint16 = 0x0040

	LookupPairPos   uint16 = 2
	LookupExtension uint16 = 9

	deltaFormatVariationIndex uint16 = 0x8000
)

// maxSubtableSize keeps every offset inside a PairPos subtable within the
// range of Offset16.
const maxSubtableSize = math.MaxUint16

// GPOS builds the glyph positioning table. Lookups appear in the lookup list
// in the order of l.Lookups. If the lookups are too large to be addressed
// by 16 bit offsets, all of them are wrapped into extension lookups.
func GPOS(l *Layout) ([]byte, error) {
	subtables := make([][][]byte, len(l.Lookups))
	for i, lookup := range l.Lookups {
		st, err := pairPosSubtables(lookup)
		if err != nil {
			return nil, err
		}
		subtables[i] = st
	}
	w := ot.NewWriter(1024)
	lookupListPos, err := writeLayoutHeader(w, l.scripts(), l.features())
	if err != nil {
		return nil, err
	}
	lookups, err := lookupList(subtables, false)
	if err != nil {
		tracer().Infof("GPOS lookups exceed 16 bit offsets, switching to extension lookups")
		if lookups, err = lookupList(subtables, true); err != nil {
			return nil, err
		}
	}
	if err := w.PatchOffset16(lookupListPos, 0); err != nil {
		return nil, err
	}
	w.WriteBytes(lookups)
	tracer().Debugf("GPOS table with %d lookups, %d bytes", len(l.Lookups), w.Len())
	return w.Bytes(), nil
}

// lookupList writes a lookup list of pair positioning lookups, given their
// subtables.
func lookupList(subtables [][][]byte, extension bool) ([]byte, error) {
	w := ot.NewWriter(1024)
	w.WriteU16(uint16(len(subtables))) // lookupCount
	offsets := make([]int, len(subtables))
	for i := range subtables {
		offsets[i] = w.Reserve16()
	}
	type deferred struct {
		pos, anchor int
		data        []byte
	}
	var tail []deferred
	for i, sts := range subtables {
		if err := w.PatchOffset16(offsets[i], 0); err != nil {
			return nil, err
		}
		start := w.Len()
		if extension {
			w.WriteU16(LookupExtension)
		} else {
			w.WriteU16(LookupPairPos)
		}
		w.WriteU16(0)                // lookupFlag
		w.WriteU16(uint16(len(sts))) // subTableCount
		stOffsets := make([]int, len(sts))
		for j := range sts {
			stOffsets[j] = w.Reserve16()
		}
		for j, st := range sts {
			if err := w.PatchOffset16(stOffsets[j], start); err != nil {
				return nil, err
			}
			if !extension {
				w.WriteBytes(st)
				continue
			}
			ext := w.Len()
			w.WriteU16(1)             // posFormat
			w.WriteU16(LookupPairPos) // extensionLookupType
			tail = append(tail, deferred{pos: w.Reserve32(), anchor: ext, data: st})
		}
	}
	for _, d := range tail {
		if err := w.PatchOffset32(d.pos, d.anchor); err != nil {
			return nil, err
		}
		w.WriteBytes(d.data)
	}
	return w.Bytes(), nil
}

// pairPosSubtables splits the pairs of a lookup into PairPos format 1
// subtables, each small enough for 16 bit offsets. If the subtables of a
// lookup split the pairs of one first glyph, the shaping engine will try
// them in turn.
func pairPosSubtables(lookup PairLookup) ([][]byte, error) {
	pairs := append([]PairAdjustment(nil), lookup.Pairs...)
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].First != pairs[j].First {
			return pairs[i].First < pairs[j].First
		}
		return pairs[i].Second < pairs[j].Second
	})
	variable := lookup.IsVariable()
	recordSize := 4
	if variable {
		recordSize = 6
	}
	var subtables [][]byte
	flush := func(chunk []PairAdjustment) error {
		st, err := pairPosSubtable(chunk, variable)
		if err != nil {
			return err
		}
		subtables = append(subtables, st)
		return nil
	}
	from, size := 0, 14
	devices := make(map[variation.VarIdx]bool)
	for i, p := range pairs {
		add := recordSize
		if i == from || p.First != pairs[i-1].First {
			add += 6 // pairSetOffset, coverage entry, pairValueCount
		}
		if p.Device != nil && !devices[*p.Device] {
			add += 6
		}
		if i > from && size+add > maxSubtableSize {
			if err := flush(pairs[from:i]); err != nil {
				return nil, err
			}
			from, size = i, 14
			devices = make(map[variation.VarIdx]bool)
			add = recordSize + 6
			if p.Device != nil {
				add += 6
			}
		}
		size += add
		if p.Device != nil {
			devices[*p.Device] = true
		}
	}
	if from < len(pairs) {
		if err := flush(pairs[from:]); err != nil {
			return nil, err
		}
	}
	return subtables, nil
}

// pairPosSubtable writes a PairPos format 1 subtable for pairs sorted by
// glyph indices. Variation index tables are placed after the pair sets and
// shared between pairs with the same deltas. Device offsets of a value
// record count from the start of its PairSet.
func pairPosSubtable(pairs []PairAdjustment, variable bool) ([]byte, error) {
	var firsts []ot.GlyphIndex
	var sets [][]PairAdjustment
	for _, p := range pairs {
		if n := len(firsts); n == 0 || firsts[n-1] != p.First {
			firsts = append(firsts, p.First)
			sets = append(sets, nil)
		}
		sets[len(sets)-1] = append(sets[len(sets)-1], p)
	}
	valueFormat := ValueXAdvance
	if variable {
		valueFormat |= ValueXAdvDevice
	}
	w := ot.NewWriter(16 + 8*len(pairs))
	w.WriteU16(1) // posFormat
	coverage := w.Reserve16()
	w.WriteU16(valueFormat)       // valueFormat1
	w.WriteU16(0)                 // valueFormat2
	w.WriteU16(uint16(len(sets))) // pairSetCount
	setOffsets := make([]int, len(sets))
	for i := range sets {
		setOffsets[i] = w.Reserve16()
	}
	if err := w.PatchOffset16(coverage, 0); err != nil {
		return nil, err
	}
	writeCoverage(w, firsts)
	type devicePatch struct {
		pos, set int
		idx      variation.VarIdx
	}
	var patches []devicePatch
	for i, set := range sets {
		if err := w.PatchOffset16(setOffsets[i], 0); err != nil {
			return nil, err
		}
		setStart := w.Len()
		w.WriteU16(uint16(len(set))) // pairValueCount
		for _, p := range set {
			w.WriteU16(uint16(p.Second)) // secondGlyph
			w.WriteI16(p.XAdvance)       // valueRecord1.xAdvance
			if !variable {
				continue
			}
			if p.Device == nil {
				w.WriteU16(0) // valueRecord1.xAdvDeviceOffset
				continue
			}
			patches = append(patches, devicePatch{pos: w.Reserve16(), set: setStart, idx: *p.Device})
		}
	}
	written := make(map[variation.VarIdx]int)
	for _, d := range patches {
		if devStart, ok := written[d.idx]; ok {
			off := devStart - d.set
			if off > math.MaxUint16 {
				return nil, fmt.Errorf("%w: device table %d bytes behind its pair set", ot.ErrOffsetOverflow, off)
			}
			w.Patch16(d.pos, uint16(off))
			continue
		}
		written[d.idx] = w.Len()
		if err := w.PatchOffset16(d.pos, d.set); err != nil {
			return nil, err
		}
		w.WriteU16(d.idx.Outer) // deltaSetOuterIndex
		w.WriteU16(d.idx.Inner) // deltaSetInnerIndex
		w.WriteU16(deltaFormatVariationIndex)
	}
	return w.Bytes(), nil
}

// writeCoverage writes a format 1 coverage table for sorted glyphs.
func writeCoverage(w *ot.Writer, glyphs []ot.GlyphIndex) {
	w.WriteU16(1)                   // coverageFormat
	w.WriteU16(uint16(len(glyphs))) // glyphCount
	for _, g := range glyphs {
		w.WriteU16(uint16(g))
	}
}
