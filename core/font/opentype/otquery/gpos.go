package otquery

import (
	"math/bits"
	"sort"

	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// LanguageSystem is a script/language pair from a layout table's script
// list. The default language system of a script has language 'dflt'.
type LanguageSystem struct {
	Script   ot.Tag
	Language ot.Tag
}

// LanguageSystems lists the language systems of table 'GPOS' in
// script list order.
func LanguageSystems(otf *Font) []LanguageSystem {
	gpos := otf.Table(ot.T("GPOS"))
	if gpos == nil {
		return nil
	}
	scripts := gpos.From(int(gpos.U16(4)))
	var lss []LanguageSystem
	for i := 0; i < int(scripts.U16(0)); i++ {
		tag := scripts.Tag(2 + 6*i)
		script := scripts.From(int(scripts.U16(6 + 6*i)))
		if script.U16(0) != 0 {
			lss = append(lss, LanguageSystem{tag, ot.T("dflt")})
		}
		for j := 0; j < int(script.U16(2)); j++ {
			lss = append(lss, LanguageSystem{tag, script.Tag(4 + 6*j)})
		}
	}
	return lss
}

// FeatureTags lists the distinct feature tags of table 'GPOS', in feature
// list order.
func FeatureTags(otf *Font) []string {
	features := featureList(otf)
	var tags []string
	seen := make(map[ot.Tag]bool)
	for i := 0; i < int(features.U16(0)); i++ {
		tag := features.Tag(2 + 6*i)
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag.String())
		}
	}
	return tags
}

// FeatureLookups returns the indices of the GPOS lookups a feature
// references, sorted and without duplicates.
func FeatureLookups(otf *Font, feature ot.Tag) []int {
	features := featureList(otf)
	seen := make(map[int]bool)
	var lookups []int
	for i := 0; i < int(features.U16(0)); i++ {
		if features.Tag(2+6*i) != feature {
			continue
		}
		f := features.From(int(features.U16(6 + 6*i)))
		for j := 0; j < int(f.U16(2)); j++ {
			inx := int(f.U16(4 + 2*j))
			if !seen[inx] {
				seen[inx] = true
				lookups = append(lookups, inx)
			}
		}
	}
	sort.Ints(lookups)
	return lookups
}

func featureList(otf *Font) ot.Segment {
	gpos := otf.Table(ot.T("GPOS"))
	if gpos == nil {
		return nil
	}
	return gpos.From(int(gpos.U16(6)))
}

// PairAdjustment returns the x-advance adjustment a feature applies to a pair
// of glyphs, at a normalized location in the design space (nil for the
// default location). Adjustments of all lookups of the feature add up.
// found is false if no lookup of the feature covers the pair.
func PairAdjustment(otf *Font, feature ot.Tag, first, second ot.GlyphIndex,
	loc variation.Location) (adjust float64, found bool) {
	//
	gpos := otf.Table(ot.T("GPOS"))
	if gpos == nil {
		return 0, false
	}
	var store *variation.Store
	if len(loc) > 0 {
		var err error
		if store, err = VariationStore(otf); err != nil {
			tracer().Errorf("cannot read variation store: %v", err)
		}
	}
	lookups := gpos.From(int(gpos.U16(8)))
	for _, inx := range FeatureLookups(otf, feature) {
		if inx >= int(lookups.U16(0)) {
			continue
		}
		lookup := lookups.From(int(lookups.U16(2 + 2*inx)))
		typ := lookup.U16(0)
		for k := 0; k < int(lookup.U16(4)); k++ {
			st := lookup.From(int(lookup.U16(6 + 2*k)))
			if typ == 9 { // extension
				if st.U16(2) != 2 {
					break
				}
				st = st.From(int(st.U32(4)))
			} else if typ != 2 {
				break
			}
			if v, ok := pairPosValue(st, first, second, store, loc); ok {
				adjust += v
				found = true
				break // the first subtable matching the pair wins
			}
		}
	}
	return adjust, found
}

const (
	valueXAdvance   uint16 = 0x0004
	valueXAdvDevice uint16 = 0x0040
)

func valueRecordSize(format uint16) int {
	return 2 * bits.OnesCount16(format)
}

// xAdvance reads the x-advance of the value record at rec, including its
// variation. Device offsets are relative to parent, which is the PairSet
// for format 1 and the subtable for format 2.
func xAdvance(parent, rec ot.Segment, format uint16, store *variation.Store, loc variation.Location) float64 {
	if format&valueXAdvance == 0 {
		return 0
	}
	v := float64(rec.I16(2 * bits.OnesCount16(format&(valueXAdvance-1))))
	if format&valueXAdvDevice == 0 || store == nil {
		return v
	}
	off := int(rec.U16(2 * bits.OnesCount16(format&(valueXAdvDevice-1))))
	if off == 0 {
		return v
	}
	dev := parent.From(off)
	if dev.U16(4) != 0x8000 { // VariationIndex table
		return v
	}
	idx := variation.VarIdx{Outer: dev.U16(0), Inner: dev.U16(2)}
	return v + store.Evaluate(idx, loc)
}

func pairPosValue(st ot.Segment, first, second ot.GlyphIndex, store *variation.Store,
	loc variation.Location) (float64, bool) {
	//
	ci, ok := coverageIndex(st.From(int(st.U16(2))), first)
	if !ok {
		return 0, false
	}
	format1, format2 := st.U16(4), st.U16(6)
	size1, size2 := valueRecordSize(format1), valueRecordSize(format2)
	switch st.U16(0) {
	case 1:
		if ci >= int(st.U16(8)) {
			return 0, false
		}
		set := st.From(int(st.U16(10 + 2*ci)))
		recSize := 2 + size1 + size2
		for i := 0; i < int(set.U16(0)); i++ {
			rec := set.From(2 + i*recSize)
			if ot.GlyphIndex(rec.U16(0)) == second {
				return xAdvance(set, rec.From(2), format1, store, loc), true
			}
		}
	case 2:
		c1 := classOf(st.From(int(st.U16(8))), first)
		c2 := classOf(st.From(int(st.U16(10))), second)
		count1, count2 := int(st.U16(12)), int(st.U16(14))
		if c1 >= count1 || c2 >= count2 {
			return 0, false
		}
		rec := st.From(16 + (c1*count2+c2)*(size1+size2))
		return xAdvance(st, rec, format1, store, loc), true
	}
	return 0, false
}

func coverageIndex(cov ot.Segment, g ot.GlyphIndex) (int, bool) {
	switch cov.U16(0) {
	case 1:
		glyphs := cov.Glyphs(4, int(cov.U16(2)))
		i := sort.Search(len(glyphs), func(i int) bool { return glyphs[i] >= g })
		return i, i < len(glyphs) && glyphs[i] == g
	case 2:
		for i := 0; i < int(cov.U16(2)); i++ {
			rec := cov.From(4 + 6*i)
			start, end := ot.GlyphIndex(rec.U16(0)), ot.GlyphIndex(rec.U16(2))
			if g >= start && g <= end {
				return int(rec.U16(4)) + int(g-start), true
			}
		}
	}
	return 0, false
}

func classOf(cd ot.Segment, g ot.GlyphIndex) int {
	switch cd.U16(0) {
	case 1:
		start := ot.GlyphIndex(cd.U16(2))
		count := int(cd.U16(4))
		if g >= start && int(g-start) < count {
			return int(cd.U16(6 + 2*int(g-start)))
		}
	case 2:
		for i := 0; i < int(cd.U16(2)); i++ {
			rec := cd.From(4 + 6*i)
			if g >= ot.GlyphIndex(rec.U16(0)) && g <= ot.GlyphIndex(rec.U16(2)) {
				return int(rec.U16(4))
			}
		}
	}
	return 0
}
