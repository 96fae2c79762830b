package otbuild

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// LanguageSystem is a script/language pair a font supports.
type LanguageSystem struct {
	Script   ot.Tag
	Language ot.Tag // 'dflt' for the default language system of the script
}

// Feature is a feature record. Lookups are indices into the lookup list.
type Feature struct {
	Tag     ot.Tag
	Lookups []uint16
}

// PairAdjustment is the x-advance adjustment of a glyph pair. Variable
// adjustments carry the index of their deltas in the item variation store.
type PairAdjustment struct {
	First    ot.GlyphIndex
	Second   ot.GlyphIndex
	XAdvance int16
	Device   *variation.VarIdx
}

// PairLookup is a pair positioning lookup.
type PairLookup struct {
	Pairs []PairAdjustment
}

// IsVariable is a predicate: does any pair of l carry deltas?
func (l PairLookup) IsVariable() bool {
	for _, p := range l.Pairs {
		if p.Device != nil {
			return true
		}
	}
	return false
}

// Layout is the content of the GPOS table. The language systems and
// features are shared with the (empty) GSUB table.
//
// Every feature applies to every language system.
type Layout struct {
	LanguageSystems []LanguageSystem
	Features        []Feature
	Lookups         []PairLookup
}

var dflt = ot.T("dflt")

// scripts collects language systems by script tag, both in tag order.
func (l *Layout) scripts() *treemap.Map {
	scripts := treemap.NewWithStringComparator()
	for _, ls := range l.LanguageSystems {
		key := ls.Script.String()
		langs, found := scripts.Get(key)
		if !found {
			langs = treemap.NewWithStringComparator()
			scripts.Put(key, langs)
		}
		langs.(*treemap.Map).Put(ls.Language.String(), ls.Language)
	}
	return scripts
}

// features returns the features with lookups, in tag order.
func (l *Layout) features() []Feature {
	m := treemap.NewWithStringComparator()
	for _, f := range l.Features {
		if len(f.Lookups) == 0 {
			tracer().Debugf("feature '%s' has no lookups and is dropped", f.Tag)
			continue
		}
		m.Put(f.Tag.String(), f)
	}
	features := make([]Feature, 0, m.Size())
	it := m.Iterator()
	for it.Next() {
		features = append(features, it.Value().(Feature))
	}
	return features
}

// writeLayoutHeader writes a version 1.0 GSUB/GPOS header followed by the
// script list and the feature list. It returns the position of the lookup
// list offset, to be patched by the caller.
func writeLayoutHeader(w *ot.Writer, scripts *treemap.Map, features []Feature) (int, error) {
	w.WriteU16(1) // majorVersion
	w.WriteU16(0) // minorVersion
	scriptList := w.Reserve16()
	featureList := w.Reserve16()
	lookupList := w.Reserve16()
	if err := w.PatchOffset16(scriptList, 0); err != nil {
		return 0, err
	}
	if err := writeScriptList(w, scripts, len(features)); err != nil {
		return 0, err
	}
	if err := w.PatchOffset16(featureList, 0); err != nil {
		return 0, err
	}
	if err := writeFeatureList(w, features); err != nil {
		return 0, err
	}
	return lookupList, nil
}

// writeScriptList writes a script list. Every language system references
// all featureCount features.
func writeScriptList(w *ot.Writer, scripts *treemap.Map, featureCount int) error {
	start := w.Len()
	w.WriteU16(uint16(scripts.Size())) // scriptCount
	offsets := make([]int, 0, scripts.Size())
	it := scripts.Iterator()
	for it.Next() {
		w.WriteTag(ot.T(it.Key().(string)))
		offsets = append(offsets, w.Reserve16())
	}
	it = scripts.Iterator()
	for i := 0; it.Next(); i++ {
		if err := w.PatchOffset16(offsets[i], start); err != nil {
			return err
		}
		if err := writeScript(w, it.Value().(*treemap.Map), featureCount); err != nil {
			return err
		}
	}
	return nil
}

func writeScript(w *ot.Writer, langs *treemap.Map, featureCount int) error {
	start := w.Len()
	defaultLangSys := w.Reserve16()
	_, hasDefault := langs.Get(dflt.String())
	count := langs.Size()
	if hasDefault {
		count--
	}
	w.WriteU16(uint16(count)) // langSysCount
	var offsets []int
	it := langs.Iterator()
	for it.Next() {
		if tag := it.Value().(ot.Tag); tag != dflt {
			w.WriteTag(tag)
			offsets = append(offsets, w.Reserve16())
		}
	}
	if hasDefault {
		if err := w.PatchOffset16(defaultLangSys, start); err != nil {
			return err
		}
		writeLangSys(w, featureCount)
	}
	for _, pos := range offsets {
		if err := w.PatchOffset16(pos, start); err != nil {
			return err
		}
		writeLangSys(w, featureCount)
	}
	return nil
}

func writeLangSys(w *ot.Writer, featureCount int) {
	w.WriteU16(0)                    // lookupOrderOffset
	w.WriteU16(0xFFFF)               // requiredFeatureIndex: none
	w.WriteU16(uint16(featureCount)) // featureIndexCount
	for i := 0; i < featureCount; i++ {
		w.WriteU16(uint16(i))
	}
}

func writeFeatureList(w *ot.Writer, features []Feature) error {
	start := w.Len()
	w.WriteU16(uint16(len(features))) // featureCount
	offsets := make([]int, len(features))
	for i, f := range features {
		w.WriteTag(f.Tag)
		offsets[i] = w.Reserve16()
	}
	for i, f := range features {
		if err := w.PatchOffset16(offsets[i], start); err != nil {
			return err
		}
		w.WriteU16(0)                      // featureParamsOffset
		w.WriteU16(uint16(len(f.Lookups))) // lookupIndexCount
		for _, inx := range f.Lookups {
			w.WriteU16(inx)
		}
	}
	return nil
}

// GSUB builds a substitution table without lookups. It carries the same
// script list as GPOS, with no features.
func GSUB(l *Layout) ([]byte, error) {
	w := ot.NewWriter(64)
	lookupList, err := writeLayoutHeader(w, l.scripts(), nil)
	if err != nil {
		return nil, err
	}
	if err := w.PatchOffset16(lookupList, 0); err != nil {
		return nil, err
	}
	w.WriteU16(0) // lookupCount
	return w.Bytes(), nil
}
