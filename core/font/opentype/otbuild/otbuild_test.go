package otbuild

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/unicode"
)

func TestMetricTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	m := Metrics{UnitsPerEm: 1000, Advance: 500, NumGlyphs: 3}
	head := ot.Segment(Head(m))
	require.Equal(t, 54, head.Size())
	assert.Equal(t, uint32(0x5F0F3CF5), head.U32(12), "magic number")
	assert.Equal(t, uint16(1000), head.U16(18), "unitsPerEm")
	assert.Equal(t, uint32(0), head.U32(8), "checksum adjustment is left to the assembler")
	hhea := ot.Segment(HHea(m))
	require.Equal(t, 36, hhea.Size())
	assert.Equal(t, int16(800), hhea.I16(4), "ascender")
	assert.Equal(t, int16(-200), hhea.I16(6), "descender")
	assert.Equal(t, uint16(500), hhea.U16(10), "advanceWidthMax")
	assert.Equal(t, uint16(1), hhea.U16(34), "numberOfHMetrics")
	hmtx := ot.Segment(HMtx(m))
	assert.Equal(t, 8, hmtx.Size())
	assert.Equal(t, uint16(500), hmtx.U16(0))
	maxp := ot.Segment(MaxP(m))
	assert.Equal(t, 6, maxp.Size())
	assert.Equal(t, uint16(3), maxp.U16(4))
}

func TestPostGlyphNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	m := Metrics{UnitsPerEm: 1000, Advance: 500, NumGlyphs: 4}
	b, err := Post(m, []string{".notdef", "A", "V", "A.alt"})
	require.NoError(t, err)
	post := ot.Segment(b)
	require.Equal(t, 52, post.Size())
	assert.Equal(t, uint32(0x00020000), post.U32(0))
	assert.Equal(t, uint16(4), post.U16(32))
	assert.Equal(t, []ot.GlyphIndex{0, 258, 259, 260}, post.Glyphs(34, 4))
	assert.Equal(t, "\x01A\x01V\x05A.alt", string(post[42:]))
	//
	_, err = Post(m, []string{".notdef", strings.Repeat("x", 256)})
	assert.ErrorIs(t, err, ErrGlyphName)
}

func TestNameTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	names := DefaultNames("My (Test) Font")
	ps, _ := names.Get(NamePostScript)
	assert.Equal(t, "MyTestFont-Regular", ps)
	ids := names.AddAxes([]variation.Axis{{Tag: ot.T("wght")}, {Tag: ot.T("XOPQ")}})
	assert.Equal(t, []uint16{256, 257}, ids)
	axis, _ := names.Get(256)
	assert.Equal(t, "Weight", axis)
	b, err := names.Table()
	require.NoError(t, err)
	name := ot.Segment(b)
	count := int(name.U16(2))
	require.Equal(t, 8, count)
	storage := int(name.U16(4))
	assert.Equal(t, 6+12*count, storage)
	// first record is the family name
	rec := name.From(6)
	assert.Equal(t, uint16(3), rec.U16(0), "platform")
	assert.Equal(t, uint16(NameFamily), rec.U16(6))
	length, off := int(rec.U16(8)), int(rec.U16(10))
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	family, err := dec.Bytes(name[storage+off : storage+off+length])
	require.NoError(t, err)
	assert.Equal(t, "My (Test) Font", string(family))
	// last record is the second axis name
	rec = name.From(6 + 12*(count-1))
	assert.Equal(t, uint16(257), rec.U16(6))
	assert.Equal(t, uint16(8), rec.U16(8), "'XOPQ' takes 8 bytes in UTF-16")
}

func TestNameTableOverflow(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	names := DefaultNames(strings.Repeat("x", 20000)) // 40000 bytes in UTF-16
	_, err := names.Table()
	assert.ErrorIs(t, err, ot.ErrOffsetOverflow, "full name starts behind 64k of storage")
	names = DefaultNames(strings.Repeat("x", 40000))
	_, err = names.Table()
	assert.ErrorIs(t, err, ot.ErrOffsetOverflow, "family name is longer than 64k")
}

func TestAxisNames(t *testing.T) {
	assert.Equal(t, "Optical Size", AxisName(ot.T("opsz")))
	assert.Equal(t, "GRAD", AxisName(ot.T("GRAD")))
	assert.Equal(t, "ab", AxisName(ot.T("ab")))
}

// --- GPOS ------------------------------------------------------------------

func at16(s ot.Segment, pos int) ot.Segment {
	return s.From(int(s.U16(pos)))
}

func kerningLayout(device *variation.VarIdx) *Layout {
	return &Layout{
		LanguageSystems: []LanguageSystem{
			{ot.T("latn"), ot.T("dflt")},
			{ot.T("latn"), ot.T("DEU")},
			{ot.T("DFLT"), ot.T("dflt")},
		},
		Features: []Feature{
			{Tag: ot.T("kern"), Lookups: []uint16{0}},
			{Tag: ot.T("aalt")},
		},
		Lookups: []PairLookup{{Pairs: []PairAdjustment{
			{First: 2, Second: 1, XAdvance: -40, Device: device},
			{First: 1, Second: 3, XAdvance: -20},
			{First: 1, Second: 2, XAdvance: -50, Device: device},
		}}},
	}
}

func TestGPOSScriptsAndFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	b, err := GPOS(kerningLayout(nil))
	require.NoError(t, err)
	gpos := ot.Segment(b)
	assert.Equal(t, uint16(1), gpos.U16(0))
	scripts := at16(gpos, 4)
	require.Equal(t, uint16(2), scripts.U16(0))
	assert.Equal(t, ot.T("DFLT"), scripts.Tag(2))
	assert.Equal(t, ot.T("latn"), scripts.Tag(8))
	latn := at16(scripts, 12)
	assert.NotZero(t, latn.U16(0), "latn has a default language system")
	require.Equal(t, uint16(1), latn.U16(2))
	assert.Equal(t, ot.T("DEU"), latn.Tag(4))
	deu := at16(latn, 8)
	assert.Equal(t, uint16(0xFFFF), deu.U16(2))
	assert.Equal(t, uint16(1), deu.U16(4), "one feature index")
	features := at16(gpos, 6)
	require.Equal(t, uint16(1), features.U16(0), "feature without lookups is omitted")
	assert.Equal(t, ot.T("kern"), features.Tag(2))
	kern := at16(features, 6)
	assert.Equal(t, []ot.GlyphIndex{0}, kern.Glyphs(4, int(kern.U16(2))))
	//
	b, err = GSUB(kerningLayout(nil))
	require.NoError(t, err)
	gsub := ot.Segment(b)
	assert.Equal(t, uint16(2), at16(gsub, 4).U16(0))
	assert.Equal(t, uint16(0), at16(gsub, 6).U16(0))
	assert.Equal(t, uint16(0), at16(gsub, 8).U16(0))
}

func TestGPOSPairAdjustments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	b, err := GPOS(kerningLayout(nil))
	require.NoError(t, err)
	lookups := at16(ot.Segment(b), 8)
	require.Equal(t, uint16(1), lookups.U16(0))
	lookup := at16(lookups, 2)
	assert.Equal(t, LookupPairPos, lookup.U16(0))
	require.Equal(t, uint16(1), lookup.U16(4))
	st := at16(lookup, 6)
	assert.Equal(t, uint16(1), st.U16(0))
	assert.Equal(t, ValueXAdvance, st.U16(4))
	assert.Equal(t, uint16(0), st.U16(6))
	cov := at16(st, 2)
	assert.Equal(t, []ot.GlyphIndex{1, 2}, cov.Glyphs(4, int(cov.U16(2))))
	require.Equal(t, uint16(2), st.U16(8))
	set := at16(st, 10)
	require.Equal(t, uint16(2), set.U16(0))
	assert.Equal(t, uint16(2), set.U16(2), "pairs are sorted by second glyph")
	assert.Equal(t, int16(-50), set.I16(4))
	assert.Equal(t, uint16(3), set.U16(6))
	assert.Equal(t, int16(-20), set.I16(8))
	set = at16(st, 12)
	assert.Equal(t, uint16(1), set.U16(2))
	assert.Equal(t, int16(-40), set.I16(4))
}

func TestGPOSDeviceTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	b, err := GPOS(kerningLayout(&variation.VarIdx{Outer: 0, Inner: 3}))
	require.NoError(t, err)
	st := at16(at16(at16(ot.Segment(b), 8), 2), 6)
	assert.Equal(t, ValueXAdvance|ValueXAdvDevice, st.U16(4))
	set1 := at16(st, 10)
	// records are 6 bytes: secondGlyph, xAdvance, xAdvDeviceOffset
	assert.Equal(t, int16(-50), set1.I16(4))
	dev1 := int(set1.U16(6))
	assert.Equal(t, uint16(0), set1.U16(12), "constant pair has no device")
	set2 := at16(st, 12)
	dev2 := int(set2.U16(6))
	require.NotZero(t, dev1)
	// device offsets count from the start of the pair set
	dev := set1.From(dev1)
	assert.Equal(t, uint16(0), dev.U16(0))
	assert.Equal(t, uint16(3), dev.U16(2))
	assert.Equal(t, uint16(0x8000), dev.U16(4))
	assert.Equal(t, int(st.U16(10))+dev1, int(st.U16(12))+dev2,
		"identical variation indices share a device table")
}

// grid creates pairs for all combinations of n first and m second glyphs.
func grid(n, m int) PairLookup {
	var l PairLookup
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			l.Pairs = append(l.Pairs, PairAdjustment{
				First: ot.GlyphIndex(i), Second: ot.GlyphIndex(j), XAdvance: -10,
			})
		}
	}
	return l
}

func countPairs(st ot.Segment) int {
	n := 0
	for i := 0; i < int(st.U16(8)); i++ {
		n += int(at16(st, 10+2*i).U16(0))
	}
	return n
}

func TestSubtableSplitting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	subtables, err := pairPosSubtables(grid(200, 100))
	require.NoError(t, err)
	require.Len(t, subtables, 2)
	total := 0
	for _, st := range subtables {
		assert.LessOrEqual(t, len(st), maxSubtableSize)
		total += countPairs(ot.Segment(st))
	}
	assert.Equal(t, 20000, total)
	//
	subtables, err = pairPosSubtables(grid(10, 10))
	require.NoError(t, err)
	assert.Len(t, subtables, 1)
}

func TestExtensionLookups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	l := &Layout{
		LanguageSystems: []LanguageSystem{{ot.T("DFLT"), ot.T("dflt")}},
		Features:        []Feature{{Tag: ot.T("kern"), Lookups: []uint16{0, 1, 2}}},
		Lookups:         []PairLookup{grid(100, 100), grid(100, 100), grid(100, 100)},
	}
	b, err := GPOS(l)
	require.NoError(t, err)
	lookups := at16(ot.Segment(b), 8)
	require.Equal(t, uint16(3), lookups.U16(0))
	for i := 0; i < 3; i++ {
		lookup := at16(lookups, 2+2*i)
		require.Equal(t, LookupExtension, lookup.U16(0))
		require.Equal(t, uint16(1), lookup.U16(4))
		ext := at16(lookup, 6)
		assert.Equal(t, uint16(1), ext.U16(0))
		assert.Equal(t, LookupPairPos, ext.U16(2))
		st := ext.From(int(ext.U32(4)))
		assert.Equal(t, uint16(1), st.U16(0))
		assert.Equal(t, 10000, countPairs(st))
	}
}

// --- Variations ------------------------------------------------------------

func TestFVar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	b, err := FVar([]variation.Axis{{Tag: ot.T("wght"), Min: 100, Default: 400, Max: 900}}, []uint16{256})
	require.NoError(t, err)
	fvar := ot.Segment(b)
	require.Equal(t, 36, fvar.Size())
	assert.Equal(t, uint16(16), fvar.U16(4))
	assert.Equal(t, uint16(1), fvar.U16(8))
	assert.Equal(t, ot.T("wght"), fvar.Tag(16))
	assert.Equal(t, uint32(100<<16), fvar.U32(20))
	assert.Equal(t, uint32(400<<16), fvar.U32(24))
	assert.Equal(t, uint32(900<<16), fvar.U32(28))
	assert.Equal(t, uint16(256), fvar.U16(34))
}

func TestFVarRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	b, err := FVar([]variation.Axis{{Tag: ot.T("wght"), Min: -32768, Max: 32767.99998}}, []uint16{256})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80000000), ot.Segment(b).U32(20))
	assert.Equal(t, uint32(0x7FFFFFFF), ot.Segment(b).U32(28))
	for _, a := range []variation.Axis{
		{Tag: ot.T("wght"), Max: 32767.9999999},
		{Tag: ot.T("wght"), Min: -32768.00001},
	} {
		_, err := FVar([]variation.Axis{a}, []uint16{256})
		assert.ErrorIs(t, err, ot.ErrFixedRange, "axis %g…%g", a.Min, a.Max)
	}
}

func TestGDEFVariationStore(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	sb := variation.NewStoreBuilder(1)
	idx, err := sb.Add([]variation.Region{{{Start: 0, Peak: 1, End: 1}}}, []int{-50})
	require.NoError(t, err)
	assert.Equal(t, variation.VarIdx{}, idx)
	b, err := GDEF(sb.Store())
	require.NoError(t, err)
	gdef := ot.Segment(b)
	assert.Equal(t, uint16(3), gdef.U16(2))
	require.Equal(t, uint32(18), gdef.U32(14))
	store := gdef.From(18)
	assert.Equal(t, uint16(1), store.U16(0))
	regions := store.From(int(store.U32(2)))
	assert.Equal(t, uint16(1), regions.U16(0), "axis count")
	assert.Equal(t, uint16(1), regions.U16(2), "region count")
	assert.Equal(t, int16(0), regions.I16(4))
	assert.Equal(t, int16(0x4000), regions.I16(6))
	assert.Equal(t, int16(0x4000), regions.I16(8))
	require.Equal(t, uint16(1), store.U16(6))
	data := store.From(int(store.U32(8)))
	assert.Equal(t, uint16(1), data.U16(0), "item count")
	assert.Equal(t, uint16(1), data.U16(4), "region index count")
	assert.Equal(t, uint16(0), data.U16(6))
	assert.Equal(t, int16(-50), data.I16(8))
}

// --- Tables ----------------------------------------------------------------

func tags(tables []Table) []string {
	s := make([]string, len(tables))
	for i, t := range tables {
		s[i] = t.Tag.String()
	}
	return s
}

func TestHVar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	b, err := HVar(2, 4)
	require.NoError(t, err)
	hvar := ot.Segment(b)
	assert.Equal(t, uint16(1), hvar.U16(0))
	assert.Equal(t, uint32(20), hvar.U32(4), "store follows the header")
	assert.Equal(t, uint32(0), hvar.U32(8), "no advance width mapping")
	store := hvar.From(20)
	regions := store.From(int(store.U32(2)))
	assert.Equal(t, uint16(2), regions.U16(0), "axisCount")
	assert.Equal(t, uint16(0), regions.U16(2), "regionCount")
	require.Equal(t, uint16(1), store.U16(6))
	data := store.From(int(store.U32(8)))
	assert.Equal(t, uint16(4), data.U16(0), "one item per glyph")
	assert.Equal(t, uint16(0), data.U16(4), "no regions referenced")
}

func TestTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fonts")
	defer teardown()
	//
	f := &Font{UnitsPerEm: 1000, GlyphNames: []string{".notdef", "A", "V"}}
	tables, err := Tables(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"GPOS", "GSUB", "head", "hhea", "hmtx", "maxp", "name", "post"}, tags(tables))
	hmtx := ot.Segment(tables[4].Data)
	assert.Equal(t, uint16(500), hmtx.U16(0), "default advance is half an em")
	//
	f.Advance = sfnt.Units(600)
	f.Axes = []variation.Axis{{Tag: ot.T("wght"), Min: 100, Default: 400, Max: 900}}
	tables, err = Tables(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"GDEF", "GPOS", "GSUB", "HVAR", "fvar", "head", "hhea", "hmtx", "maxp", "name", "post"}, tags(tables))
	assert.Equal(t, uint16(600), ot.Segment(tables[7].Data).U16(0))
	//
	_, err = Tables(&Font{UnitsPerEm: 1000})
	assert.ErrorIs(t, err, ErrNoGlyphs)
}
