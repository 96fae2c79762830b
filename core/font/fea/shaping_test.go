package fea

import (
	"bytes"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"github.com/npillmayer/shaperfont/core/font/opentype/otbuild"
	"github.com/npillmayer/shaperfont/core/font/opentype/otfont"
	"golang.org/x/image/math/fixed"
)

// Compiled fonts have no cmap, so shaping with go-text needs one added.
// testCMap maps runes to glyphs with a format 4 subtable for the Windows
// Unicode BMP encoding. Runes must be ascending.
func testCMap(runes []rune, glyphs []ot.GlyphIndex) []byte {
	segCount := len(runes) + 1
	searchRange, entrySelector := 2, 0
	for searchRange*2 <= 2*segCount {
		searchRange *= 2
		entrySelector++
	}
	w := ot.NewWriter(64)
	w.WriteU16(0)  // version
	w.WriteU16(1)  // numTables
	w.WriteU16(3)  // platformID
	w.WriteU16(1)  // encodingID
	w.WriteU32(12) // subtableOffset
	w.WriteU16(4)  // format
	w.WriteU16(uint16(16 + 8*segCount))
	w.WriteU16(0) // language
	w.WriteU16(uint16(2 * segCount))
	w.WriteU16(uint16(searchRange))
	w.WriteU16(uint16(entrySelector))
	w.WriteU16(uint16(2*segCount - searchRange))
	for _, r := range runes {
		w.WriteU16(uint16(r)) // endCode
	}
	w.WriteU16(0xFFFF)
	w.WriteU16(0) // reservedPad
	for _, r := range runes {
		w.WriteU16(uint16(r)) // startCode
	}
	w.WriteU16(0xFFFF)
	for i, r := range runes {
		w.WriteI16(int16(int(glyphs[i]) - int(r))) // idDelta
	}
	w.WriteI16(1)
	w.Zeros(2 * segCount) // idRangeOffsets
	return w.Bytes()
}

// goTextFace re-assembles a compiled font with a cmap for 'A' and 'V' and
// loads it with go-text.
func (env *CompileTestEnviron) goTextFace(r *Result) *font.Face {
	otf := env.font(r)
	var tables []otbuild.Table
	for _, tag := range otf.TableTags() {
		tables = append(tables, otbuild.Table{Tag: tag, Data: otf.Table(tag)})
	}
	tables = append(tables, otbuild.Table{
		Tag:  ot.T("cmap"),
		Data: testCMap([]rune{'A', 'V'}, []ot.GlyphIndex{1, 2}),
	})
	b, err := otfont.Assemble(tables)
	env.Require().NoError(err)
	face, err := font.ParseTTF(bytes.NewReader(b))
	env.Require().NoError(err)
	return face
}

// shapeAV shapes "AV" at one unit per design unit and returns the advances.
func shapeAV(face *font.Face, vars ...font.Variation) []int {
	face.SetVariations(vars)
	runes := []rune("AV")
	out := (&shaping.HarfbuzzShaper{}).Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.I(int(face.Upem())),
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	})
	advances := make([]int, len(out.Glyphs))
	for i, g := range out.Glyphs {
		advances[i] = g.Advance.Round()
	}
	return advances
}

func weight(v float32) font.Variation {
	return font.Variation{Tag: opentype.MustNewTag("wght"), Value: v}
}

func (env *CompileTestEnviron) TestShapeStaticKerning() {
	face := env.goTextFace(env.compile(kerning, nil))
	env.Equal(uint16(1000), face.Upem())
	env.Equal([]int{450, 500}, shapeAV(face))
}

func (env *CompileTestEnviron) TestShapeVariableKerning() {
	src := `languagesystem DFLT dflt;
feature kern {
    pos A V (wght=400:-50 wght=900:0 wght=100:-100);
} kern;
`
	face := env.goTextFace(env.compile(src, []Axis{wght}))
	env.Equal([]int{450, 500}, shapeAV(face), "at the default location")
	for _, c := range []struct {
		wght    float32
		advance int
	}{
		{400, 450}, {900, 500}, {100, 400}, {650, 475}, {250, 425},
	} {
		env.Equal([]int{c.advance, 500}, shapeAV(face, weight(c.wght)), "at wght=%v", c.wght)
	}
}

func (env *CompileTestEnviron) TestShapeKeepsAdvancesAcrossAxes() {
	face := env.goTextFace(env.compile(kerning, []Axis{wght}))
	for _, w := range []float32{100, 400, 900} {
		env.Equal([]int{450, 500}, shapeAV(face, weight(w)), "at wght=%v", w)
	}
}

func (env *CompileTestEnviron) TestGoTextReadsTables() {
	src := `languagesystem DFLT dflt;
feature kern {
    pos A V (wght=400:-50 wght=900:0);
} kern;
`
	r := env.compile(src, []Axis{wght})
	ld, err := opentype.NewLoader(bytes.NewReader(r.FontData))
	env.Require().NoError(err)
	var tags []string
	for _, tag := range ld.Tables() {
		tags = append(tags, tag.String())
	}
	env.ElementsMatch([]string{"GDEF", "GPOS", "GSUB", "HVAR", "fvar",
		"head", "hhea", "hmtx", "maxp", "name", "post"}, tags)
	otf := env.font(r)
	for _, tag := range []string{"GDEF", "GPOS", "HVAR", "fvar"} {
		raw, err := ld.RawTable(opentype.MustNewTag(tag))
		env.Require().NoError(err)
		env.Equal([]byte(otf.Table(ot.T(tag))), raw, "table '%s'", tag)
	}
}
