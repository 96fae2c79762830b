package otquery

import (
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"golang.org/x/image/font/sfnt"
)

// FontMetricsInfo contains selected global metrics of a font.
type FontMetricsInfo struct {
	UnitsPerEm sfnt.Units
	Ascent     sfnt.Units
	Descent    sfnt.Units
	LineGap    sfnt.Units
	MaxAdvance sfnt.Units
}

// FontMetrics retrieves selected metrics of a font.
func FontMetrics(otf *Font) FontMetricsInfo {
	metrics := FontMetricsInfo{}
	if hhea := otf.Table(ot.T("hhea")); hhea != nil {
		metrics.Ascent = sfnt.Units(hhea.I16(4))
		metrics.Descent = sfnt.Units(hhea.I16(6))
		metrics.LineGap = sfnt.Units(hhea.I16(8))
		metrics.MaxAdvance = sfnt.Units(hhea.U16(10))
	}
	metrics.UnitsPerEm = UnitsPerEm(otf)
	return metrics
}

// UnitsPerEm returns the design units per em from table 'head', or 0 if the
// font has no head table.
func UnitsPerEm(otf *Font) sfnt.Units {
	return sfnt.Units(otf.Table(ot.T("head")).U16(18))
}

// NumGlyphs returns the number of glyphs as stated in table 'maxp'.
func NumGlyphs(otf *Font) int {
	return int(otf.Table(ot.T("maxp")).U16(4))
}

// GlyphAdvance returns the advance width of a glyph.
func GlyphAdvance(otf *Font, gid ot.GlyphIndex) sfnt.Units {
	hmtx := otf.Table(ot.T("hmtx"))
	n := int(otf.Table(ot.T("hhea")).U16(34)) // numberOfHMetrics
	if n == 0 {
		return 0
	}
	if int(gid) >= n {
		gid = ot.GlyphIndex(n - 1) // advance repetition of last advance in hmtx
	}
	return sfnt.Units(hmtx.U16(4 * int(gid)))
}

// GlyphNames returns the glyph names stored in a version 2.0 'post' table.
// Names of the standard Macintosh set, other than .notdef, are not
// resolved and come out empty. Fonts without glyph names yield nil.
func GlyphNames(otf *Font) []string {
	post := otf.Table(ot.T("post"))
	if post.U32(0) != 0x00020000 {
		return nil
	}
	n := int(post.U16(32))
	indices := post.Glyphs(34, n)
	var custom []string
	for pos := 34 + 2*n; pos < post.Size(); {
		length := int(post[pos])
		s, err := post.View(pos+1, length)
		if err != nil {
			break
		}
		custom = append(custom, string(s))
		pos += 1 + length
	}
	names := make([]string, len(indices))
	for i, inx := range indices {
		switch {
		case inx == 0:
			names[i] = ".notdef"
		case inx >= 258 && int(inx)-258 < len(custom):
			names[i] = custom[inx-258]
		}
	}
	return names
}

// GlyphIndex returns the index of a glyph by name.
func GlyphIndex(otf *Font, name string) (ot.GlyphIndex, bool) {
	for i, n := range GlyphNames(otf) {
		if n == name {
			return ot.GlyphIndex(i), true
		}
	}
	return 0, false
}
