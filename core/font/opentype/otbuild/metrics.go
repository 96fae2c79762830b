package otbuild

import (
	"errors"
	"math"

	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"golang.org/x/image/font/sfnt"
)

// Metrics are the global metrics of a shaping font. Glyphs have no
// outlines, so bounding boxes and side bearings are all zero.
type Metrics struct {
	UnitsPerEm sfnt.Units
	Advance    sfnt.Units
	NumGlyphs  int
}

// Ascender is placed at 80% of the em, descender at 20% below the baseline.
func (m Metrics) Ascender() sfnt.Units {
	return m.UnitsPerEm * 4 / 5
}

func (m Metrics) Descender() sfnt.Units {
	return -(m.UnitsPerEm - m.Ascender())
}

// Head builds the font header table. Timestamps are zero and the checksum
// adjustment is left for the assembler to fill in.
func Head(m Metrics) []byte {
	w := ot.NewWriter(54)
	w.WriteU16(1)                    // majorVersion
	w.WriteU16(0)                    // minorVersion
	w.WriteFixed(ot.ToFixed(1))      // fontRevision
	w.WriteU32(0)                    // checksumAdjustment
	w.WriteU32(0x5F0F3CF5)           // magicNumber
	w.WriteU16(0x0003)               // flags: baseline at y=0, lsb at x=0
	w.WriteU16(uint16(m.UnitsPerEm)) // unitsPerEm
	w.WriteI64(0)                    // created
	w.WriteI64(0)                    // modified
	w.Zeros(8)                       // xMin, yMin, xMax, yMax
	w.WriteU16(0)                    // macStyle
	w.WriteU16(8)                    // lowestRecPPEM
	w.WriteI16(2)                    // fontDirectionHint
	w.WriteI16(0)                    // indexToLocFormat
	w.WriteI16(0)                    // glyphDataFormat
	return w.Bytes()
}

// HHea builds the horizontal header table.
func HHea(m Metrics) []byte {
	w := ot.NewWriter(36)
	w.WriteU32(0x00010000)           // version 1.0
	w.WriteI16(int16(m.Ascender()))  // ascender
	w.WriteI16(int16(m.Descender())) // descender
	w.WriteI16(0)                    // lineGap
	w.WriteU16(uint16(m.Advance))    // advanceWidthMax
	w.WriteI16(0)                    // minLeftSideBearing
	w.WriteI16(clamp16(m.Advance))   // minRightSideBearing
	w.WriteI16(0)                    // xMaxExtent
	w.WriteI16(1)                    // caretSlopeRise
	w.WriteI16(0)                    // caretSlopeRun
	w.WriteI16(0)                    // caretOffset
	w.Zeros(8)                       // reserved
	w.WriteI16(0)                    // metricDataFormat
	w.WriteU16(1)                    // numberOfHMetrics
	return w.Bytes()
}

// HMtx builds the horizontal metrics table. All glyphs share the advance
// of the single long metric record.
func HMtx(m Metrics) []byte {
	w := ot.NewWriter(4 + 2*m.NumGlyphs)
	w.WriteU16(uint16(m.Advance)) // advanceWidth
	w.WriteI16(0)                 // lsb
	w.Zeros(2 * (m.NumGlyphs - 1))
	return w.Bytes()
}

// MaxP builds a version 0.5 maximum profile, as used by CFF-flavored fonts.
func MaxP(m Metrics) []byte {
	w := ot.NewWriter(6)
	w.WriteU32(0x00005000)
	w.WriteU16(uint16(m.NumGlyphs))
	return w.Bytes()
}

// Errors for glyph names which cannot be stored in a post table.
var (
	ErrGlyphName         = errors.New("glyph name exceeds 255 bytes")
	ErrTooManyGlyphNames = errors.New("too many custom glyph names for post table")
)

// Post builds a version 2.0 PostScript table, which carries the glyph names.
// Apart from .notdef, all names are stored as custom names, even if they
// are part of the standard Macintosh glyph set.
func Post(m Metrics, glyphNames []string) ([]byte, error) {
	w := ot.NewWriter(34 + 2*len(glyphNames) + 8*len(glyphNames))
	w.WriteU32(0x00020000)                     // version 2.0
	w.WriteFixed(0)                            // italicAngle
	w.WriteI16(int16(-m.UnitsPerEm / 10))      // underlinePosition
	w.WriteI16(int16(max(m.UnitsPerEm/20, 1))) // underlineThickness
	w.WriteU32(1)                              // isFixedPitch
	w.Zeros(16)                                // min/max memory usage
	w.WriteU16(uint16(len(glyphNames)))        // numGlyphs
	custom := 0
	for _, name := range glyphNames {
		if name == ".notdef" {
			w.WriteU16(0) // standard Macintosh name
			continue
		}
		if 258+custom > math.MaxUint16 {
			return nil, ErrTooManyGlyphNames
		}
		w.WriteU16(uint16(258 + custom)) // glyphNameIndex
		custom++
	}
	for _, name := range glyphNames {
		if name == ".notdef" {
			continue
		}
		if len(name) > 255 {
			return nil, ErrGlyphName
		}
		w.WriteU8(uint8(len(name)))
		w.WriteBytes([]byte(name))
	}
	return w.Bytes(), nil
}

func clamp16(u sfnt.Units) int16 {
	if u > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(u)
}
