package ot

import "math"

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by OpenType as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// Shorter strings are padded with spaces, as required for tags like 'cvt ';
// longer strings are cut.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// ValidTag checks if s can be used as a tag: 1 to 4 printable ASCII
// characters (0x20–0x7E), not starting with a space.
func ValidTag(s string) bool {
	if len(s) == 0 || len(s) > 4 || s[0] == ' ' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// --- Fixed point numbers ---------------------------------------------------

// F2Dot14 is a signed fixed-point number with 14 fractional bits, used for
// normalized variation coordinates.
type F2Dot14 int16

// ToF2Dot14 converts a float to F2Dot14, rounding to the nearest
// representable value and clamping to [-2, 2).
func ToF2Dot14(v float64) F2Dot14 {
	n := math.Floor(v*16384 + 0.5)
	if n > math.MaxInt16 {
		n = math.MaxInt16
	} else if n < math.MinInt16 {
		n = math.MinInt16
	}
	return F2Dot14(n)
}

// Float returns the floating point value of f.
func (f F2Dot14) Float() float64 {
	return float64(f) / 16384
}

// Fixed is a signed 16.16 fixed-point number.
type Fixed int32

// ToFixed converts a float to 16.16 fixed point, rounding to the nearest
// representable value.
func ToFixed(v float64) Fixed {
	return Fixed(math.Floor(v*65536 + 0.5))
}

// FitsFixed reports whether v rounds to a representable 16.16 value.
func FitsFixed(v float64) bool {
	f := math.Floor(v*65536 + 0.5)
	return f >= math.MinInt32 && f <= math.MaxInt32
}

// Float returns the floating point value of f.
func (f Fixed) Float() float64 {
	return float64(f) / 65536
}
