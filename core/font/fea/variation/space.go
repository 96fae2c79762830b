/*
Package variation interpolates values across the design space of a variable
font.

A Space is built from the font's axes and maps user coordinates to
normalized coordinates in [-1, 1]. A Model is built from the locations of
the masters of a variable value and computes the regions (supports) and
deltas which reproduce the masters when evaluated. A StoreBuilder collects
the deltas of many values into one item variation store.

The master model follows the one used by fontTools and fea-rs: masters are
sorted, supports are computed by splitting boxes, and deltas are computed
by successive subtraction with integer rounding.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package variation

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// tracer traces with key 'shaper.fea'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fea")
}

// Axis is a variation axis in user space units.
type Axis struct {
	Tag     ot.Tag
	Min     float64
	Default float64
	Max     float64
}

// Location is a point in normalized design space, one coordinate per axis of
// a Space. A zero coordinate denotes the axis default.
type Location []float64

// IsDefault is a predicate: does loc denote the default location?
func (loc Location) IsDefault() bool {
	for _, c := range loc {
		if c != 0 {
			return false
		}
	}
	return true
}

// Equal is a predicate: do loc and other denote the same location?
func (loc Location) Equal(other Location) bool {
	if len(loc) != len(other) {
		return false
	}
	for i, c := range loc {
		if c != other[i] {
			return false
		}
	}
	return true
}

// Space is the design space spanned by a list of axes.
type Space struct {
	Axes  []Axis
	index map[ot.Tag]int
}

// NewSpace creates a design space. The axes are expected to be valid, i.e.,
// unique and with Min ≤ Default ≤ Max.
func NewSpace(axes []Axis) *Space {
	s := &Space{
		Axes:  axes,
		index: make(map[ot.Tag]int, len(axes)),
	}
	for i, a := range axes {
		s.index[a.Tag] = i
	}
	return s
}

// AxisCount returns the number of axes of s.
func (s *Space) AxisCount() int {
	return len(s.Axes)
}

// AxisIndex returns the position of the axis with a given tag.
func (s *Space) AxisIndex(tag ot.Tag) (int, bool) {
	i, ok := s.index[tag]
	return i, ok
}

// InRange is a predicate: is user coordinate v within the range of axis i?
func (s *Space) InRange(i int, v float64) bool {
	a := s.Axes[i]
	return v >= a.Min && v <= a.Max
}

// Normalize maps a user coordinate on axis i to [-1, 1]. Coordinates are
// clamped to the axis range, mapped linearly between minimum, default and
// maximum, and quantized to F2Dot14 precision.
func (s *Space) Normalize(i int, v float64) float64 {
	a := s.Axes[i]
	if v < a.Min {
		v = a.Min
	} else if v > a.Max {
		v = a.Max
	}
	var n float64
	switch {
	case v < a.Default && a.Default > a.Min:
		n = (v - a.Default) / (a.Default - a.Min)
	case v > a.Default && a.Max > a.Default:
		n = (v - a.Default) / (a.Max - a.Default)
	}
	return ot.ToF2Dot14(n).Float()
}

// Locate normalizes user coordinates given per axis tag. Axes not
// mentioned are at their default.
func (s *Space) Locate(user map[ot.Tag]float64) Location {
	loc := make(Location, len(s.Axes))
	for tag, v := range user {
		if i, ok := s.index[tag]; ok {
			loc[i] = s.Normalize(i, v)
		}
	}
	return loc
}
