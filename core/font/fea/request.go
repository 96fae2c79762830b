package fea

import (
	"math"

	"github.com/npillmayer/shaperfont/core"
	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// Axis is a variation axis of the font, in user space coordinates.
type Axis struct {
	Tag     string
	Min     float64
	Default float64
	Max     float64
}

// Request is the input of a compilation.
type Request struct {
	UnitsPerEm int
	GlyphOrder []string // glyph names, index = glyph ID; by convention starting with ".notdef"
	Source     string   // feature source, UTF-8
	Axes       []Axis   // optional
}

// Validate checks a request at the boundary. Requests not passing
// validation are host faults and are never compiled.
func (req Request) Validate() error {
	if req.UnitsPerEm < 1 || req.UnitsPerEm > math.MaxUint16 {
		return core.Error(core.EINVALID, "units per em must be in the range 1..65535, is %d", req.UnitsPerEm)
	}
	if req.UnitsPerEm < 16 || req.UnitsPerEm > 16384 {
		tracer().Infof("units per em %d outside of the recommended range 16..16384", req.UnitsPerEm)
	}
	if len(req.GlyphOrder) == 0 {
		return core.Error(core.EINVALID, "glyph order is empty")
	}
	if len(req.GlyphOrder) > math.MaxUint16 {
		return core.Error(core.EINVALID, "glyph order has %d glyphs, at most 65535 are possible",
			len(req.GlyphOrder))
	}
	if req.GlyphOrder[0] != ".notdef" {
		tracer().Infof("glyph order does not start with .notdef, but with '%s'", req.GlyphOrder[0])
	}
	seen := make(map[string]bool, len(req.GlyphOrder))
	for i, name := range req.GlyphOrder {
		if name == "" || len(name) > 255 {
			return core.Error(core.EINVALID, "glyph name #%d must have 1 to 255 bytes", i)
		}
		if seen[name] {
			return core.Error(core.EINVALID, "duplicate glyph name '%s' in glyph order", name)
		}
		seen[name] = true
	}
	tags := make(map[string]bool, len(req.Axes))
	for _, a := range req.Axes {
		if !ot.ValidTag(a.Tag) {
			return core.Error(core.EINVALID, "invalid axis tag '%s'", a.Tag)
		}
		if tags[a.Tag] {
			return core.Error(core.EINVALID, "duplicate axis '%s'", a.Tag)
		}
		tags[a.Tag] = true
		if math.IsNaN(a.Min) || math.IsNaN(a.Default) || math.IsNaN(a.Max) ||
			math.IsInf(a.Min, 0) || math.IsInf(a.Max, 0) {
			return core.Error(core.EINVALID, "axis '%s' has non-finite values", a.Tag)
		}
		if !(a.Min <= a.Default && a.Default <= a.Max) {
			return core.Error(core.EINVALID, "axis '%s' violates min ≤ default ≤ max", a.Tag)
		}
		if !ot.FitsFixed(a.Min) || !ot.FitsFixed(a.Max) {
			return core.Error(core.EINVALID, "axis '%s' exceeds the range of 16.16 fixed point numbers", a.Tag)
		}
	}
	return nil
}

func (req Request) variationAxes() []variation.Axis {
	axes := make([]variation.Axis, len(req.Axes))
	for i, a := range req.Axes {
		axes[i] = variation.Axis{Tag: ot.T(a.Tag), Min: a.Min, Default: a.Default, Max: a.Max}
	}
	return axes
}
