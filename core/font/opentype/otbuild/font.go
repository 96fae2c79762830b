package otbuild

import (
	"errors"
	"sort"

	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"golang.org/x/image/font/sfnt"
)

// Table is a font table ready for assembly.
type Table struct {
	Tag  ot.Tag
	Data []byte
}

// Font collects everything needed to build the tables of a shaping font.
type Font struct {
	UnitsPerEm uint16
	Advance    sfnt.Units // advance width of every glyph; 0 selects UnitsPerEm/2
	GlyphNames []string
	FamilyName string
	Axes       []variation.Axis
	Layout     *Layout
	Store      *variation.Store // may be nil, even if Axes are present
}

// ErrNoGlyphs is returned for fonts without glyphs.
var ErrNoGlyphs = errors.New("font has no glyphs")

// Tables builds all tables of f, ordered by tag.
func Tables(f *Font) ([]Table, error) {
	if len(f.GlyphNames) == 0 {
		return nil, ErrNoGlyphs
	}
	advance := f.Advance
	if advance <= 0 {
		advance = sfnt.Units(f.UnitsPerEm / 2)
	}
	m := Metrics{
		UnitsPerEm: sfnt.Units(f.UnitsPerEm),
		Advance:    advance,
		NumGlyphs:  len(f.GlyphNames),
	}
	layout := f.Layout
	if layout == nil {
		layout = &Layout{}
	}
	gpos, err := GPOS(layout)
	if err != nil {
		return nil, err
	}
	gsub, err := GSUB(layout)
	if err != nil {
		return nil, err
	}
	post, err := Post(m, f.GlyphNames)
	if err != nil {
		return nil, err
	}
	names := DefaultNames(f.FamilyName)
	tables := []Table{
		{ot.T("GPOS"), gpos},
		{ot.T("GSUB"), gsub},
		{ot.T("head"), Head(m)},
		{ot.T("hhea"), HHea(m)},
		{ot.T("hmtx"), HMtx(m)},
		{ot.T("maxp"), MaxP(m)},
		{ot.T("post"), post},
	}
	if len(f.Axes) > 0 {
		axisNames := names.AddAxes(f.Axes)
		store := f.Store
		if store == nil {
			store = &variation.Store{AxisCount: len(f.Axes)}
		}
		gdef, err := GDEF(store)
		if err != nil {
			return nil, err
		}
		hvar, err := HVar(len(f.Axes), m.NumGlyphs)
		if err != nil {
			return nil, err
		}
		fvar, err := FVar(f.Axes, axisNames)
		if err != nil {
			return nil, err
		}
		tables = append(tables,
			Table{ot.T("GDEF"), gdef},
			Table{ot.T("HVAR"), hvar},
			Table{ot.T("fvar"), fvar},
		)
	}
	name, err := names.Table()
	if err != nil {
		return nil, err
	}
	tables = append(tables, Table{ot.T("name"), name})
	sort.Slice(tables, func(i, j int) bool { return tables[i].Tag < tables[j].Tag })
	tracer().Infof("built %d tables for %d glyphs", len(tables), m.NumGlyphs)
	return tables, nil
}
