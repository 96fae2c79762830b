package otquery

import (
	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// Axes returns the design axes from table 'fvar'. Fonts without variations
// have no axes.
func Axes(otf *Font) []variation.Axis {
	fvar := otf.Table(ot.T("fvar"))
	if fvar == nil {
		return nil
	}
	arr := fvar.From(int(fvar.U16(4)))
	count, size := int(fvar.U16(8)), int(fvar.U16(10))
	axes := make([]variation.Axis, 0, count)
	for i := 0; i < count; i++ {
		rec, err := arr.View(i*size, 20)
		if err != nil {
			tracer().Errorf("fvar axis record %d out of bounds", i)
			break
		}
		axes = append(axes, variation.Axis{
			Tag:     rec.Tag(0),
			Min:     ot.Fixed(rec.U32(4)).Float(),
			Default: ot.Fixed(rec.U32(8)).Float(),
			Max:     ot.Fixed(rec.U32(12)).Float(),
		})
	}
	return axes
}

// Space returns the design space of a font, or nil for fonts without axes.
func Space(otf *Font) *variation.Space {
	axes := Axes(otf)
	if len(axes) == 0 {
		return nil
	}
	return variation.NewSpace(axes)
}

// VariationStore decodes the item variation store referenced by table
// 'GDEF' (version 1.3 and up). It returns nil if there is none.
func VariationStore(otf *Font) (*variation.Store, error) {
	gdef := otf.Table(ot.T("GDEF"))
	if gdef == nil || gdef.U16(0) != 1 || gdef.U16(2) < 3 {
		return nil, nil
	}
	off, err := gdef.Uint32(14)
	if err != nil || off == 0 {
		return nil, nil
	}
	return parseItemVariationStore(gdef.From(int(off)))
}

func parseItemVariationStore(b ot.Segment) (*variation.Store, error) {
	if b.U16(0) != 1 {
		return nil, errFontFormat("item variation store format")
	}
	regions := b.From(int(b.U32(2)))
	store := &variation.Store{AxisCount: int(regions.U16(0))}
	regionCount := int(regions.U16(2))
	recSize := 6 * store.AxisCount
	for i := 0; i < regionCount; i++ {
		rec, err := regions.View(4+i*recSize, recSize)
		if err != nil {
			return nil, errFontFormat("variation region list")
		}
		region := make(variation.Region, store.AxisCount)
		for a := range region {
			region[a] = variation.Tent{
				Start: ot.F2Dot14(rec.I16(6*a)).Float(),
				Peak:  ot.F2Dot14(rec.I16(6*a + 2)).Float(),
				End:   ot.F2Dot14(rec.I16(6*a + 4)).Float(),
			}
		}
		store.Regions = append(store.Regions, region)
	}
	dataCount := int(b.U16(6))
	for i := 0; i < dataCount; i++ {
		off, err := b.Uint32(8 + 4*i)
		if err != nil {
			return nil, errFontFormat("item variation data offsets")
		}
		data, err := parseVarData(b.From(int(off)))
		if err != nil {
			return nil, err
		}
		store.Data = append(store.Data, data)
	}
	tracer().Debugf("item variation store with %d regions, %d subtables", regionCount, dataCount)
	return store, nil
}

// parseVarData reads an item variation data subtable. Word deltas come
// first in each row, followed by byte deltas; LONG_WORDS widens both.
func parseVarData(b ot.Segment) (variation.VarData, error) {
	itemCount := int(b.U16(0))
	wordCount := int(b.U16(2))
	long := wordCount&0x8000 != 0
	wordCount &= 0x7FFF
	n := int(b.U16(4))
	data := variation.VarData{RegionIndexes: make([]uint16, n)}
	for i := range data.RegionIndexes {
		data.RegionIndexes[i] = b.U16(6 + 2*i)
	}
	wordSize, byteSize := 2, 1
	if long {
		wordSize, byteSize = 4, 2
	}
	rowSize := wordCount*wordSize + (n-wordCount)*byteSize
	rows := b.From(6 + 2*n)
	for i := 0; i < itemCount; i++ {
		if rowSize == 0 {
			data.Rows = append(data.Rows, []int16{})
			continue
		}
		row, err := rows.View(i*rowSize, rowSize)
		if err != nil {
			return data, errFontFormat("item variation data rows")
		}
		deltas := make([]int16, n)
		pos := 0
		for j := range deltas {
			switch {
			case j < wordCount && long:
				deltas[j] = int16(int32(row.U32(pos)))
				pos += 4
			case j < wordCount || long:
				deltas[j] = row.I16(pos)
				pos += 2
			default:
				deltas[j] = int16(int8(row[pos]))
				pos++
			}
		}
		data.Rows = append(data.Rows, deltas)
	}
	return data, nil
}
