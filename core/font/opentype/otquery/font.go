package otquery

import (
	"fmt"

	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// FontHeader is the offset table at the start of a font file.
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// TableRecord is an entry of the table directory.
type TableRecord struct {
	Tag      ot.Tag
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// Font is a parsed OpenType font. It references the binary data given to
// Parse, which must not be modified while the font is in use.
type Font struct {
	Header  FontHeader
	Binary  []byte
	records []TableRecord
	tables  map[ot.Tag]ot.Segment
}

// Parse parses the table directory of an OpenType font.
func Parse(font []byte) (*Font, error) {
	src := ot.Segment(font)
	if src.Size() < 12 {
		return nil, errFontFormat("font header")
	}
	h := FontHeader{FontType: src.U32(0), TableCount: src.U16(4)}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, ot.Tag(h.FontType).String())
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	otf := &Font{Header: h, Binary: font, tables: make(map[ot.Tag]ot.Segment)}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.View(12, 16*int(h.TableCount))
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b, prevTag := buf, ot.Tag(0); len(b) > 0; b = b[16:] {
		rec := TableRecord{
			Tag:      b.Tag(0),
			Checksum: b.U32(4),
			Offset:   b.U32(8),
			Length:   b.U32(12),
		}
		if rec.Tag <= prevTag && len(otf.records) > 0 {
			return nil, errFontFormat("table order")
		}
		prevTag = rec.Tag
		if rec.Offset&3 != 0 { // "all tables must begin on four byte boundries"
			return nil, errFontFormat("invalid table offset")
		}
		if uint64(rec.Offset)+uint64(rec.Length) > uint64(len(font)) {
			return nil, errFontFormat(fmt.Sprintf("table '%s' exceeds font data", rec.Tag))
		}
		otf.records = append(otf.records, rec)
		otf.tables[rec.Tag] = src[rec.Offset : rec.Offset+rec.Length]
	}
	return otf, nil
}

// Table returns the binary data of a table, or nil if the font does not
// contain it.
func (otf *Font) Table(tag ot.Tag) ot.Segment {
	return otf.tables[tag]
}

// TableTags returns the tags of all tables, in directory order.
func (otf *Font) TableTags() []ot.Tag {
	tags := make([]ot.Tag, len(otf.records))
	for i, rec := range otf.records {
		tags[i] = rec.Tag
	}
	return tags
}

// VerifyChecksums checks the checksum of every table and the checksum
// adjustment in table 'head'.
func (otf *Font) VerifyChecksums() error {
	for _, rec := range otf.records {
		data := otf.Binary[rec.Offset : rec.Offset+rec.Length]
		sum := ot.Checksum(data)
		if rec.Tag == ot.T("head") && len(data) >= 12 {
			sum -= ot.Segment(data).U32(8)
		}
		if sum != rec.Checksum {
			return errFontFormat(fmt.Sprintf("checksum mismatch for table '%s'", rec.Tag))
		}
	}
	if head := otf.Table(ot.T("head")); head != nil {
		if ot.Checksum(otf.Binary) != 0xB1B0AFBA {
			return errFontFormat("checksum adjustment")
		}
	}
	return nil
}
