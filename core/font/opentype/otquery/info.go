package otquery

import (
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
)

// FontType returns the font type, encoded in the font header, as a string.
func FontType(otf *Font) string {
	switch otf.Header.FontType {
	case 0x4f54544f: // OTTO
		return "OpenType (outlines)"
	case 0x00010000: // TrueType
		return "TrueType"
	case 0x74727565: // true
		return "TrueType (Mac legacy)"
	}
	return "<unknown>"
}

// Windows language IDs for a few languages. Names in other languages are
// looked up as en-US.
var windowsLanguageIDs = map[string]uint16{
	"de": 0x0407,
	"en": 0x0409,
	"es": 0x0C0A,
	"fr": 0x040C,
	"it": 0x0410,
	"ja": 0x0411,
	"zh": 0x0804,
}

func windowsLanguageID(lang language.Tag) uint16 {
	base, _ := lang.Base()
	if id, ok := windowsLanguageIDs[base.String()]; ok {
		return id
	}
	return 0x0409
}

// NameInfo returns a map with selected fields from OpenType table `name`.
// Will include (if available in the font) "family", "subfamily", "version"
// and "postscript".
//
// Only Unicode strings of the Windows platform are considered. Strings in
// language lang are preferred, en-US is the fallback.
func NameInfo(otf *Font, lang language.Tag) map[string]string {
	names := make(map[string]string)
	table := otf.Table(ot.T("name"))
	if table == nil {
		tracer().Debugf("no name table found in font")
		return names
	}
	fields := map[uint16]string{1: "family", 2: "subfamily", 5: "version", 6: "postscript"}
	preferred := windowsLanguageID(lang)
	for id, field := range fields {
		if s, ok := nameString(table, id, preferred); ok {
			names[field] = s
		} else if s, ok := nameString(table, id, 0x0409); ok {
			names[field] = s
		}
	}
	return names
}

// Name returns the en-US string for a name ID.
func Name(otf *Font, nameID uint16) (string, bool) {
	table := otf.Table(ot.T("name"))
	if table == nil {
		return "", false
	}
	return nameString(table, nameID, 0x0409)
}

func nameString(table ot.Segment, nameID, languageID uint16) (string, bool) {
	count := int(table.U16(2))
	storage := table.From(int(table.U16(4)))
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	for i := 0; i < count; i++ {
		rec := table.From(6 + 12*i)
		if rec.U16(0) != 3 || rec.U16(2) != 1 || rec.U16(4) != languageID || rec.U16(6) != nameID {
			continue
		}
		length, offset := int(rec.U16(8)), int(rec.U16(10))
		raw, err := storage.View(offset, length)
		if err != nil {
			tracer().Errorf("name record %d points outside of string storage", nameID)
			return "", false
		}
		s, err := dec.Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(s), true
	}
	return "", false
}

// LayoutTables returns a list of tag strings, one for each layout-table a font includes.
//
// From the OpenType documentation:
// OpenType Layout makes use of five tables: GSUB, GPOS, BASE, JSTF, and GDEF.
func LayoutTables(otf *Font) []string {
	var lt []string
	for _, tag := range otf.TableTags() {
		switch tag.String() {
		case "GSUB", "GPOS", "BASE", "JSTF", "GDEF":
			lt = append(lt, tag.String())
		}
	}
	return lt
}
