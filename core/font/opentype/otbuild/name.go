package otbuild

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"golang.org/x/text/encoding/unicode"
)

// Name IDs used in shaping fonts.
const (
	NameFamily            uint16 = 1
	NameSubfamily         uint16 = 2
	NameUniqueID          uint16 = 3
	NameFull              uint16 = 4
	NameVersion           uint16 = 5
	NamePostScript        uint16 = 6
	NameFirstFontSpecific uint16 = 256
)

// DefaultFamilyName is used for fonts without a family name.
const DefaultFamilyName = "Shaper Font"

// registeredAxisNames holds the display names of the registered design axes.
// It is never modified.
var registeredAxisNames = map[string]string{
	"ital": "Italic",
	"opsz": "Optical Size",
	"slnt": "Slant",
	"wdth": "Width",
	"wght": "Weight",
}

// AxisName returns the display name of an axis: the registered name for
// registered axes, the tag otherwise.
func AxisName(tag ot.Tag) string {
	if n, ok := registeredAxisNames[tag.String()]; ok {
		return n
	}
	return strings.TrimRight(tag.String(), " ")
}

// Names collects the strings of a name table. All strings are stored for
// the Windows platform, Unicode BMP encoding, language en-US.
type Names struct {
	strings map[uint16]string
	next    uint16
}

// DefaultNames creates the basic names for a font family.
func DefaultNames(family string) *Names {
	if family == "" {
		family = DefaultFamilyName
	}
	ps := strings.Map(func(r rune) rune {
		if r <= ' ' || r > '~' || strings.ContainsRune("[](){}<>/%", r) {
			return -1
		}
		return r
	}, family)
	if ps == "" {
		ps = "ShaperFont"
	}
	return &Names{
		strings: map[uint16]string{
			NameFamily:     family,
			NameSubfamily:  "Regular",
			NameUniqueID:   ps + "-Regular",
			NameFull:       family + " Regular",
			NameVersion:    "Version 1.000",
			NamePostScript: ps + "-Regular",
		},
		next: NameFirstFontSpecific,
	}
}

// Add stores a font-specific string and returns its name ID.
func (n *Names) Add(s string) uint16 {
	id := n.next
	n.strings[id] = s
	n.next++
	return id
}

// AddAxes stores the display names of axes and returns their name IDs.
func (n *Names) AddAxes(axes []variation.Axis) []uint16 {
	ids := make([]uint16, len(axes))
	for i, a := range axes {
		ids[i] = n.Add(AxisName(a.Tag))
	}
	return ids
}

// Get returns the string for a name ID.
func (n *Names) Get(id uint16) (string, bool) {
	s, ok := n.strings[id]
	return s, ok
}

// Table builds a format 0 name table.
func (n *Names) Table() ([]byte, error) {
	ids := make([]uint16, 0, len(n.strings))
	for id := range n.strings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	storage := ot.NewWriter(64 * len(ids))
	w := ot.NewWriter(6 + 12*len(ids))
	w.WriteU16(0)                       // version
	w.WriteU16(uint16(len(ids)))        // count
	w.WriteU16(uint16(6 + 12*len(ids))) // storageOffset
	for _, id := range ids {
		s, err := enc.String(n.strings[id])
		if err != nil {
			return nil, err
		}
		if len(s) > math.MaxUint16 || storage.Len() > math.MaxUint16 {
			return nil, fmt.Errorf("%w: name %d does not fit into the string storage", ot.ErrOffsetOverflow, id)
		}
		w.WriteU16(3)                     // platformID: Windows
		w.WriteU16(1)                     // encodingID: Unicode BMP
		w.WriteU16(0x0409)                // languageID: en-US
		w.WriteU16(id)                    // nameID
		w.WriteU16(uint16(len(s)))        // length
		w.WriteU16(uint16(storage.Len())) // stringOffset
		storage.WriteBytes([]byte(s))
	}
	w.WriteBytes(storage.Bytes())
	return w.Bytes(), nil
}
