/*
Package otbuild builds the binary tables of a minimal shaping font.

A shaping font has no outlines and no character map. It carries just enough
tables for a shaping engine to load it and to apply its layout features:

▪︎ head, hhea, hmtx, maxp, post and name, with every glyph having the same
advance width

▪︎ GPOS with pair positioning lookups, and an empty GSUB

▪︎ for variable fonts, fvar and a GDEF table holding the item variation
store which backs the variable GPOS values.

All tables are built deterministically: no timestamps, no map iteration
order leaking into the output.

Code comments will often cite passages from the OpenType specification
version 1.8.4; see https://docs.microsoft.com/en-us/typography/opentype/spec/.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otbuild

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'shaper.fonts'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fonts")
}
