/*
Package ot provides the low-level vocabulary for OpenType font data:
tags, glyph indices, fixed-point number formats, and big-endian reading and
writing of binary segments.

Packages building font tables (otbuild, otfont) write through a Writer;
packages inspecting fonts (otquery) read through a Segment. Neither
direction interprets tables here. Package `ot` is the common ground both
sides agree on, nothing more.

Code comments will often cite passages from the OpenType specification
version 1.8.4; see https://docs.microsoft.com/en-us/typography/opentype/spec/.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'shaper.fonts'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fonts")
}
