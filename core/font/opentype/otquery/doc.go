/*
Package otquery queries metrics and other information from OpenType fonts.

Package otquery reads fonts as they are produced by the feature compiler: it
parses the table directory, verifies checksums, and answers questions
about global metrics, glyph names, design axes and pair positioning. Clients
of this package will, amongst other, be:

▪︎ tests of the compiler, which check the binary output

▪︎ the command line front end, which lets users query kerning at a location
in the design space.

# Status

Only the subset of OpenType written by package otbuild is interpreted in
depth. Other fonts may be parsed, but queries will simply come up empty for
tables and formats not understood. No font collections are supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shaperfont/core"
)

// tracer writes to trace with key 'shaper.fonts'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fonts")
}

func errFontFormat(x string) error {
	return core.Error(core.EINVALID, "OpenType font format: %s", x)
}
