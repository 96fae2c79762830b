/*
Package otfont assembles font tables into an OpenType font file.

The assembler knows nothing about the content of tables, with the single
exception of table 'head', which receives the checksum adjustment for the
whole font. Output is fully determined by the tables given: tables are
ordered by tag, aligned to 4 bytes and padded with zeros.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otfont

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'shaper.fonts'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fonts")
}
