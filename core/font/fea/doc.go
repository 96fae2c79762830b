/*
Package fea compiles OpenType feature source into a minimal shaping font.

The feature source uses a subset of the AFDKO feature file syntax:
languagesystem declarations, feature blocks with single pair positioning
rules, feature references and '# Automatic Code' markers. Positioning
values may be variable, given as a list of locations in the design space:

	languagesystem DFLT dflt;
	feature kern {
	    pos A V (wght=400:-50 wght=900:0 wght=100:-100);
	} kern;

Compile runs a compilation in stages: lexing and parsing, resolution of
glyphs, features and lookups, the variation model (if the font has axes or
the source has variable values), building of the font tables, and finally
assembly of the font file. Problems in the source are reported as
diagnostics, never as Go errors. Any error diagnostic stops the compilation
after the stage that reported it, and the result carries no font.

Compilations share no state; Compile may be called concurrently.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fea

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'shaper.fea'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fea")
}
