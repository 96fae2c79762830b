/*
Package diag collects diagnostics for feature source.

Every diagnostic refers to a span of the source text. Spans are byte
offsets into the UTF-8 source; as clients often index strings by UTF-16 code
units, diagnostics carry the equivalent UTF-16 span as well.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package diag

import (
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'shaper.fea'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fea")
}

// Level is the severity of a diagnostic.
type Level int

const (
	Error Level = iota
	Warning
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	}
	return "unknown"
}

// Span is a half-open range [Start, End) of offsets into the source.
type Span struct {
	Start int
	End   int
}

// Len returns the length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Diagnostic is a message about the source, attached to a span.
type Diagnostic struct {
	Level Level
	Text  string
	Span  Span // UTF-8 byte offsets
	UTF16 Span // the same range in UTF-16 code units
}

// IsError is a predicate: is this an error-level diagnostic?
func (d Diagnostic) IsError() bool {
	return d.Level == Error
}

// Set is an ordered sequence of diagnostics for a single source text.
// A Set is not safe for concurrent use; each compilation owns its own.
type Set struct {
	source string
	items  []Diagnostic
	errors int
}

// NewSet creates an empty diagnostic set for source.
func NewSet(source string) *Set {
	return &Set{source: source}
}

// Source returns the source text the set refers to.
func (s *Set) Source() string {
	return s.source
}

// Report appends a diagnostic. Spans are normalized so that
// 0 ≤ Start ≤ End and Start ≤ len(source); End may extend past the end of
// the source by the width of the anchor following the last token.
func (s *Set) Report(level Level, text string, span Span) {
	if span.Start < 0 {
		span.Start = 0
	}
	if span.Start > len(s.source) {
		span.Start = len(s.source)
	}
	if span.End < span.Start {
		span.End = span.Start
	}
	d := Diagnostic{
		Level: level,
		Text:  text,
		Span:  span,
		UTF16: Span{
			Start: UTF16Offset(s.source, span.Start),
			End:   UTF16Offset(s.source, span.End),
		},
	}
	if level == Error {
		s.errors++
	}
	tracer().Debugf("%s at %d…%d: %s", level, span.Start, span.End, text)
	s.items = append(s.items, d)
}

// Error reports an error-level diagnostic.
func (s *Set) Error(span Span, text string) {
	s.Report(Error, text, span)
}

// Warning reports a warning-level diagnostic.
func (s *Set) Warning(span Span, text string) {
	s.Report(Warning, text, span)
}

// HasErrors is a predicate: has any error been reported?
func (s *Set) HasErrors() bool {
	return s.errors > 0
}

// Len returns the number of diagnostics.
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns a copy of the diagnostics in report order.
func (s *Set) Items() []Diagnostic {
	items := make([]Diagnostic, len(s.items))
	copy(items, s.items)
	return items
}

// UTF16Offset maps a byte offset into src to the number of UTF-16 code
// units preceding it. Code points outside the BMP occupy two units (a
// surrogate pair), everything else one. Invalid UTF-8 bytes count as one
// unit each, as a host decoder would replace them by U+FFFD. Offsets beyond
// the end of src map one byte to one unit.
func UTF16Offset(src string, offset int) int {
	if offset <= 0 {
		return 0
	}
	units, i := 0, 0
	for i < len(src) && i < offset {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		i += size
	}
	if offset > len(src) {
		units += offset - len(src)
	}
	return units
}
