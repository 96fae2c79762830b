/*
Package ast defines the statement-level syntax tree of feature source.

Nodes keep the spans of their source text, so that later stages can
attach diagnostics to them. The tree is not resolved: glyph names, tags
and axis names are plain strings at this level.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ast

import "github.com/npillmayer/shaperfont/core/font/fea/diag"

// Node is implemented by every syntax tree node.
type Node interface {
	Span() diag.Span
}

// Name is an identifier occurrence: a glyph name, a tag or an axis name.
type Name struct {
	Text    string
	SrcSpan diag.Span
}

func (n Name) Span() diag.Span { return n.SrcSpan }

// Number is a numeric literal.
type Number struct {
	Text    string
	Value   float64
	SrcSpan diag.Span
}

func (n Number) Span() diag.Span { return n.SrcSpan }

// IsInteger is a predicate: does the literal denote a whole number?
func (n Number) IsInteger() bool {
	return n.Value == float64(int64(n.Value))
}

// File is the root of a syntax tree.
type File struct {
	LanguageSystems []*LanguageSystem
	Features        []*FeatureBlock
}

// LanguageSystem is a 'languagesystem <script> <language>;' declaration.
type LanguageSystem struct {
	Script   Name
	Language Name
	SrcSpan  diag.Span
}

func (ls *LanguageSystem) Span() diag.Span { return ls.SrcSpan }

// FeatureBlock is a 'feature <tag> { … } <tag>;' block.
type FeatureBlock struct {
	Tag        Name
	EndTag     Name
	Statements []Statement
	SrcSpan    diag.Span
}

func (fb *FeatureBlock) Span() diag.Span { return fb.SrcSpan }

// Statement is one of *PositionPair, *FeatureReference or
// *AutomaticCodeMarker.
type Statement interface {
	Node
	statement()
}

// PositionPair is a single pair positioning rule 'pos <glyph> <glyph> <value>;'.
type PositionPair struct {
	First   Name
	Second  Name
	Value   ValueRecord
	SrcSpan diag.Span
}

func (pp *PositionPair) Span() diag.Span { return pp.SrcSpan }
func (pp *PositionPair) statement()      {}

// FeatureReference is a 'feature <tag>;' statement inside a feature block.
type FeatureReference struct {
	Tag     Name
	SrcSpan diag.Span
}

func (fr *FeatureReference) Span() diag.Span { return fr.SrcSpan }
func (fr *FeatureReference) statement()      {}

// AutomaticCodeMarker is the comment '# Automatic Code' inside a feature block.
type AutomaticCodeMarker struct {
	SrcSpan diag.Span
}

func (m *AutomaticCodeMarker) Span() diag.Span { return m.SrcSpan }
func (m *AutomaticCodeMarker) statement()      {}

// ValueRecord is either a scalar value or a list of values at locations in
// the design space.
type ValueRecord struct {
	Scalar  *Number
	Entries []VariableEntry
	SrcSpan diag.Span
}

func (v ValueRecord) Span() diag.Span { return v.SrcSpan }

// IsVariable is a predicate: is this a variable value record?
func (v ValueRecord) IsVariable() bool {
	return v.Scalar == nil
}

// VariableEntry is a 'location:value' entry of a variable value record,
// where location is one or more comma-separated 'axis=coordinate' pairs.
type VariableEntry struct {
	Location []AxisCoordinate
	Value    Number
	SrcSpan  diag.Span
}

func (e VariableEntry) Span() diag.Span { return e.SrcSpan }

// AxisCoordinate is an 'axis=coordinate' pair, in user space units.
type AxisCoordinate struct {
	Axis  Name
	Coord Number
}
