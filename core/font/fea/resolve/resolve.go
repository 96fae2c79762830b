/*
Package resolve checks a feature syntax tree against a glyph order and turns
it into a program of numbered lookups.

Resolution rules:

  - Glyph names of positioning statements must appear in the glyph order.
  - Feature blocks with the same tag are merged into one feature.
  - A contiguous run of positioning statements inside a feature block forms
    one lookup. Feature references and automatic code markers end a run.
    Lookup IDs are 1-based and count through the whole file in source order.
  - A feature reference adds the lookups of the referenced feature to the
    referencing one. Unknown references are reported as warnings.
  - An automatic code marker records the tag of its feature and the number
    of lookups allocated before it. Markers are ordered by tag.

Scalar values must be integers in the int16 range. Variable values are
passed through unchecked; they are the business of package variation.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package resolve

import (
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shaperfont/core/font/fea/ast"
	"github.com/npillmayer/shaperfont/core/font/fea/diag"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// tracer traces with key 'shaper.fea'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fea")
}

// Messages of the resolver.
const (
	MsgUnknownGlyph     = "Glyph '%s' is not in the glyph order."
	MsgEndTagMismatch   = "Feature end tag '%s' does not match '%s'."
	MsgFeatureNotFound  = "Referenced feature not found."
	MsgSelfReference    = "Feature references itself."
	MsgDuplicatePair    = "Duplicate pair; the first rule takes precedence."
	MsgDuplicateLangSys = "Duplicate languagesystem."
	MsgValueOutOfRange  = "Value must be an integer in the range -32768..32767."
)

// LanguageSystem is a script/language pair, in declaration order.
type LanguageSystem struct {
	Script   ot.Tag
	Language ot.Tag
}

// IsDefaultLanguage is a predicate: is this the default language system of
// its script?
func (ls LanguageSystem) IsDefaultLanguage() bool {
	return ls.Language == ot.T("dflt")
}

// Feature is the merged content of all feature blocks with one tag.
type Feature struct {
	Tag     ot.Tag
	Lookups []int // lookup IDs, ascending, without duplicates
}

// Pair is a resolved pair positioning rule.
type Pair struct {
	First, Second ot.GlyphIndex
	Value         ast.ValueRecord
	Scalar        int16 // valid if Value is not variable
	Span          diag.Span
}

// Lookup is a numbered run of pair positioning rules.
type Lookup struct {
	ID      int
	Feature ot.Tag
	Pairs   []Pair
	seen    map[[2]ot.GlyphIndex]bool
}

// Marker is an insertion point for generated code.
type Marker struct {
	Tag      string
	LookupID int
}

// Program is the result of resolution.
type Program struct {
	LanguageSystems []LanguageSystem
	Features        []*Feature // in order of first declaration
	Lookups         []*Lookup  // Lookups[i].ID == i+1
	Markers         []Marker   // ordered by tag
}

// Feature returns the feature for a tag, or nil.
func (p *Program) Feature(tag ot.Tag) *Feature {
	for _, f := range p.Features {
		if f.Tag == tag {
			return f
		}
	}
	return nil
}

// HasVariableValues is a predicate: does any rule carry a variable value?
func (p *Program) HasVariableValues() bool {
	for _, l := range p.Lookups {
		for _, pair := range l.Pairs {
			if pair.Value.IsVariable() {
				return true
			}
		}
	}
	return false
}

// reference is a feature reference waiting for all feature blocks to be
// known.
type reference struct {
	from *Feature
	to   ot.Tag
}

type resolver struct {
	glyphs   map[string]ot.GlyphIndex
	diags    *diag.Set
	prog     *Program
	features map[ot.Tag]*Feature
	refs     []reference
}

// Resolve resolves a syntax tree against glyphOrder, reporting problems to
// diags.
func Resolve(file *ast.File, glyphOrder []string, diags *diag.Set) *Program {
	r := &resolver{
		glyphs:   make(map[string]ot.GlyphIndex, len(glyphOrder)),
		diags:    diags,
		prog:     &Program{Markers: []Marker{}},
		features: make(map[ot.Tag]*Feature),
	}
	for i, name := range glyphOrder {
		if _, ok := r.glyphs[name]; !ok {
			r.glyphs[name] = ot.GlyphIndex(i)
		}
	}
	r.languageSystems(file.LanguageSystems)
	declared := make(map[string]bool, len(file.Features))
	for _, fb := range file.Features {
		declared[fb.Tag.Text] = true
	}
	for _, fb := range file.Features {
		r.featureBlock(fb, declared)
	}
	r.resolveReferences()
	sort.SliceStable(r.prog.Markers, func(i, j int) bool {
		return r.prog.Markers[i].Tag < r.prog.Markers[j].Tag
	})
	tracer().Infof("resolved %d features with %d lookups, %d markers",
		len(r.prog.Features), len(r.prog.Lookups), len(r.prog.Markers))
	return r.prog
}

func (r *resolver) languageSystems(decls []*ast.LanguageSystem) {
	seen := make(map[LanguageSystem]bool, len(decls))
	for _, decl := range decls {
		ls := LanguageSystem{Script: ot.T(decl.Script.Text), Language: ot.T(decl.Language.Text)}
		if seen[ls] {
			r.diags.Warning(decl.Span(), MsgDuplicateLangSys)
			continue
		}
		seen[ls] = true
		r.prog.LanguageSystems = append(r.prog.LanguageSystems, ls)
	}
}

func (r *resolver) feature(tag ot.Tag) *Feature {
	if f, ok := r.features[tag]; ok {
		return f
	}
	f := &Feature{Tag: tag}
	r.features[tag] = f
	r.prog.Features = append(r.prog.Features, f)
	return f
}

func (r *resolver) featureBlock(fb *ast.FeatureBlock, declared map[string]bool) {
	if fb.EndTag.Text != "" && fb.EndTag.Text != fb.Tag.Text {
		r.diags.Error(fb.EndTag.Span(), fmt.Sprintf(MsgEndTagMismatch, fb.EndTag.Text, fb.Tag.Text))
	}
	feature := r.feature(ot.T(fb.Tag.Text))
	var current *Lookup
	for _, stmt := range fb.Statements {
		switch s := stmt.(type) {
		case *ast.PositionPair:
			pair, ok := r.pair(s)
			if !ok {
				continue
			}
			if current == nil {
				current = r.newLookup(feature)
			}
			key := [2]ot.GlyphIndex{pair.First, pair.Second}
			if current.seen[key] {
				r.diags.Warning(s.Span(), MsgDuplicatePair)
				continue
			}
			current.seen[key] = true
			current.Pairs = append(current.Pairs, pair)
		case *ast.FeatureReference:
			current = nil
			switch {
			case s.Tag.Text == fb.Tag.Text:
				r.diags.Warning(s.Tag.Span(), MsgSelfReference)
			case !declared[s.Tag.Text]:
				r.diags.Warning(s.Tag.Span(), MsgFeatureNotFound)
			default:
				r.refs = append(r.refs, reference{from: feature, to: ot.T(s.Tag.Text)})
			}
		case *ast.AutomaticCodeMarker:
			current = nil
			r.prog.Markers = append(r.prog.Markers, Marker{
				Tag:      fb.Tag.Text,
				LookupID: len(r.prog.Lookups),
			})
		}
	}
}

func (r *resolver) newLookup(f *Feature) *Lookup {
	l := &Lookup{
		ID:      len(r.prog.Lookups) + 1,
		Feature: f.Tag,
		seen:    make(map[[2]ot.GlyphIndex]bool),
	}
	r.prog.Lookups = append(r.prog.Lookups, l)
	f.Lookups = append(f.Lookups, l.ID)
	tracer().Debugf("lookup %d opened in feature '%s'", l.ID, f.Tag)
	return l
}

func (r *resolver) pair(s *ast.PositionPair) (Pair, bool) {
	pair := Pair{Value: s.Value, Span: s.Span()}
	ok := true
	if gid, found := r.glyph(s.First); found {
		pair.First = gid
	} else {
		ok = false
	}
	if gid, found := r.glyph(s.Second); found {
		pair.Second = gid
	} else {
		ok = false
	}
	if !s.Value.IsVariable() {
		v, valid := ScalarValue(*s.Value.Scalar)
		if !valid {
			r.diags.Error(s.Value.Span(), MsgValueOutOfRange)
			ok = false
		}
		pair.Scalar = v
	}
	return pair, ok
}

func (r *resolver) glyph(n ast.Name) (ot.GlyphIndex, bool) {
	gid, ok := r.glyphs[n.Text]
	if !ok {
		r.diags.Error(n.Span(), fmt.Sprintf(MsgUnknownGlyph, n.Text))
	}
	return gid, ok
}

// resolveReferences adds the lookups of referenced features, following
// references transitively.
func (r *resolver) resolveReferences() {
	graph := make(map[*Feature][]ot.Tag)
	for _, ref := range r.refs {
		graph[ref.from] = append(graph[ref.from], ref.to)
	}
	for _, f := range r.prog.Features {
		if len(graph[f]) == 0 {
			continue
		}
		visited := map[ot.Tag]bool{f.Tag: true}
		ids := append([]int(nil), f.Lookups...)
		var visit func(*Feature)
		visit = func(g *Feature) {
			for _, tag := range graph[g] {
				if visited[tag] {
					continue
				}
				visited[tag] = true
				target := r.features[tag]
				ids = append(ids, target.Lookups...)
				visit(target)
			}
		}
		visit(f)
		f.Lookups = uniqueSorted(ids)
	}
}

func uniqueSorted(ids []int) []int {
	sort.Ints(ids)
	out := ids[:0]
	for _, id := range ids {
		if len(out) == 0 || id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// ScalarValue converts a numeric literal to a design unit value. It returns
// false if n is not an integer in the int16 range.
func ScalarValue(n ast.Number) (int16, bool) {
	if !n.IsInteger() || n.Value < math.MinInt16 || n.Value > math.MaxInt16 {
		return 0, false
	}
	return int16(n.Value), true
}
