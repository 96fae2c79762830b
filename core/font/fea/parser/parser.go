/*
Package parser builds a syntax tree from feature source.

The parser is recursive-descent over this grammar:

	file           := languagesystem+ feature*
	languagesystem := "languagesystem" tag tag ";"
	feature        := "feature" tag "{" statement* "}" tag ";"
	statement      := pos | featureRef | "# Automatic Code"
	pos            := ("pos" | "position") glyph glyph valueRecord ";"
	valueRecord    := number | "(" varEntry+ ")"
	varEntry       := location ":" number
	location       := axis "=" number ("," axis "=" number)*
	featureRef     := "feature" tag ";"

On the first structural mismatch the parser reports "Expected …", anchored
right behind the last token consumed, and stops. The partial tree is
returned nevertheless.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package parser

import (
	"fmt"
	"strconv"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shaperfont/core/font/fea/ast"
	"github.com/npillmayer/shaperfont/core/font/fea/diag"
	"github.com/npillmayer/shaperfont/core/font/fea/lexer"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// tracer traces with key 'shaper.fea'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fea")
}

// Parser holds the state of parsing one source text.
type Parser struct {
	src    string
	tokens []lexer.Token
	pos    int
	last   *lexer.Token // last token consumed
	diags  *diag.Set
	failed bool
}

// Parse lexes and parses src, reporting problems to diags.
func Parse(src string, diags *diag.Set) *ast.File {
	p := &Parser{
		src:    src,
		tokens: lexer.Tokenize(src, diags),
		diags:  diags,
	}
	f := p.parseFile()
	tracer().Debugf("parsed %d languagesystems and %d feature blocks",
		len(f.LanguageSystems), len(f.Features))
	return f
}

// --- Token handling --------------------------------------------------------

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() lexer.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	if t.Kind != lexer.EOF {
		p.last = &p.tokens[p.pos-1]
	}
	return t
}

func (p *Parser) at(k lexer.Kind) bool {
	return p.peek().Kind == k
}

// anchor is the span immediately following the last token consumed.
func (p *Parser) anchor() diag.Span {
	if p.last == nil {
		return diag.Span{Start: 0, End: 1}
	}
	return diag.Span{Start: p.last.Span.End, End: p.last.Span.End + 1}
}

// expected reports a structural mismatch and stops the parse. If the lexer
// has already reported an error, the mismatch is a consequence of it and is
// not reported again.
func (p *Parser) expected(what string) {
	if !p.failed && !p.diags.HasErrors() {
		p.diags.Error(p.anchor(), fmt.Sprintf("Expected %s", what))
	}
	p.failed = true
}

func (p *Parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.failed {
		return lexer.Token{}, false
	}
	if !p.at(k) {
		p.expected(k.String())
		return lexer.Token{}, false
	}
	return p.next(), true
}

func (p *Parser) name(t lexer.Token) ast.Name {
	return ast.Name{Text: t.Text(p.src), SrcSpan: t.Span}
}

func (p *Parser) expectTag() (ast.Name, bool) {
	if p.failed {
		return ast.Name{}, false
	}
	if !p.at(lexer.Ident) {
		p.expected("tag")
		return ast.Name{}, false
	}
	n := p.name(p.next())
	if !ot.ValidTag(n.Text) {
		p.diags.Error(n.SrcSpan, fmt.Sprintf("Invalid tag '%s': tags have 1 to 4 characters.", n.Text))
	}
	return n, true
}

func (p *Parser) expectGlyph() (ast.Name, bool) {
	if p.failed {
		return ast.Name{}, false
	}
	if !p.at(lexer.Ident) {
		p.expected("glyph name")
		return ast.Name{}, false
	}
	return p.name(p.next()), true
}

func (p *Parser) expectNumber() (ast.Number, bool) {
	t, ok := p.expect(lexer.Number)
	if !ok {
		return ast.Number{}, false
	}
	text := t.Text(p.src)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.diags.Error(t.Span, fmt.Sprintf("Invalid number '%s'.", text))
	}
	return ast.Number{Text: text, Value: v, SrcSpan: t.Span}, true
}

func (p *Parser) from(start diag.Span) diag.Span {
	end := start.End
	if p.last != nil && p.last.Span.End > end {
		end = p.last.Span.End
	}
	return diag.Span{Start: start.Start, End: end}
}

// skipMarkers drops automatic code markers where they carry no meaning.
func (p *Parser) skipMarkers() {
	for p.at(lexer.AutoCode) {
		p.next()
	}
}

// --- Productions -----------------------------------------------------------

func (p *Parser) parseFile() *ast.File {
	f := &ast.File{}
	p.skipMarkers()
	if !p.at(lexer.KwLanguagesystem) {
		p.expected(lexer.KwLanguagesystem.String())
		return f
	}
	for !p.failed {
		p.skipMarkers()
		switch p.peek().Kind {
		case lexer.KwLanguagesystem:
			if len(f.Features) > 0 {
				p.expected(lexer.KwFeature.String())
				break
			}
			if ls := p.parseLanguageSystem(); ls != nil {
				f.LanguageSystems = append(f.LanguageSystems, ls)
			}
		case lexer.KwFeature:
			if fb := p.parseFeature(); fb != nil {
				f.Features = append(f.Features, fb)
			}
		case lexer.EOF:
			return f
		default:
			p.expected(lexer.KwFeature.String())
		}
	}
	return f
}

func (p *Parser) parseLanguageSystem() *ast.LanguageSystem {
	kw := p.next()
	script, _ := p.expectTag()
	lang, _ := p.expectTag()
	if _, ok := p.expect(lexer.Semi); !ok {
		return nil
	}
	return &ast.LanguageSystem{Script: script, Language: lang, SrcSpan: p.from(kw.Span)}
}

func (p *Parser) parseFeature() *ast.FeatureBlock {
	kw := p.next()
	tag, ok := p.expectTag()
	if !ok {
		return nil
	}
	fb := &ast.FeatureBlock{Tag: tag}
	if _, ok := p.expect(lexer.LBrace); !ok {
		return fb
	}
	for !p.failed && !p.at(lexer.RBrace) {
		switch p.peek().Kind {
		case lexer.KwPos:
			if pp := p.parsePosition(); pp != nil {
				fb.Statements = append(fb.Statements, pp)
			}
		case lexer.KwFeature:
			if fr := p.parseFeatureReference(); fr != nil {
				fb.Statements = append(fb.Statements, fr)
			}
		case lexer.AutoCode:
			t := p.next()
			fb.Statements = append(fb.Statements, &ast.AutomaticCodeMarker{SrcSpan: t.Span})
		default:
			p.expected(lexer.RBrace.String())
		}
	}
	if _, ok := p.expect(lexer.RBrace); !ok {
		return fb
	}
	fb.EndTag, _ = p.expectTag()
	p.expect(lexer.Semi)
	fb.SrcSpan = p.from(kw.Span)
	return fb
}

func (p *Parser) parseFeatureReference() *ast.FeatureReference {
	kw := p.next()
	tag, ok := p.expectTag()
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.Semi); !ok {
		return nil
	}
	return &ast.FeatureReference{Tag: tag, SrcSpan: p.from(kw.Span)}
}

func (p *Parser) parsePosition() *ast.PositionPair {
	kw := p.next()
	first, _ := p.expectGlyph()
	second, _ := p.expectGlyph()
	value, ok := p.parseValueRecord()
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.Semi); !ok {
		return nil
	}
	return &ast.PositionPair{
		First:   first,
		Second:  second,
		Value:   value,
		SrcSpan: p.from(kw.Span),
	}
}

func (p *Parser) parseValueRecord() (ast.ValueRecord, bool) {
	if p.failed {
		return ast.ValueRecord{}, false
	}
	switch p.peek().Kind {
	case lexer.Number:
		n, _ := p.expectNumber()
		return ast.ValueRecord{Scalar: &n, SrcSpan: n.SrcSpan}, true
	case lexer.LParen:
		return p.parseVariableValue()
	}
	p.expected("value record")
	return ast.ValueRecord{}, false
}

func (p *Parser) parseVariableValue() (ast.ValueRecord, bool) {
	open := p.next()
	vr := ast.ValueRecord{}
	for !p.failed {
		entry, ok := p.parseVariableEntry()
		if !ok {
			return vr, false
		}
		vr.Entries = append(vr.Entries, entry)
		if p.at(lexer.RParen) {
			p.next()
			vr.SrcSpan = p.from(open.Span)
			return vr, true
		}
	}
	return vr, false
}

func (p *Parser) parseVariableEntry() (ast.VariableEntry, bool) {
	entry := ast.VariableEntry{}
	start := p.peek().Span
	for {
		if !p.at(lexer.Ident) {
			p.expected("axis tag")
			return entry, false
		}
		axis := p.name(p.next())
		if _, ok := p.expect(lexer.Equals); !ok {
			return entry, false
		}
		coord, ok := p.expectNumber()
		if !ok {
			return entry, false
		}
		entry.Location = append(entry.Location, ast.AxisCoordinate{Axis: axis, Coord: coord})
		if !p.at(lexer.Comma) {
			break
		}
		p.next()
	}
	if _, ok := p.expect(lexer.Colon); !ok {
		return entry, false
	}
	value, ok := p.expectNumber()
	if !ok {
		return entry, false
	}
	entry.Value = value
	entry.SrcSpan = p.from(start)
	return entry, true
}
