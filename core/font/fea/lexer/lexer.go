/*
Package lexer splits feature source into tokens.

The lexer recognizes the subset of the AFDKO feature file syntax needed for
shaper fonts: identifiers (glyph names, tags, axis names), signed numbers,
the keywords languagesystem, feature and pos, punctuation, and the comment
'# Automatic Code', which is a token of its own. All other comments are
discarded.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/shaperfont/core/font/fea/diag"
)

// tracer traces with key 'shaper.fea'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fea")
}

// Lexer produces tokens from source text. Lexing errors are reported to a
// diagnostic set; after an error the lexer yields EOF only.
type Lexer struct {
	src   string
	pos   int
	diags *diag.Set
	done  bool
}

// New creates a lexer for src, reporting to diags.
func New(src string, diags *diag.Set) *Lexer {
	return &Lexer{src: src, diags: diags}
}

// Tokenize lexes all of src. The result always ends with an EOF token.
func Tokenize(src string, diags *diag.Set) []Token {
	l := New(src, diags)
	var tokens []Token
	for {
		t := l.Next()
		tokens = append(tokens, t)
		if t.Kind == EOF {
			break
		}
	}
	tracer().Debugf("lexer produced %d tokens", len(tokens))
	return tokens
}

// Next returns the next token.
func (l *Lexer) Next() Token {
	if l.done {
		return l.eof()
	}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case c == '#':
			if t, ok := l.comment(); ok {
				return t
			}
		case isIdentStart(c):
			return l.ident()
		case isDigit(c):
			return l.number()
		case (c == '-' || c == '+') && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
			return l.number()
		default:
			if k, ok := punctuation(c); ok {
				l.pos++
				return Token{Kind: k, Span: diag.Span{Start: l.pos - 1, End: l.pos}}
			}
			l.unexpected()
			return l.eof()
		}
	}
	return l.eof()
}

func (l *Lexer) eof() Token {
	l.done = true
	return Token{Kind: EOF, Span: diag.Span{Start: l.pos, End: l.pos}}
}

// comment skips a line comment. If its trimmed body is exactly the
// automatic code marker, an AutoCode token is returned.
func (l *Lexer) comment() (Token, bool) {
	start := l.pos
	end := strings.IndexByte(l.src[start:], '\n')
	if end < 0 {
		end = len(l.src)
	} else {
		end += start
	}
	l.pos = end
	body := strings.TrimSpace(l.src[start+1 : end])
	if body == autoCodeMarker {
		stop := start + 1 + strings.Index(l.src[start+1:end], autoCodeMarker) + len(autoCodeMarker)
		return Token{Kind: AutoCode, Span: diag.Span{Start: start, End: stop}}, true
	}
	return Token{}, false
}

func (l *Lexer) ident() Token {
	start := l.pos
	l.pos++ // start character, possibly an escape
	for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
		l.pos++
	}
	span := diag.Span{Start: start, End: l.pos}
	text := l.src[start:l.pos]
	if text == "\\" {
		l.pos = start
		l.unexpected()
		return l.eof()
	}
	if k, ok := keywords[text]; ok {
		return Token{Kind: k, Span: span}
	}
	return Token{Kind: Ident, Span: span}
}

func (l *Lexer) number() Token {
	start := l.pos
	if c := l.src[l.pos]; c == '-' || c == '+' {
		l.pos++
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	return Token{Kind: Number, Span: diag.Span{Start: start, End: l.pos}}
}

func (l *Lexer) unexpected() {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.diags.Error(diag.Span{Start: l.pos, End: l.pos + size},
		fmt.Sprintf("Unexpected character %q", r))
}

func punctuation(c byte) (Kind, bool) {
	switch c {
	case '{':
		return LBrace, true
	case '}':
		return RBrace, true
	case '(':
		return LParen, true
	case ')':
		return RParen, true
	case ';':
		return Semi, true
	case '=':
		return Equals, true
	case ':':
		return Colon, true
	case ',':
		return Comma, true
	}
	return EOF, false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return isLetter(c) || c == '_' || c == '.' || c == '\\'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || strings.IndexByte("_.-*+^|~", c) >= 0
}
