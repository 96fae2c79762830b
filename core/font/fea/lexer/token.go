package lexer

import "github.com/npillmayer/shaperfont/core/font/fea/diag"

// Kind is the category of a token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	KwLanguagesystem
	KwFeature
	KwPos
	LBrace
	RBrace
	LParen
	RParen
	Semi
	Equals
	Colon
	Comma
	AutoCode // the comment '# Automatic Code'
)

var kindNames = [...]string{
	EOF:              "end of input",
	Ident:            "identifier",
	Number:           "number",
	KwLanguagesystem: "'languagesystem'",
	KwFeature:        "'feature'",
	KwPos:            "'pos'",
	LBrace:           "'{'",
	RBrace:           "'}'",
	LParen:           "'('",
	RParen:           "')'",
	Semi:             "';'",
	Equals:           "'='",
	Colon:            "':'",
	Comma:            "','",
	AutoCode:         "'# Automatic Code'",
}

// String returns a description of k suitable for messages. Punctuation and
// keywords are quoted literally, other kinds are described by name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// keywords maps reserved words to their token kinds. It is never modified.
var keywords = map[string]Kind{
	"languagesystem": KwLanguagesystem,
	"feature":        KwFeature,
	"pos":            KwPos,
	"position":       KwPos,
}

// autoCodeMarker is the exact trimmed comment body denoting an insertion
// point for generated code.
const autoCodeMarker = "Automatic Code"

// Token is a lexical unit of the source. Its text is not stored, but sliced
// from the source when needed.
type Token struct {
	Kind Kind
	Span diag.Span
}

// Text returns the source text of the token.
// Glyph names escaped with a leading backslash are returned without it.
func (t Token) Text(src string) string {
	if t.Span.Start < 0 || t.Span.End > len(src) || t.Span.Start > t.Span.End {
		return ""
	}
	s := src[t.Span.Start:t.Span.End]
	if t.Kind == Ident && len(s) > 1 && s[0] == '\\' {
		return s[1:]
	}
	return s
}
