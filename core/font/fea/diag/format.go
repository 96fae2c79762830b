package diag

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxDiagnostics is the default limit of diagnostics rendered by Display.
const MaxDiagnostics = 100

// Format renders a diagnostic for humans:
//
//	error: Expected ';'
//	in features.fea at 1:25
//	1 | languagesystem DFLT dflt
//	  |                         ^
//
// Line and column are 1-based, columns count characters. The caret line
// marks the span, clipped to the line the span starts on.
func Format(d Diagnostic, source, fileLabel string) string {
	start := d.Span.Start
	if start > len(source) {
		start = len(source)
	}
	lineStart := strings.LastIndexByte(source[:start], '\n') + 1
	lineEnd := len(source)
	if i := strings.IndexByte(source[lineStart:], '\n'); i >= 0 {
		lineEnd = lineStart + i
	}
	line := strings.TrimSuffix(source[lineStart:lineEnd], "\r")
	lineNo := strings.Count(source[:lineStart], "\n") + 1
	col := utf8.RuneCountInString(source[lineStart:start]) + 1
	//
	end := d.Span.End
	if end > lineStart+len(line) {
		end = lineStart + len(line)
	}
	carets := 0
	if end > start {
		carets = utf8.RuneCountInString(source[start:end])
	}
	if carets < 1 {
		carets = 1
	}
	//
	var b strings.Builder
	gutter := strings.Repeat(" ", len(strconv.Itoa(lineNo)))
	fmt.Fprintf(&b, "%s: %s\n", d.Level, d.Text)
	fmt.Fprintf(&b, "in %s at %d:%d\n", fileLabel, lineNo, col)
	fmt.Fprintf(&b, "%d | %s\n", lineNo, line)
	b.WriteString(gutter)
	b.WriteString(" | ")
	for _, r := range source[lineStart:start] {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString(strings.Repeat("^", carets))
	return b.String()
}

// Display renders all diagnostics of the set, separated by newlines. At most
// max diagnostics are rendered (MaxDiagnostics if max ≤ 0); if there are
// more, a final line tells how many have been left out.
func (s *Set) Display(fileLabel string, max int) string {
	if max <= 0 {
		max = MaxDiagnostics
	}
	var b strings.Builder
	for i, d := range s.items {
		if i == max {
			fmt.Fprintf(&b, "\n… and %d more", len(s.items)-max)
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(Format(d, s.source, fileLabel))
	}
	return b.String()
}
