package diag

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestUTF16Offsets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	src := "a😀béc" // 'a' 1 byte, emoji 4 bytes/2 units, 'b', 'é' 2 bytes/1 unit, 'c'
	data := []struct {
		offset, units int
	}{
		{0, 0}, {1, 1}, {5, 3}, {6, 4}, {8, 5}, {9, 6}, {10, 7},
	}
	for _, d := range data {
		assert.Equal(t, d.units, UTF16Offset(src, d.offset), "byte offset %d", d.offset)
	}
}

func TestReportRecordsBothSpans(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	src := "# 😀\nfoo"
	set := NewSet(src)
	set.Warning(Span{Start: 7, End: 10}, "foo is deprecated")
	set.Error(Span{Start: 10, End: 11}, "Expected ';'")
	if !assert.Equal(t, 2, set.Len()) {
		return
	}
	items := set.Items()
	assert.Equal(t, Span{7, 10}, items[0].Span)
	assert.Equal(t, Span{5, 8}, items[0].UTF16)
	assert.Equal(t, Span{10, 11}, items[1].Span)
	assert.Equal(t, Span{8, 9}, items[1].UTF16)
	assert.True(t, set.HasErrors())
	assert.False(t, items[0].IsError())
}

func TestWarningsAreNotErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	set := NewSet("x")
	set.Warning(Span{0, 1}, "just saying")
	assert.False(t, set.HasErrors())
}

func TestFormatMissingSemicolon(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	src := "languagesystem DFLT dflt"
	set := NewSet(src)
	set.Error(Span{len(src), len(src) + 1}, "Expected ';'")
	out := Format(set.Items()[0], src, "features.fea")
	want := strings.Join([]string{
		"error: Expected ';'",
		"in features.fea at 1:25",
		"1 | languagesystem DFLT dflt",
		"  | " + strings.Repeat(" ", 24) + "^",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestFormatClipsToLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	src := "feature kern {\n\tpos A B -50;\n} kern;\n"
	set := NewSet(src)
	start := strings.Index(src, "A B")
	set.Warning(Span{start, len(src)}, "spans lines")
	out := Format(set.Items()[0], src, "f.fea")
	lines := strings.Split(out, "\n")
	if assert.Len(t, lines, 4) {
		assert.Equal(t, "warning: spans lines", lines[0])
		assert.Equal(t, "in f.fea at 2:6", lines[1])
		assert.Equal(t, "2 | \tpos A B -50;", lines[2])
		assert.Equal(t, "  | \t    ^^^^^^^^", lines[3])
	}
}

func TestDisplayLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	set := NewSet("abc")
	for i := 0; i < 3; i++ {
		set.Warning(Span{i, i + 1}, "w")
	}
	out := set.Display("x.fea", 2)
	assert.Equal(t, 2, strings.Count(out, "warning: w"))
	assert.True(t, strings.HasSuffix(out, "… and 1 more"))
	all := set.Display("x.fea", 0)
	assert.Equal(t, 3, strings.Count(all, "warning: w"))
}
