package variation

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/shaperfont/core/font/fea/ast"
	"github.com/npillmayer/shaperfont/core/font/fea/diag"
	"github.com/npillmayer/shaperfont/core/font/fea/parser"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	wght = Axis{Tag: ot.T("wght"), Min: 100, Default: 400, Max: 900}
	wdth = Axis{Tag: ot.T("wdth"), Min: 50, Default: 100, Max: 100}
)

// valueRecord parses the value record of the first rule of a kern feature.
func valueRecord(t *testing.T, value string) (ast.ValueRecord, *diag.Set) {
	src := "languagesystem DFLT dflt; feature kern { pos A V " + value + "; } kern;"
	set := diag.NewSet(src)
	f := parser.Parse(src, set)
	require.False(t, set.HasErrors(), "unexpected syntax error: %v", set.Items())
	return f.Features[0].Statements[0].(*ast.PositionPair).Value, set
}

func at(s *Space, w float64) Location {
	return s.Locate(map[ot.Tag]float64{ot.T("wght"): w})
}

func TestNormalize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	s := NewSpace([]Axis{wght, wdth})
	assert.Equal(t, -1.0, s.Normalize(0, 100))
	assert.Equal(t, 0.0, s.Normalize(0, 400))
	assert.Equal(t, 1.0, s.Normalize(0, 900))
	assert.Equal(t, 0.5, s.Normalize(0, 650))
	assert.Equal(t, -0.5, s.Normalize(0, 250))
	assert.Equal(t, -1.0, s.Normalize(0, 20), "coordinates are clamped")
	assert.Equal(t, -0.5, s.Normalize(1, 75))
	assert.Equal(t, 0.0, s.Normalize(1, 120), "no range above the default")
	// F2Dot14 quantization: 1/3 is not representable
	assert.Equal(t, ot.ToF2Dot14(1.0/3).Float(), s.Normalize(0, 400+500.0/3))
	loc := s.Locate(map[ot.Tag]float64{ot.T("wdth"): 50, ot.T("XXXX"): 1})
	assert.Equal(t, Location{0, -1}, loc)
}

func TestWeightInterpolation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	s := NewSpace([]Axis{wght})
	vr, set := valueRecord(t, "(wght=400:-50 wght=900:0 wght=100:-100)")
	v, ok := s.Resolve(vr, set)
	require.True(t, ok, "diagnostics: %v", set.Items())
	assert.Equal(t, int16(-50), v.Default)
	require.Len(t, v.Deltas, 2)
	assert.Equal(t, -50.0, v.Evaluate(at(s, 400)))
	assert.Equal(t, 0.0, v.Evaluate(at(s, 900)))
	assert.Equal(t, -100.0, v.Evaluate(at(s, 100)))
	assert.InDelta(t, -25.0, v.Evaluate(at(s, 650)), 1e-9)
	assert.InDelta(t, -75.0, v.Evaluate(at(s, 250)), 1e-9)
}

func TestImplicitDefault(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	s := NewSpace([]Axis{wght})
	vr, set := valueRecord(t, "(wght=900:10)")
	v, ok := s.Resolve(vr, set)
	require.True(t, ok)
	assert.Equal(t, int16(0), v.Default)
	assert.Equal(t, 10.0, v.Evaluate(at(s, 900)))
	assert.Equal(t, 0.0, v.Evaluate(at(s, 100)))
}

func TestModelSplitsBoxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	m, err := NewModel([]Location{{1}, {0}, {0.5}})
	require.NoError(t, err)
	supports := m.Supports()
	require.Len(t, supports, 3)
	assert.Equal(t, Region{{0, 0.5, 1}}, supports[1])
	assert.Equal(t, Region{{0.5, 1, 1}}, supports[2])
	deltas := m.Deltas([]float64{40, 0, 10})
	assert.Equal(t, []int{0, 10, 40}, deltas)
	assert.InDelta(t, 25.0, m.Interpolate(deltas, Location{0.75}), 1e-9)
	assert.InDelta(t, 5.0, m.Interpolate(deltas, Location{0.25}), 1e-9)
}

func TestModelTwoAxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	locs := []Location{{1, 1}, {0, 1}, {0, 0}, {1, 0}}
	m, err := NewModel(locs)
	require.NoError(t, err)
	deltas := m.Deltas([]float64{200, 50, 0, 100})
	assert.Equal(t, []int{0, 100, 50, 50}, deltas)
	for i, loc := range locs {
		assert.InDelta(t, []float64{200, 50, 0, 100}[i], m.Interpolate(deltas, loc), 1e-9)
	}
	assert.InDelta(t, 87.5, m.Interpolate(deltas, Location{0.5, 0.5}), 1e-9)
	_, err = NewModel([]Location{{1, 0}})
	assert.ErrorIs(t, err, ErrNoDefaultMaster)
}

func TestMultiAxisValue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	s := NewSpace([]Axis{wght, wdth})
	vr, set := valueRecord(t, "(wght=400:-40 wght=900:-20 wdth=50:-60 wght=900,wdth=50:0)")
	v, ok := s.Resolve(vr, set)
	require.True(t, ok, "diagnostics: %v", set.Items())
	corner := s.Locate(map[ot.Tag]float64{ot.T("wght"): 900, ot.T("wdth"): 50})
	assert.InDelta(t, 0.0, v.Evaluate(corner), 1e-9)
	assert.InDelta(t, -60.0, v.Evaluate(s.Locate(map[ot.Tag]float64{ot.T("wdth"): 50})), 1e-9)
	assert.InDelta(t, -20.0, v.Evaluate(at(s, 900)), 1e-9)
	assert.InDelta(t, -40.0, v.Evaluate(at(s, 400)), 1e-9)
}

func TestValueErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	s := NewSpace([]Axis{wght})
	for _, c := range []struct {
		value, msg, at string
	}{
		{"(wght=400:-50 opsz=12:3)", "Unknown axis 'opsz'.", "opsz"},
		{"(wght=400:-50 wght=1000:3)", "Coordinate 1000 outside axis range 100..900.", "1000"},
		{"(wght=400:-50 wght=400:3)", MsgDuplicateLocation, "wght=400:3"},
		{"(wght=400,wght=500:3)", "Duplicate axis 'wght' in location.", "wght"},
		{"(wght=400:2.5)", "Value must be an integer in the range -32768..32767.", "2.5"},
		{"(wght=100:-32768 wght=400:32767)", MsgDeltaOverflow, "(wght=100:-32768 wght=400:32767)"},
	} {
		vr, set := valueRecord(t, c.value)
		_, ok := s.Resolve(vr, set)
		assert.False(t, ok, c.value)
		if assert.Equal(t, 1, set.Len(), c.value) {
			d := set.Items()[0]
			assert.Equal(t, c.msg, d.Text, c.value)
			assert.Equal(t, c.at, set.Source()[d.Span.Start:d.Span.End], c.value)
		}
	}
	vr, set := valueRecord(t, "(wght=400:-50)")
	_, ok := NewSpace(nil).Resolve(vr, set)
	assert.False(t, ok)
	assert.Equal(t, MsgRequiresAxes, set.Items()[0].Text)
}

func TestStoreBuilder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "shaper.fea")
	defer teardown()
	//
	s := NewSpace([]Axis{wght})
	b := NewStoreBuilder(s.AxisCount())
	var values []Value
	var indexes []VarIdx
	for _, src := range []string{
		"(wght=400:-50 wght=900:0 wght=100:-100)",
		"(wght=400:-20 wght=900:10 wght=100:-30)",
		"(wght=400:-50 wght=900:0 wght=100:-100)",
		"(wght=400:0 wght=900:30)",
	} {
		vr, set := valueRecord(t, src)
		v, ok := s.Resolve(vr, set)
		require.True(t, ok)
		idx, err := b.Add(v.Supports, v.Deltas)
		require.NoError(t, err)
		values = append(values, v)
		indexes = append(indexes, idx)
	}
	assert.Equal(t, indexes[0], indexes[2], "identical rows are shared")
	assert.Equal(t, 3, b.Len())
	store := b.Store()
	assert.Len(t, store.Regions, 2, "regions are shared")
	assert.Len(t, store.Data, 2, "one subtable per region list")
	for i, v := range values {
		for _, w := range []float64{100, 250, 400, 650, 900} {
			loc := at(s, w)
			assert.InDelta(t, v.Evaluate(loc), float64(v.Default)+store.Evaluate(indexes[i], loc), 1e-9)
		}
	}
	assert.Equal(t, 0.0, store.Evaluate(VarIdx{Outer: 7}, at(s, 900)))
	_, err := b.Add([]Region{{{0, 1, 1}}}, []int{40000})
	assert.ErrorIs(t, err, ErrDeltaOverflow)
}
