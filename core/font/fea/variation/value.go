package variation

import (
	"fmt"
	"strconv"

	"github.com/npillmayer/shaperfont/core/font/fea/ast"
	"github.com/npillmayer/shaperfont/core/font/fea/diag"
	"github.com/npillmayer/shaperfont/core/font/fea/resolve"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// Messages for variable values.
const (
	MsgRequiresAxes      = "Variable value requires font axes."
	MsgUnknownAxis       = "Unknown axis '%s'."
	MsgDuplicateAxis     = "Duplicate axis '%s' in location."
	MsgCoordOutOfRange   = "Coordinate %s outside axis range %s..%s."
	MsgDuplicateLocation = "Duplicate location in variable value."
	MsgDeltaOverflow     = "Variation deltas exceed the range -32768..32767."
)

// Value is a variable value resolved against a design space: the value at
// the default location plus deltas, one per support region.
type Value struct {
	Default  int16
	Supports []Region
	Deltas   []int
}

// IsConstant is a predicate: does v have no deltas?
func (v Value) IsConstant() bool {
	return len(v.Deltas) == 0
}

// Evaluate interpolates v at location loc.
func (v Value) Evaluate(loc Location) float64 {
	x := float64(v.Default)
	for i, s := range v.Supports {
		x += float64(v.Deltas[i]) * s.Scalar(loc)
	}
	return x
}

// Resolve checks a variable value record against s and computes its
// deltas. Problems are reported to diags; in that case false is returned.
// A value record without an entry at the default location has the value 0
// there.
func (s *Space) Resolve(vr ast.ValueRecord, diags *diag.Set) (Value, bool) {
	if s.AxisCount() == 0 {
		diags.Error(vr.Span(), MsgRequiresAxes)
		return Value{}, false
	}
	var locs []Location
	var values []float64
	hasDefault, ok := false, true
	for _, entry := range vr.Entries {
		loc, locOK := s.location(entry, diags)
		v, valueOK := resolve.ScalarValue(entry.Value)
		if !valueOK {
			diags.Error(entry.Value.Span(), resolve.MsgValueOutOfRange)
		}
		if !locOK || !valueOK {
			ok = false
			continue
		}
		duplicate := false
		for _, l := range locs {
			if l.Equal(loc) {
				duplicate = true
				break
			}
		}
		if duplicate {
			diags.Error(entry.Span(), MsgDuplicateLocation)
			ok = false
			continue
		}
		hasDefault = hasDefault || loc.IsDefault()
		locs = append(locs, loc)
		values = append(values, float64(v))
	}
	if !ok {
		return Value{}, false
	}
	if !hasDefault {
		locs = append(locs, make(Location, s.AxisCount()))
		values = append(values, 0)
	}
	model, err := NewModel(locs)
	if err != nil { // cannot happen, the default location is present
		tracer().Errorf("variation model: %v", err)
		diags.Error(vr.Span(), err.Error())
		return Value{}, false
	}
	deltas := model.Deltas(values)
	for _, d := range deltas {
		if d < -32768 || d > 32767 {
			diags.Error(vr.Span(), MsgDeltaOverflow)
			return Value{}, false
		}
	}
	value := Value{Default: int16(deltas[0])}
	for k, r := range model.Supports()[1:] {
		value.Supports = append(value.Supports, r)
		value.Deltas = append(value.Deltas, deltas[k+1])
	}
	return value, true
}

func (s *Space) location(entry ast.VariableEntry, diags *diag.Set) (Location, bool) {
	loc := make(Location, s.AxisCount())
	seen := make(map[int]bool, len(entry.Location))
	ok := true
	for _, c := range entry.Location {
		i, found := s.AxisIndex(ot.T(c.Axis.Text))
		if !found || !ot.ValidTag(c.Axis.Text) {
			diags.Error(c.Axis.Span(), fmt.Sprintf(MsgUnknownAxis, c.Axis.Text))
			ok = false
			continue
		}
		if seen[i] {
			diags.Error(c.Axis.Span(), fmt.Sprintf(MsgDuplicateAxis, c.Axis.Text))
			ok = false
			continue
		}
		seen[i] = true
		if !s.InRange(i, c.Coord.Value) {
			a := s.Axes[i]
			diags.Error(c.Coord.Span(), fmt.Sprintf(MsgCoordOutOfRange,
				formatNumber(c.Coord.Value), formatNumber(a.Min), formatNumber(a.Max)))
			ok = false
			continue
		}
		loc[i] = s.Normalize(i, c.Coord.Value)
	}
	return loc, ok
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
