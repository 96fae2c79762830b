package variation

import (
	"errors"
	"math"
	"sort"
)

// Tent is the support of a region on one axis: its influence rises from
// Start to 1 at Peak and falls to 0 at End. A zero tent does not restrict
// the region on its axis.
type Tent struct {
	Start, Peak, End float64
}

// Region is the support of a delta in design space, one tent per axis.
type Region []Tent

// Scalar computes the influence of region r at location loc, following the
// rules of the OpenType item variation store.
func (r Region) Scalar(loc Location) float64 {
	scalar := 1.0
	for i, t := range r {
		if t.Peak == 0 || t.Start > t.Peak || t.Peak > t.End {
			continue
		}
		if t.Start < 0 && t.End > 0 {
			continue
		}
		v := 0.0
		if i < len(loc) {
			v = loc[i]
		}
		if v == t.Peak {
			continue
		}
		if v <= t.Start || t.End <= v {
			return 0
		}
		if v < t.Peak {
			scalar *= (v - t.Start) / (t.Peak - t.Start)
		} else {
			scalar *= (v - t.End) / (t.Peak - t.End)
		}
	}
	return scalar
}

func (r Region) sameAxes(other Region) bool {
	for i, t := range r {
		if (t.Peak != 0) != (other[i].Peak != 0) {
			return false
		}
	}
	return true
}

// Model is the interpolation model of a set of master locations.
type Model struct {
	order     []int      // order[k] is the index of the k-th sorted master
	locations []Location // sorted; locations[0] is the default location
	supports  []Region   // parallel to locations
	weights   [][]weight // weights[k] lists the influence of earlier supports on master k
}

type weight struct {
	support int
	scalar  float64
}

// ErrNoDefaultMaster is returned if the masters of a model do not include the
// default location.
var ErrNoDefaultMaster = errors.New("masters do not include the default location")

// NewModel creates an interpolation model for masters at locs. All
// locations must have the same dimension, be distinct and include the
// default location.
func NewModel(locs []Location) (*Model, error) {
	m := &Model{}
	m.order = sortMasters(locs)
	m.locations = make([]Location, len(locs))
	for k, i := range m.order {
		m.locations[k] = locs[i]
	}
	if len(m.locations) == 0 || !m.locations[0].IsDefault() {
		return nil, ErrNoDefaultMaster
	}
	m.computeSupports()
	m.computeWeights()
	tracer().Debugf("variation model with %d masters", len(locs))
	return m, nil
}

// Supports returns the regions of the deltas, in sorted master order. The
// first support belongs to the default master and does not restrict any
// axis.
func (m *Model) Supports() []Region {
	return m.supports
}

// Deltas computes the deltas of master values, given in the order of the
// locations the model was created from. Deltas are returned in sorted
// master order; the first one is the value at the default location.
func (m *Model) Deltas(values []float64) []int {
	out := make([]int, len(m.locations))
	for k, weights := range m.weights {
		delta := values[m.order[k]]
		for _, w := range weights {
			delta -= float64(out[w.support]) * w.scalar
		}
		out[k] = Round(delta)
	}
	return out
}

// Interpolate evaluates the model for integer deltas at location loc.
func (m *Model) Interpolate(deltas []int, loc Location) float64 {
	v := 0.0
	for k, s := range m.supports {
		v += float64(deltas[k]) * s.Scalar(loc)
	}
	return v
}

// Round rounds half-way values towards positive infinity, as font tools
// conventionally do.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// --- Master order ----------------------------------------------------------

// sortMasters returns master indices ordered by the number of axes they
// sit on, preferring masters on points which single-axis masters occupy,
// then by axis order, direction and distance from the default.
func sortMasters(locs []Location) []int {
	onAxis := make(map[int]map[float64]bool)
	for _, loc := range locs {
		if axis, v, ok := singleAxis(loc); ok {
			if onAxis[axis] == nil {
				onAxis[axis] = map[float64]bool{0: true}
			}
			onAxis[axis][v] = true
		}
	}
	type sortKey struct {
		rank, onPoint int
		axes          []int
		signs, abs    []float64
	}
	keys := make([]sortKey, len(locs))
	for i, loc := range locs {
		k := &keys[i]
		for axis, v := range loc {
			if v == 0 {
				continue
			}
			k.rank++
			if onAxis[axis][v] {
				k.onPoint++
			}
			k.axes = append(k.axes, axis)
			k.signs = append(k.signs, math.Copysign(1, v))
			k.abs = append(k.abs, math.Abs(v))
		}
	}
	order := make([]int, len(locs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := keys[order[a]], keys[order[b]]
		if ka.rank != kb.rank {
			return ka.rank < kb.rank
		}
		if ka.onPoint != kb.onPoint {
			return ka.onPoint > kb.onPoint
		}
		if c := compareInts(ka.axes, kb.axes); c != 0 {
			return c < 0
		}
		if c := compareFloats(ka.signs, kb.signs); c != 0 {
			return c < 0
		}
		return compareFloats(ka.abs, kb.abs) < 0
	})
	return order
}

func singleAxis(loc Location) (int, float64, bool) {
	axis, n := -1, 0
	for i, v := range loc {
		if v != 0 {
			axis = i
			n++
		}
	}
	if n != 1 {
		return 0, 0, false
	}
	return axis, loc[axis], true
}

func compareInts(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func compareFloats(a, b []float64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

// --- Supports --------------------------------------------------------------

// locationRegions creates the initial region of every master: a tent from
// the extreme master coordinate on the same side of the default to the
// master's own coordinate.
func (m *Model) locationRegions() []Region {
	dim := len(m.locations[0])
	minV := make([]float64, dim)
	maxV := make([]float64, dim)
	for _, loc := range m.locations {
		for i, v := range loc {
			minV[i] = math.Min(minV[i], v)
			maxV[i] = math.Max(maxV[i], v)
		}
	}
	regions := make([]Region, len(m.locations))
	for k, loc := range m.locations {
		r := make(Region, dim)
		for i, v := range loc {
			if v > 0 {
				r[i] = Tent{0, v, maxV[i]}
			} else if v < 0 {
				r[i] = Tent{minV[i], v, 0}
			}
		}
		regions[k] = r
	}
	return regions
}

// computeSupports shrinks the box of every master so that it does not
// overlap the peaks of earlier masters on the same axes. Boxes are split in
// the direction with the largest ratio of remaining range.
func (m *Model) computeSupports() {
	regions := m.locationRegions()
	for k, region := range regions {
		for _, prev := range regions[:k] {
			if !region.sameAxes(prev) {
				continue
			}
			relevant := true
			for i, t := range region {
				if t.Peak == 0 {
					continue
				}
				p := prev[i].Peak
				if !(p == t.Peak || (t.Start < p && p < t.End)) {
					relevant = false
					break
				}
			}
			if !relevant {
				continue
			}
			best := map[int]Tent{}
			bestRatio := -1.0
			for i, pt := range prev {
				if pt.Peak == 0 {
					continue
				}
				val := pt.Peak
				t := region[i]
				nt := t
				var ratio float64
				switch {
				case val < t.Peak:
					nt.Start = val
					ratio = (val - t.Peak) / (t.Start - t.Peak)
				case t.Peak < val:
					nt.End = val
					ratio = (val - t.Peak) / (t.End - t.Peak)
				default:
					continue
				}
				if ratio > bestRatio {
					best = map[int]Tent{}
					bestRatio = ratio
				}
				if ratio == bestRatio {
					best[i] = nt
				}
			}
			for i, t := range best {
				region[i] = t
			}
		}
	}
	m.supports = regions
}

func (m *Model) computeWeights() {
	m.weights = make([][]weight, len(m.locations))
	for k, loc := range m.locations {
		for j, support := range m.supports[:k] {
			if s := support.Scalar(loc); s != 0 {
				m.weights[k] = append(m.weights[k], weight{support: j, scalar: s})
			}
		}
	}
}
