package variation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// VarIdx addresses a row of deltas in an item variation store.
type VarIdx struct {
	Outer uint16 // index of the VarData subtable
	Inner uint16 // index of the row within the VarData subtable
}

// VarData is a table of delta rows sharing one list of regions.
type VarData struct {
	RegionIndexes []uint16
	Rows          [][]int16
}

// Store is an item variation store.
type Store struct {
	AxisCount int
	Regions   []Region
	Data      []VarData
}

// Evaluate computes the interpolated delta sum of row idx at location loc.
// Invalid indices evaluate to 0.
func (s *Store) Evaluate(idx VarIdx, loc Location) float64 {
	if int(idx.Outer) >= len(s.Data) {
		return 0
	}
	data := s.Data[idx.Outer]
	if int(idx.Inner) >= len(data.Rows) {
		return 0
	}
	v := 0.0
	for j, delta := range data.Rows[idx.Inner] {
		if j >= len(data.RegionIndexes) || int(data.RegionIndexes[j]) >= len(s.Regions) {
			break
		}
		v += float64(delta) * s.Regions[data.RegionIndexes[j]].Scalar(loc)
	}
	return v
}

// Errors of the store builder.
var (
	ErrDeltaOverflow   = errors.New("variation delta exceeds the int16 range")
	ErrTooManyRegions  = errors.New("item variation store exceeds 65535 regions")
	ErrTooManyVarDatas = errors.New("item variation store exceeds 65535 subtables")
)

// maxRows is the number of rows a VarData subtable can address.
const maxRows = math.MaxUint16 + 1

// StoreBuilder collects delta rows into an item variation store.
// Regions are shared between rows, and identical rows are stored once.
type StoreBuilder struct {
	store   Store
	regions map[string]uint16
	open    map[string]int      // region list key → VarData accepting rows
	rows    []map[string]uint16 // per VarData: row key → inner index
}

// NewStoreBuilder creates a builder for a design space with axisCount axes.
func NewStoreBuilder(axisCount int) *StoreBuilder {
	return &StoreBuilder{
		store:   Store{AxisCount: axisCount},
		regions: make(map[string]uint16),
		open:    make(map[string]int),
	}
}

// Add stores a row of deltas for a list of regions and returns its index.
func (b *StoreBuilder) Add(supports []Region, deltas []int) (VarIdx, error) {
	indexes := make([]uint16, len(supports))
	for i, r := range supports {
		ri, err := b.region(r)
		if err != nil {
			return VarIdx{}, err
		}
		indexes[i] = ri
	}
	row := make([]int16, len(deltas))
	for i, d := range deltas {
		if d < math.MinInt16 || d > math.MaxInt16 {
			return VarIdx{}, ErrDeltaOverflow
		}
		row[i] = int16(d)
	}
	key := keyOf(indexes)
	outer, ok := b.open[key]
	if ok {
		if inner, found := b.rows[outer][keyOf(row)]; found {
			return VarIdx{Outer: uint16(outer), Inner: inner}, nil
		}
		if len(b.store.Data[outer].Rows) == maxRows {
			ok = false
		}
	}
	if !ok {
		if len(b.store.Data) > math.MaxUint16 {
			return VarIdx{}, ErrTooManyVarDatas
		}
		outer = len(b.store.Data)
		b.store.Data = append(b.store.Data, VarData{RegionIndexes: indexes})
		b.rows = append(b.rows, make(map[string]uint16))
		b.open[key] = outer
	}
	data := &b.store.Data[outer]
	inner := uint16(len(data.Rows))
	data.Rows = append(data.Rows, row)
	b.rows[outer][keyOf(row)] = inner
	return VarIdx{Outer: uint16(outer), Inner: inner}, nil
}

func (b *StoreBuilder) region(r Region) (uint16, error) {
	q := make(Region, b.store.AxisCount)
	for i := range q {
		if i < len(r) {
			q[i] = Tent{
				Start: ot.ToF2Dot14(r[i].Start).Float(),
				Peak:  ot.ToF2Dot14(r[i].Peak).Float(),
				End:   ot.ToF2Dot14(r[i].End).Float(),
			}
		}
	}
	key := fmt.Sprint(q)
	if ri, ok := b.regions[key]; ok {
		return ri, nil
	}
	if len(b.store.Regions) > math.MaxUint16 {
		return 0, ErrTooManyRegions
	}
	ri := uint16(len(b.store.Regions))
	b.store.Regions = append(b.store.Regions, q)
	b.regions[key] = ri
	return ri, nil
}

// Len returns the number of rows stored so far.
func (b *StoreBuilder) Len() int {
	n := 0
	for _, d := range b.store.Data {
		n += len(d.Rows)
	}
	return n
}

// Store returns the item variation store built so far.
func (b *StoreBuilder) Store() *Store {
	tracer().Debugf("item variation store with %d regions, %d subtables",
		len(b.store.Regions), len(b.store.Data))
	return &b.store
}

func keyOf[T uint16 | int16](values []T) string {
	var sb strings.Builder
	for _, v := range values {
		fmt.Fprintf(&sb, "%d,", v)
	}
	return sb.String()
}
