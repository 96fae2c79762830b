package fea

import (
	"errors"
	"math"

	"github.com/npillmayer/shaperfont/core"
	"github.com/npillmayer/shaperfont/core/font/fea/ast"
	"github.com/npillmayer/shaperfont/core/font/fea/diag"
	"github.com/npillmayer/shaperfont/core/font/fea/parser"
	"github.com/npillmayer/shaperfont/core/font/fea/resolve"
	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"github.com/npillmayer/shaperfont/core/font/opentype/otbuild"
	"github.com/npillmayer/shaperfont/core/font/opentype/otfont"
	"golang.org/x/image/font/sfnt"
)

// InsertMarker is the position of an '# Automatic Code' comment: the tag of
// the enclosing feature and the number of lookups defined before it.
type InsertMarker struct {
	Tag      string
	LookupID int
}

// Message is a diagnostic together with its rendering for humans.
type Message struct {
	diag.Diagnostic
	Formatted string
}

// Result is the outcome of a compilation.
type Result struct {
	FontData      []byte         // nil if any error has been reported
	InsertMarkers []InsertMarker // never nil
	Diagnostics   []Message      // in report order
	Messages      string         // all formatted diagnostics, separated by newlines
}

// HasErrors is a predicate: has the compilation reported an error?
func (r *Result) HasErrors() bool {
	for _, m := range r.Diagnostics {
		if m.IsError() {
			return true
		}
	}
	return false
}

// Compile translates feature source into a font. The request is validated
// first; an invalid request is the only cause of an error return.
func Compile(req Request, opts ...Option) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.advance < 0 || cfg.advance > math.MaxUint16 {
		return nil, core.Error(core.EINVALID, "advance width must be in the range 0..65535, is %d", cfg.advance)
	}
	c := &compilation{
		req:   req,
		cfg:   cfg,
		diags: diag.NewSet(req.Source),
	}
	for s := stageParse; s != stageReturn; {
		tracer().Debugf("compilation stage %s", s)
		next := c.run(s)
		if c.diags.HasErrors() {
			tracer().Infof("compilation stopped after stage %s with errors", s)
			next = stageReturn
		}
		s = next
	}
	return c.result(), nil
}

// --- Stages ----------------------------------------------------------------

type stage int

const (
	stageParse stage = iota // lexing and parsing
	stageResolve
	stageVariation
	stageBuild
	stageAssemble
	stageReturn
)

func (s stage) String() string {
	switch s {
	case stageParse:
		return "parse"
	case stageResolve:
		return "resolve"
	case stageVariation:
		return "variation"
	case stageBuild:
		return "build"
	case stageAssemble:
		return "assemble"
	}
	return "return"
}

// compilation is the state of a single call to Compile.
type compilation struct {
	req     Request
	cfg     config
	diags   *diag.Set
	file    *ast.File
	prog    *resolve.Program
	space   *variation.Space
	values  map[*resolve.Pair]variation.Value
	tables  []otbuild.Table
	binary  []byte
	markers []InsertMarker
}

func (c *compilation) run(s stage) stage {
	switch s {
	case stageParse:
		c.file = parser.Parse(c.req.Source, c.diags)
		return stageResolve
	case stageResolve:
		c.prog = resolve.Resolve(c.file, c.req.GlyphOrder, c.diags)
		for _, m := range c.prog.Markers {
			c.markers = append(c.markers, InsertMarker{Tag: m.Tag, LookupID: m.LookupID})
		}
		if len(c.req.Axes) > 0 || c.prog.HasVariableValues() {
			return stageVariation
		}
		return stageBuild
	case stageVariation:
		c.resolveVariableValues()
		return stageBuild
	case stageBuild:
		c.build()
		return stageAssemble
	case stageAssemble:
		b, err := otfont.Assemble(c.tables)
		if err != nil {
			c.internalError(err)
			return stageReturn
		}
		c.binary = b
	}
	return stageReturn
}

// resolveVariableValues computes the deltas of all variable values.
// Without axes, every variable value is reported as an error.
func (c *compilation) resolveVariableValues() {
	c.space = variation.NewSpace(c.req.variationAxes())
	c.values = make(map[*resolve.Pair]variation.Value)
	for _, l := range c.prog.Lookups {
		for i := range l.Pairs {
			p := &l.Pairs[i]
			if !p.Value.IsVariable() {
				continue
			}
			if v, ok := c.space.Resolve(p.Value, c.diags); ok {
				c.values[p] = v
			}
		}
	}
	tracer().Debugf("resolved %d variable values", len(c.values))
}

func (c *compilation) build() {
	var store *variation.StoreBuilder
	if len(c.req.Axes) > 0 {
		store = variation.NewStoreBuilder(len(c.req.Axes))
	}
	layout := &otbuild.Layout{}
	for _, ls := range c.prog.LanguageSystems {
		layout.LanguageSystems = append(layout.LanguageSystems,
			otbuild.LanguageSystem{Script: ls.Script, Language: ls.Language})
	}
	for _, f := range c.prog.Features {
		feature := otbuild.Feature{Tag: f.Tag}
		for _, id := range f.Lookups {
			feature.Lookups = append(feature.Lookups, uint16(id-1))
		}
		layout.Features = append(layout.Features, feature)
	}
	for _, l := range c.prog.Lookups {
		lookup := otbuild.PairLookup{}
		for i := range l.Pairs {
			p := &l.Pairs[i]
			adj := otbuild.PairAdjustment{First: p.First, Second: p.Second, XAdvance: p.Scalar}
			if v, ok := c.values[p]; ok {
				adj.XAdvance = v.Default
				if !v.IsConstant() && store != nil {
					idx, err := store.Add(v.Supports, v.Deltas)
					if err != nil {
						c.internalError(err)
						return
					}
					adj.Device = &idx
				}
			}
			lookup.Pairs = append(lookup.Pairs, adj)
		}
		layout.Lookups = append(layout.Lookups, lookup)
	}
	font := &otbuild.Font{
		UnitsPerEm: uint16(c.req.UnitsPerEm),
		Advance:    sfnt.Units(c.cfg.advance),
		GlyphNames: c.req.GlyphOrder,
		FamilyName: c.cfg.familyName,
		Layout:     layout,
	}
	if store != nil {
		font.Axes = c.space.Axes
		font.Store = store.Store()
	}
	tables, err := otbuild.Tables(font)
	if err != nil {
		c.internalError(err)
		return
	}
	c.tables = tables
}

// formatLimits are builder errors caused by exceeding a binary format limit.
var formatLimits = []error{
	ot.ErrOffsetOverflow,
	ot.ErrFixedRange,
	otbuild.ErrTooManyGlyphNames,
	variation.ErrDeltaOverflow,
	variation.ErrTooManyRegions,
	variation.ErrTooManyVarDatas,
}

// internalError reports a failure of the table builder, e.g. an overflow
// of a binary format limit, as an error at the start of the source.
func (c *compilation) internalError(err error) {
	code := core.EINTERNAL
	for _, limit := range formatLimits {
		if errors.Is(err, limit) {
			code = core.ELIMIT
			break
		}
	}
	err = core.WrapError(err, code, "cannot build font")
	tracer().Errorf("%v", err)
	c.diags.Error(diag.Span{}, err.Error())
}

func (c *compilation) result() *Result {
	r := &Result{
		FontData:      c.binary,
		InsertMarkers: c.markers,
		Diagnostics:   make([]Message, 0, c.diags.Len()),
		Messages:      c.diags.Display(c.cfg.sourceName, c.cfg.maxDiagnostics),
	}
	if r.InsertMarkers == nil {
		r.InsertMarkers = []InsertMarker{}
	}
	for _, d := range c.diags.Items() {
		r.Diagnostics = append(r.Diagnostics, Message{
			Diagnostic: d,
			Formatted:  diag.Format(d, c.req.Source, c.cfg.sourceName),
		})
	}
	if c.diags.HasErrors() {
		r.FontData = nil
	}
	return r
}
