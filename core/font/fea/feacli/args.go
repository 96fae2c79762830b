package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/shaperfont/core"
	"github.com/npillmayer/shaperfont/core/font/fea"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
)

// parseGlyphOrder splits a comma separated list of glyph names. An argument
// starting with '@' names a file with glyph names separated by white space.
func parseGlyphOrder(arg string) ([]string, error) {
	if strings.HasPrefix(arg, "@") {
		b, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, core.WrapError(err, core.EMISSING, "cannot read glyph order file %s", arg[1:])
		}
		return strings.Fields(string(b)), nil
	}
	var glyphs []string
	for _, g := range strings.Split(arg, ",") {
		if g = strings.TrimSpace(g); g != "" {
			glyphs = append(glyphs, g)
		}
	}
	return glyphs, nil
}

// parseAxes parses axis definitions of the form
//
//	wght=100:400:900,wdth=75:100:125
//
// giving minimum, default and maximum of each axis.
func parseAxes(arg string) ([]fea.Axis, error) {
	var axes []fea.Axis
	if strings.TrimSpace(arg) == "" {
		return axes, nil
	}
	for _, def := range strings.Split(arg, ",") {
		tag, rng, ok := strings.Cut(strings.TrimSpace(def), "=")
		values := strings.Split(rng, ":")
		if !ok || len(values) != 3 {
			return nil, core.Error(core.EINVALID, "axis definition '%s' is not of the form tag=min:default:max", def)
		}
		var v [3]float64
		for i, s := range values {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, core.WrapError(err, core.EINVALID, "axis '%s' has a non-numeric value '%s'", tag, s)
			}
			v[i] = f
		}
		axes = append(axes, fea.Axis{Tag: tag, Min: v[0], Default: v[1], Max: v[2]})
	}
	return axes, nil
}

// parseLocation parses user space coordinates like "wght=900".
func parseLocation(args []string) (map[ot.Tag]float64, error) {
	loc := make(map[ot.Tag]float64, len(args))
	for _, arg := range args {
		tag, value, ok := strings.Cut(arg, "=")
		if !ok || !ot.ValidTag(tag) {
			return nil, fmt.Errorf("'%s' is not a coordinate of the form axis=value", arg)
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("coordinate '%s' is not numeric", arg)
		}
		loc[ot.T(tag)] = f
	}
	return loc, nil
}
