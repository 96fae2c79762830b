package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/shaperfont/core/font/fea"
	"github.com/npillmayer/shaperfont/core/font/fea/variation"
	"github.com/npillmayer/shaperfont/core/font/opentype/ot"
	"github.com/npillmayer/shaperfont/core/font/opentype/otquery"
	"github.com/pterm/pterm"
	"golang.org/x/text/language"
)

// Intp is our interpreter object
type Intp struct {
	font    *otquery.Font
	space   *variation.Space
	markers []fea.InsertMarker
	repl    *readline.Instance
}

// NewIntp creates an interpreter for a compiled font.
func NewIntp(otf *otquery.Font, markers []fea.InsertMarker) (*Intp, error) {
	repl, err := readline.New("fea > ")
	if err != nil {
		return nil, err
	}
	return &Intp{
		font:    otf,
		space:   otquery.Space(otf),
		markers: markers,
		repl:    repl,
	}, nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	defer intp.repl.Close()
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Command is a parsed input line.
type Command struct {
	op   int
	args []string
}

const (
	QUIT int = iota
	HELP
	INFO
	TABLES
	FEATURES
	AXES
	MARKERS
	KERN
)

var commands = map[string]int{
	"quit":     QUIT,
	"help":     HELP,
	"info":     INFO,
	"tables":   TABLES,
	"features": FEATURES,
	"axes":     AXES,
	"markers":  MARKERS,
	"kern":     KERN,
}

var errUnknownCommand = errors.New("unknown command")

func parseCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	op, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return nil, fmt.Errorf("%w '%s', try 'help'", errUnknownCommand, fields[0])
	}
	cmd := &Command{op: op, args: fields[1:]}
	if op == KERN && len(cmd.args) < 2 {
		return nil, errors.New("usage: kern <first> <second> [feature] [axis=value ...]")
	}
	return cmd, nil
}

func (intp *Intp) execute(cmd *Command) (bool, error) {
	switch cmd.op {
	case QUIT:
		return true, nil
	case HELP:
		help()
	case INFO:
		intp.info()
	case TABLES:
		tags := intp.font.TableTags()
		names := make([]string, len(tags))
		for i, t := range tags {
			names[i] = t.String()
		}
		pterm.Info.Println(strings.Join(names, " "))
	case FEATURES:
		intp.features()
	case AXES:
		intp.axes()
	case MARKERS:
		printMarkers(intp.markers)
	case KERN:
		return false, intp.kern(cmd.args)
	}
	return false, nil
}

func help() {
	pterm.Println(`Commands:
  info                               general font information
  tables                             list the tables of the font
  features                           list language systems and features
  axes                               list the design axes
  markers                            list automatic code insert markers
  kern <a> <b> [feat] [axis=v ...]   pair adjustment (feature defaults to kern)
  quit                               leave the CLI`)
}

func (intp *Intp) info() {
	names := otquery.NameInfo(intp.font, language.AmericanEnglish)
	metrics := otquery.FontMetrics(intp.font)
	data := pterm.TableData{
		{"Family", names["family"]},
		{"PostScript name", names["postscript"]},
		{"Units per em", fmt.Sprintf("%d", metrics.UnitsPerEm)},
		{"Glyphs", fmt.Sprintf("%d", otquery.NumGlyphs(intp.font))},
		{"Advance", fmt.Sprintf("%d", otquery.GlyphAdvance(intp.font, 0))},
	}
	pterm.DefaultTable.WithData(data).Render()
}

func (intp *Intp) features() {
	for _, ls := range otquery.LanguageSystems(intp.font) {
		pterm.Info.Printfln("languagesystem %s %s", ls.Script, ls.Language)
	}
	data := pterm.TableData{{"Feature", "Lookups"}}
	for _, f := range otquery.FeatureTags(intp.font) {
		data = append(data, []string{f, fmt.Sprint(otquery.FeatureLookups(intp.font, ot.T(f)))})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) axes() {
	if intp.space == nil {
		pterm.Info.Println("font has no design axes")
		return
	}
	data := pterm.TableData{{"Axis", "Min", "Default", "Max"}}
	for _, a := range intp.space.Axes {
		data = append(data, []string{a.Tag.String(),
			fmt.Sprint(a.Min), fmt.Sprint(a.Default), fmt.Sprint(a.Max)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// kern prints the adjustment of a glyph pair, e.g. for 'kern A V wght=900'.
func (intp *Intp) kern(args []string) error {
	first, ok := otquery.GlyphIndex(intp.font, args[0])
	if !ok {
		return fmt.Errorf("glyph '%s' not in font", args[0])
	}
	second, ok := otquery.GlyphIndex(intp.font, args[1])
	if !ok {
		return fmt.Errorf("glyph '%s' not in font", args[1])
	}
	args = args[2:]
	feature := ot.T("kern")
	if len(args) > 0 && !strings.Contains(args[0], "=") {
		feature = ot.T(args[0])
		args = args[1:]
	}
	user, err := parseLocation(args)
	if err != nil {
		return err
	}
	var loc variation.Location
	if len(user) > 0 {
		if intp.space == nil {
			return errors.New("font has no design axes")
		}
		for tag := range user {
			if _, ok := intp.space.AxisIndex(tag); !ok {
				return fmt.Errorf("font has no axis '%s'", tag)
			}
		}
		loc = intp.space.Locate(user)
	}
	adjust, found := otquery.PairAdjustment(intp.font, feature, first, second, loc)
	if !found {
		pterm.Info.Printfln("feature '%s' does not adjust %s %s", feature, intp.glyphName(first), intp.glyphName(second))
		return nil
	}
	pterm.Info.Printfln("%s %s: %g", intp.glyphName(first), intp.glyphName(second), adjust)
	return nil
}

func (intp *Intp) glyphName(gid ot.GlyphIndex) string {
	if names := otquery.GlyphNames(intp.font); int(gid) < len(names) {
		return names[gid]
	}
	return fmt.Sprintf("gid%d", gid)
}
