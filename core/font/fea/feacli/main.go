/*
Command feacli compiles a feature file into a minimal shaping font.

	feacli -glyphs .notdef,A,V -axes wght=100:400:900 -o kern.otf features.fea

Glyph names may be read from a file with '-glyphs @glyphs.txt'. With flag
'-i' the compiled font may be inspected interactively.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/shaperfont/core"
	"github.com/npillmayer/shaperfont/core/font/fea"
	"github.com/npillmayer/shaperfont/core/font/opentype/otquery"
	"github.com/pterm/pterm"
)

// tracer traces with key 'shaper.fea'
func tracer() tracing.Trace {
	return tracing.Select("shaper.fea")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	upem := flag.Int("upem", 1000, "Units per em")
	glyphs := flag.String("glyphs", "", "Glyph order, comma separated or @file")
	axes := flag.String("axes", "", "Design axes, e.g. wght=100:400:900")
	family := flag.String("family", "", "Family name of the font (default \"Shaper Font\")")
	advance := flag.Int("advance", 0, "Advance width of every glyph (default half the units per em)")
	output := flag.String("o", "", "Output file for the font")
	interactive := flag.Bool("i", false, "Inspect the compiled font interactively")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.shaper.fea":   *tlevel,
		"trace.shaper.fonts": *tlevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().Infof("Trace level is %s", *tlevel)
	if flag.NArg() != 1 {
		pterm.Error.Println("usage: feacli [flags] <feature file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	//
	// build the request
	req, err := makeRequest(flag.Arg(0), *upem, *glyphs, *axes)
	if err != nil {
		core.UserError(err)
		os.Exit(3)
	}
	result, err := fea.Compile(req,
		fea.WithSourceName(flag.Arg(0)),
		fea.WithFamilyName(*family),
		fea.WithAdvance(*advance),
	)
	if err != nil {
		core.UserError(err)
		os.Exit(3)
	}
	report(result)
	if result.HasErrors() {
		os.Exit(4)
	}
	if *output != "" {
		if err := os.WriteFile(*output, result.FontData, 0o644); err != nil {
			core.UserError(core.WrapError(err, core.EINVALID, "cannot write font to %s", *output))
			os.Exit(5)
		}
		pterm.Info.Printfln("wrote %d bytes to %s", len(result.FontData), *output)
	}
	if !*interactive {
		return
	}
	//
	// inspect the compiled font
	otf, err := otquery.Parse(result.FontData)
	if err != nil {
		core.UserError(err)
		os.Exit(5)
	}
	intp, err := NewIntp(otf, result.InsertMarkers)
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(6)
	}
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func makeRequest(path string, upem int, glyphs, axes string) (fea.Request, error) {
	req := fea.Request{UnitsPerEm: upem}
	src, err := os.ReadFile(path)
	if err != nil {
		return req, core.WrapError(err, core.EMISSING, "cannot read feature file %s", path)
	}
	req.Source = string(src)
	if req.GlyphOrder, err = parseGlyphOrder(glyphs); err != nil {
		return req, err
	}
	if req.Axes, err = parseAxes(axes); err != nil {
		return req, err
	}
	return req, nil
}

// report prints diagnostics and insert markers of a compilation.
func report(result *fea.Result) {
	for _, m := range result.Diagnostics {
		if m.IsError() {
			pterm.Error.Println(m.Formatted)
		} else {
			pterm.Warning.Println(m.Formatted)
		}
	}
	if result.HasErrors() {
		return
	}
	printMarkers(result.InsertMarkers)
}

func printMarkers(markers []fea.InsertMarker) {
	if len(markers) == 0 {
		return
	}
	data := pterm.TableData{{"Feature", "Lookup ID"}}
	for _, m := range markers {
		data = append(data, []string{m.Tag, fmt.Sprintf("%d", m.LookupID)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
