package fea

import "github.com/npillmayer/shaperfont/core/font/fea/diag"

// Option configures a compilation.
type Option func(*config)

// config holds the configuration of a compilation.
type config struct {
	sourceName     string
	advance        int
	maxDiagnostics int
	familyName     string
}

// DefaultSourceName is the file label of formatted diagnostics.
const DefaultSourceName = "features.fea"

func defaultConfig() config {
	return config{
		sourceName:     DefaultSourceName,
		maxDiagnostics: diag.MaxDiagnostics,
	}
}

// WithSourceName sets the file label used in formatted diagnostics.
func WithSourceName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.sourceName = name
		}
	}
}

// WithAdvance sets the advance width shared by all glyphs, in design units.
// The default is half the units per em.
func WithAdvance(units int) Option {
	return func(c *config) {
		c.advance = units
	}
}

// WithMaxDiagnostics limits the number of diagnostics rendered into
// Result.Messages. Result.Diagnostics always holds all of them.
func WithMaxDiagnostics(n int) Option {
	return func(c *config) {
		c.maxDiagnostics = n
	}
}

// WithFamilyName sets the family name stored in the font's name table.
func WithFamilyName(name string) Option {
	return func(c *config) {
		c.familyName = name
	}
}
