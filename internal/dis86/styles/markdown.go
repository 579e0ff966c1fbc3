// Package styles holds the terminal styling shared by dis86 reports and the
// viewer.
package styles

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/x/exp/charmtone"
)

// Helper functions for style pointers
func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// Palette is the handful of colours a report uses.
type Palette struct {
	Text    string
	Heading string
	Title   string
	TitleBg string
	Code    string
	Muted   string
	Accent  string
}

// Charm is the default palette.
var Charm = Palette{
	Text:    charmtone.Smoke.Hex(),
	Heading: charmtone.Malibu.Hex(),
	Title:   charmtone.Zest.Hex(),
	TitleBg: charmtone.Charple.Hex(),
	Code:    charmtone.Guac.Hex(),
	Muted:   charmtone.Charcoal.Hex(),
	Accent:  charmtone.Cheeky.Hex(),
}

// Editor mirrors a dark code editor theme.
var Editor = Palette{
	Text:    "#D4D4D4",
	Heading: "#569CD6",
	Title:   "#DCDCAA",
	TitleBg: "#1E1E1E",
	Code:    "#EACD53",
	Muted:   "#858585",
	Accent:  "#CE9178",
}

// Current picks the palette named by DIS86_THEME ("editor" or the default).
func Current() Palette {
	if strings.EqualFold(os.Getenv("DIS86_THEME"), "editor") {
		return Editor
	}
	return Charm
}

// StyleConfig builds a glamour style from the palette. Reports are mostly
// tables of counts and short finding lists, so only those elements get
// more than the document colour.
func (p Palette) StyleConfig() ansi.StyleConfig {
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(p.Text)},
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(p.Heading),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr(p.Title),
				BackgroundColor: stringPtr(p.TitleBg),
				Bold:            boolPtr(true),
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "## "},
		},
		H3: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "### "},
		},
		List: ansi.StyleList{LevelIndent: 2},
		Item: ansi.StylePrimitive{BlockPrefix: "• "},
		Strong: ansi.StylePrimitive{
			Bold:  boolPtr(true),
			Color: stringPtr(p.Accent),
		},
		Emph: ansi.StylePrimitive{Italic: boolPtr(true)},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(p.Code)},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: stringPtr(p.Muted)},
				Margin:         uintPtr(2),
			},
		},
		HorizontalRule: ansi.StylePrimitive{
			Color:  stringPtr(p.Muted),
			Format: "\n--------\n",
		},
		Table: ansi.StyleTable{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{},
			},
		},
	}
}

// GetMarkdownRenderer returns a glamour TermRenderer for dis86 reports
func GetMarkdownRenderer(width int) *glamour.TermRenderer {
	r, _ := glamour.NewTermRenderer(
		glamour.WithStyles(Current().StyleConfig()),
		glamour.WithWordWrap(width),
	)
	return r
}

// RenderMarkdown renders md at the given width. Plain markdown is returned
// if the renderer cannot be built.
func RenderMarkdown(md string, width int) (string, error) {
	r := GetMarkdownRenderer(width)
	if r == nil {
		return md, nil
	}
	return r.Render(md)
}
