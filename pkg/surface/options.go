package surface

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Options control how a drawing is fitted and painted
type Options struct {
	Width       int     // image width in pixels
	Height      int     // image height in pixels
	Margin      float64 // blank border in pixels
	StrokeWidth float64 // line width in pixels
	Stroke      string  // line color, "#rrggbb"
	Background  string  // background color, "#rrggbb" or "none"
}

// DefaultOptions returns an 800x800 black on white drawing
func DefaultOptions() Options {
	return Options{
		Width:       800,
		Height:      800,
		Margin:      10,
		StrokeWidth: 1,
		Stroke:      "#000000",
		Background:  "#ffffff",
	}
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", o.Width, o.Height)
	}
	if 2*o.Margin >= float64(o.Width) || 2*o.Margin >= float64(o.Height) {
		return fmt.Errorf("margin %g leaves no room in %dx%d", o.Margin, o.Width, o.Height)
	}
	return nil
}

// Paint is a parsed color. None paints nothing.
type Paint struct {
	colorful.Color
	None bool
}

// ParsePaint reads "#rgb", "#rrggbb", or "none". The empty string is none.
func ParsePaint(s string) (Paint, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return Paint{None: true}, nil
	}
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Paint{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Paint{Color: c}, nil
}

// SVG returns the value of an SVG fill or stroke attribute
func (p Paint) SVG() string {
	if p.None {
		return "none"
	}
	return p.Hex()
}

// Value converts to an image color
func (p Paint) Value() color.Color {
	if p.None {
		return color.Transparent
	}
	r, g, b := p.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func parsePaints(o Options) (stroke, background Paint, err error) {
	if stroke, err = ParsePaint(o.Stroke); err != nil {
		return Paint{}, Paint{}, fmt.Errorf("stroke: %w", err)
	}
	if background, err = ParsePaint(o.Background); err != nil {
		return Paint{}, Paint{}, fmt.Errorf("background: %w", err)
	}
	return stroke, background, nil
}
