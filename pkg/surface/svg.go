package surface

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SVG writes the drawing as an SVG document when the rendering is
// finalized. The drawing is scaled to fit the configured size.
type SVG struct {
	w          io.Writer
	opts       Options
	stroke     Paint
	background Paint
	tracer
}

// NewSVG creates a surface writing to w
func NewSVG(w io.Writer, opts Options) (*SVG, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	stroke, background, err := parsePaints(opts)
	if err != nil {
		return nil, err
	}
	return &SVG{w: w, opts: opts, stroke: stroke, background: background}, nil
}

func (s *SVG) Initialize(x, y float64) error {
	s.tracer.initialize(x, y)
	return nil
}

func (s *SVG) Enter(x, y float64) error {
	s.tracer.enter(x, y)
	return nil
}

func (s *SVG) Exit() error {
	return s.tracer.exit()
}

func (s *SVG) MoveTo(x, y float64) error {
	s.tracer.moveTo(x, y)
	return nil
}

func (s *SVG) LineTo(x, y float64) error {
	s.tracer.lineTo(x, y)
	return nil
}

// Finalize writes the document
func (s *SVG) Finalize(closePath bool) error {
	s.tracer.finalize(closePath)

	enc := xml.NewEncoder(s.w)
	enc.Indent("", "  ")
	if err := enc.Encode(s.document()); err != nil {
		return err
	}
	_, err := io.WriteString(s.w, "\n")
	return err
}

type svgDocument struct {
	XMLName xml.Name `xml:"svg"`
	Xmlns   string   `xml:"xmlns,attr"`
	Width   int      `xml:"width,attr"`
	Height  int      `xml:"height,attr"`
	ViewBox string   `xml:"viewBox,attr"`
	Rect    *svgRect `xml:"rect,omitempty"`
	Path    *svgPath `xml:"path,omitempty"`
}

type svgRect struct {
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Fill   string `xml:"fill,attr"`
}

type svgPath struct {
	D              string `xml:"d,attr"`
	Fill           string `xml:"fill,attr"`
	Stroke         string `xml:"stroke,attr"`
	StrokeWidth    string `xml:"stroke-width,attr"`
	StrokeLinecap  string `xml:"stroke-linecap,attr"`
	StrokeLinejoin string `xml:"stroke-linejoin,attr"`
}

func (s *SVG) document() *svgDocument {
	width, height := s.opts.Width, s.opts.Height
	doc := &svgDocument{
		Xmlns:   "http://www.w3.org/2000/svg",
		Width:   width,
		Height:  height,
		ViewBox: fmt.Sprintf("0 0 %d %d", width, height),
	}
	if !s.background.None {
		doc.Rect = &svgRect{Width: "100%", Height: "100%", Fill: s.background.SVG()}
	}
	if data := s.pathData(); data != "" {
		doc.Path = &svgPath{
			D:              data,
			Fill:           "none",
			Stroke:         s.stroke.SVG(),
			StrokeWidth:    coord(s.opts.StrokeWidth),
			StrokeLinecap:  "round",
			StrokeLinejoin: "round",
		}
	}
	return doc
}

func (s *SVG) pathData() string {
	tf := fit(s.tracer.bounds(), float64(s.opts.Width), float64(s.opts.Height), s.opts.Margin)
	parts := make([]string, 0, len(s.tracer.lines))
	for _, line := range s.tracer.lines {
		var b strings.Builder
		for i, p := range line.Points {
			x, y := tf.apply(p)
			if i == 0 {
				b.WriteString("M")
			} else {
				b.WriteString(" L")
			}
			b.WriteString(coord(x) + " " + coord(y))
		}
		if line.Closed {
			b.WriteString(" Z")
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " ")
}

// coord prints a coordinate with at most two decimals
func coord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
