package surface

import (
	"bytes"
	"encoding/xml"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phroun/lsystem"
)

func renderAxiom(t *testing.T, s lsystem.Surface, axiom string) {
	t.Helper()
	ls, err := lsystem.Parse("lsystem(alphabet: {F, f, +, -}, axiom: " + axiom + ", productions: {})")
	require.NoError(t, err)
	require.NoError(t, lsystem.NewTurtle(s, nil).Render(ls.Axiom()))
}

func TestRecorderBranch(t *testing.T) {
	rec := NewRecorder()
	renderAxiom(t, rec, "F [ + F ] F")

	kinds := make([]OpKind, len(rec.Ops))
	for i, op := range rec.Ops {
		kinds[i] = op.Kind
	}
	assert.Equal(t, []OpKind{OpInitialize, OpLine, OpEnter, OpLine, OpExit, OpLine, OpFinalize}, kinds)
	assert.Equal(t, 3, rec.Count(OpLine))
	assert.True(t, rec.Ops[len(rec.Ops)-1].Close)

	lines := rec.Polylines()
	require.Len(t, lines, 2)
	assert.Len(t, lines[0].Points, 3)
	assert.InDelta(t, 2, lines[0].Points[2].Y, 1e-9)
	assert.Equal(t, Point{2, 0}, roundPoint(lines[1].Points[0]))
	assert.True(t, lines[1].Closed)

	b := rec.Bounds()
	assert.InDelta(t, 4, b.Width(), 1e-9)
	assert.InDelta(t, 2, b.Height(), 1e-9)
}

func TestRecorderMove(t *testing.T) {
	rec := NewRecorder()
	renderAxiom(t, rec, "F f F")

	lines := rec.Polylines()
	require.Len(t, lines, 2)
	assert.Equal(t, Point{4, 0}, roundPoint(lines[1].Points[0]))
	assert.Equal(t, "move(4, 0)", rec.Ops[2].String())
}

func TestTracerUnbalancedExit(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, rec.Initialize(0, 0))
	assert.Error(t, rec.Exit())
}

func TestFit(t *testing.T) {
	b := Bounds{MinX: 0, MinY: 0, MaxX: 2, MaxY: 1}
	tf := fit(b, 100, 100, 10)

	x, y := tf.apply(Point{0, 1})
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 30, y, 1e-9)

	x, y = tf.apply(Point{2, 0})
	assert.InDelta(t, 90, x, 1e-9)
	assert.InDelta(t, 70, y, 1e-9)
}

func TestParsePaint(t *testing.T) {
	p, err := ParsePaint("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", p.SVG())

	p, err = ParsePaint("#0f0")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", p.SVG())

	p, err = ParsePaint("none")
	require.NoError(t, err)
	assert.True(t, p.None)
	assert.Equal(t, "none", p.SVG())

	_, err = ParsePaint("#zzzzzz")
	assert.Error(t, err)
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Width, opts.Height, opts.Margin = 100, 100, 10
	opts.Stroke = "#336699"

	svg, err := NewSVG(&buf, opts)
	require.NoError(t, err)
	renderAxiom(t, svg, "F + F")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.Contains(t, out, `viewBox="0 0 100 100"`)
	assert.Contains(t, out, `fill="#ffffff"`)
	assert.Contains(t, out, `stroke="#336699"`)
	assert.Contains(t, out, `d="M10 90 L90 90 L90 10 Z"`)
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestSVGIsWellFormed(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Width, opts.Height = 40, 20
	opts.Background = "none"

	svg, err := NewSVG(&buf, opts)
	require.NoError(t, err)
	renderAxiom(t, svg, "F f F")

	var doc svgDocument
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "svg", doc.XMLName.Local)
	assert.Equal(t, "http://www.w3.org/2000/svg", doc.XMLName.Space)
	assert.Equal(t, "0 0 40 20", doc.ViewBox)
	assert.Nil(t, doc.Rect, "no background rectangle")
	require.NotNil(t, doc.Path)
	assert.Equal(t, 2, strings.Count(doc.Path.D, "M"), "one subpath per pen stroke")
}

func TestSVGInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Background = "purple-ish"
	_, err := NewSVG(&bytes.Buffer{}, opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Width = 0
	_, err = NewSVG(&bytes.Buffer{}, opts)
	assert.Error(t, err)
}

func TestRaster(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height, opts.Margin, opts.StrokeWidth = 50, 50, 5, 2

	r, err := NewRaster(opts)
	require.NoError(t, err)
	renderAxiom(t, r, "F")

	img := r.Image()
	on := img.RGBAAt(25, 25)
	assert.Less(t, on.R, uint8(128), "pixel on the line should be dark")
	off := img.RGBAAt(25, 5)
	assert.Equal(t, uint8(255), off.R, "pixel away from the line should be background")

	var buf bytes.Buffer
	require.NoError(t, r.WritePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 50, decoded.Bounds().Dx())
}

func roundPoint(p Point) Point {
	const eps = 1e-9
	round := func(v float64) float64 {
		if v > -eps && v < eps {
			return 0
		}
		return float64(int64(v*1e6+0.5)) / 1e6
	}
	return Point{round(p.X), round(p.Y)}
}
