// Package surface provides drawing targets for lsystem turtles: a Recorder
// that logs every call, an SVG writer and a PNG rasterizer.
package surface

import (
	"fmt"
	"math"
)

// Point is a position in turtle coordinates
type Point struct {
	X, Y float64
}

// Polyline is a connected run of line segments
type Polyline struct {
	Points []Point
	Closed bool
}

// Bounds is an axis aligned rectangle in turtle coordinates
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// tracer turns pen moves into polylines. Entering a branch saves the
// current point; leaving it restores that point and lifts the pen.
type tracer struct {
	lines   []Polyline
	current Point
	open    bool
	saved   []Point
}

func (t *tracer) initialize(x, y float64) {
	t.lines = nil
	t.current = Point{x, y}
	t.open = false
	t.saved = t.saved[:0]
}

func (t *tracer) moveTo(x, y float64) {
	t.current = Point{x, y}
	t.open = false
}

func (t *tracer) lineTo(x, y float64) {
	if !t.open {
		t.lines = append(t.lines, Polyline{Points: []Point{t.current}})
		t.open = true
	}
	p := Point{x, y}
	last := &t.lines[len(t.lines)-1]
	last.Points = append(last.Points, p)
	t.current = p
}

func (t *tracer) enter(x, y float64) {
	t.saved = append(t.saved, Point{x, y})
}

func (t *tracer) exit() error {
	if len(t.saved) == 0 {
		return fmt.Errorf("exit without a matching enter")
	}
	t.current = t.saved[len(t.saved)-1]
	t.saved = t.saved[:len(t.saved)-1]
	t.open = false
	return nil
}

func (t *tracer) finalize(closePath bool) {
	if closePath && len(t.lines) > 0 {
		t.lines[len(t.lines)-1].Closed = true
	}
}

// bounds covers every traced point, or only the current point when
// nothing was drawn.
func (t *tracer) bounds() Bounds {
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	add := func(p Point) {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	for _, l := range t.lines {
		for _, p := range l.Points {
			add(p)
		}
	}
	if len(t.lines) == 0 {
		add(t.current)
	}
	return b
}

// transform maps turtle coordinates onto an image of a given size. The y
// axis points up for the turtle and down for images.
type transform struct {
	scale      float64
	dx, dy     float64
	minX, maxY float64
}

// fit scales b uniformly into width x height less margin, centered
func fit(b Bounds, width, height, margin float64) transform {
	innerW, innerH := width-2*margin, height-2*margin
	bw, bh := b.Width(), b.Height()

	scale := 1.0
	switch {
	case bw > 0 && bh > 0:
		scale = math.Min(innerW/bw, innerH/bh)
	case bw > 0:
		scale = innerW / bw
	case bh > 0:
		scale = innerH / bh
	}

	return transform{
		scale: scale,
		dx:    margin + (innerW-bw*scale)/2,
		dy:    margin + (innerH-bh*scale)/2,
		minX:  b.MinX,
		maxY:  b.MaxY,
	}
}

func (t transform) apply(p Point) (float64, float64) {
	return t.dx + (p.X-t.minX)*t.scale, t.dy + (t.maxY-p.Y)*t.scale
}
