package surface

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Raster paints the drawing into an RGBA image when the rendering is
// finalized.
type Raster struct {
	img        *image.RGBA
	opts       Options
	stroke     Paint
	background Paint
	tracer
}

// NewRaster creates a surface painting into a fresh image
func NewRaster(opts Options) (*Raster, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	stroke, background, err := parsePaints(opts)
	if err != nil {
		return nil, err
	}
	return &Raster{
		img:        image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		opts:       opts,
		stroke:     stroke,
		background: background,
	}, nil
}

func (r *Raster) Initialize(x, y float64) error {
	r.tracer.initialize(x, y)
	return nil
}

func (r *Raster) Enter(x, y float64) error {
	r.tracer.enter(x, y)
	return nil
}

func (r *Raster) Exit() error {
	return r.tracer.exit()
}

func (r *Raster) MoveTo(x, y float64) error {
	r.tracer.moveTo(x, y)
	return nil
}

func (r *Raster) LineTo(x, y float64) error {
	r.tracer.lineTo(x, y)
	return nil
}

// Finalize paints the background and strokes every traced line
func (r *Raster) Finalize(closePath bool) error {
	r.tracer.finalize(closePath)

	bounds := r.img.Bounds()
	draw.Draw(r.img, bounds, image.NewUniform(r.background.Value()), image.Point{}, draw.Src)
	if r.stroke.None || len(r.tracer.lines) == 0 {
		return nil
	}

	w, h := r.opts.Width, r.opts.Height
	scanner := rasterx.NewScannerGV(w, h, r.img, bounds)
	dasher := rasterx.NewDasher(w, h, scanner)
	dasher.SetStroke(toFixed(r.opts.StrokeWidth), toFixed(4), rasterx.RoundCap, nil, rasterx.RoundGap, rasterx.Round, nil, 0)
	dasher.SetColor(r.stroke.Value())

	tf := fit(r.tracer.bounds(), float64(w), float64(h), r.opts.Margin)
	for _, line := range r.tracer.lines {
		for i, p := range line.Points {
			x, y := tf.apply(p)
			if i == 0 {
				dasher.Start(rasterx.ToFixedP(x, y))
			} else {
				dasher.Line(rasterx.ToFixedP(x, y))
			}
		}
		dasher.Stop(line.Closed)
	}
	dasher.Draw()
	dasher.Clear()
	return nil
}

// Image returns the painted image
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// WritePNG encodes the image as PNG
func (r *Raster) WritePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

// SavePNG writes the image to a PNG file
func (r *Raster) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
