package surface

import "fmt"

// OpKind names a surface call
type OpKind string

const (
	OpInitialize OpKind = "initialize"
	OpFinalize   OpKind = "finalize"
	OpEnter      OpKind = "enter"
	OpExit       OpKind = "exit"
	OpMove       OpKind = "move"
	OpLine       OpKind = "line"
)

// Op is one recorded surface call
type Op struct {
	Kind  OpKind
	X, Y  float64
	Close bool
}

func (o Op) String() string {
	switch o.Kind {
	case OpFinalize:
		return fmt.Sprintf("%s(close=%v)", o.Kind, o.Close)
	case OpExit:
		return string(o.Kind)
	default:
		return fmt.Sprintf("%s(%g, %g)", o.Kind, o.X, o.Y)
	}
}

// Recorder keeps every call it receives. It is useful for tests and for
// statistics about a rendering.
type Recorder struct {
	Ops []Op
	tracer
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Initialize(x, y float64) error {
	r.Ops = append(r.Ops[:0], Op{Kind: OpInitialize, X: x, Y: y})
	r.tracer.initialize(x, y)
	return nil
}

func (r *Recorder) Finalize(closePath bool) error {
	r.Ops = append(r.Ops, Op{Kind: OpFinalize, Close: closePath})
	r.tracer.finalize(closePath)
	return nil
}

func (r *Recorder) Enter(x, y float64) error {
	r.Ops = append(r.Ops, Op{Kind: OpEnter, X: x, Y: y})
	r.tracer.enter(x, y)
	return nil
}

func (r *Recorder) Exit() error {
	r.Ops = append(r.Ops, Op{Kind: OpExit})
	return r.tracer.exit()
}

func (r *Recorder) MoveTo(x, y float64) error {
	r.Ops = append(r.Ops, Op{Kind: OpMove, X: x, Y: y})
	r.tracer.moveTo(x, y)
	return nil
}

func (r *Recorder) LineTo(x, y float64) error {
	r.Ops = append(r.Ops, Op{Kind: OpLine, X: x, Y: y})
	r.tracer.lineTo(x, y)
	return nil
}

// Polylines returns the traced drawing
func (r *Recorder) Polylines() []Polyline {
	return r.tracer.lines
}

// Bounds returns the extent of the drawing
func (r *Recorder) Bounds() Bounds {
	return r.tracer.bounds()
}

// Count returns how many calls of kind were recorded
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
