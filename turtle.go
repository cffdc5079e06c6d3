package lsystem

// Surface is a drawing target for the turtle. Initialize clears the surface
// and begins a path at the start position; Enter and Exit bracket a branch
// so the surface can save and restore its own drawing state.
type Surface interface {
	Initialize(x, y float64) error
	Finalize(closePath bool) error
	Enter(x, y float64) error
	Exit() error
	MoveTo(x, y float64) error
	LineTo(x, y float64) error
}

// Turtle is an interpretation with the turtle vocabulary, drawing on a
// surface.
type Turtle struct {
	*Interpretation
	surface Surface
}

// NewTurtle creates a turtle drawing on surface. A nil surface renders
// without drawing. initial may override the property defaults.
func NewTurtle(surface Surface, initial Frame) *Turtle {
	frame := Frame{}
	for _, p := range TurtleProperties() {
		frame[p.Name] = p.Default
	}
	for k, v := range initial {
		frame[k] = v
	}

	t := &Turtle{Interpretation: NewInterpretation(frame), surface: surface}
	RegisterTurtleLibrary(t.Interpretation)
	if surface != nil {
		t.SetHooks(surfaceHooks{surface: surface})
	}
	return t
}

// Surface returns the drawing target
func (t *Turtle) Surface() Surface {
	return t.surface
}

// surfaceHooks forwards the rendering lifecycle and pen moves to a surface
type surfaceHooks struct {
	surface Surface
}

func (h surfaceHooks) Initialize(it *Interpretation) error {
	return h.surface.Initialize(it.GetNumber("x", DefaultX), it.GetNumber("y", DefaultY))
}

func (h surfaceHooks) Finalize(it *Interpretation) error {
	return h.surface.Finalize(it.GetBool("close", true))
}

func (h surfaceHooks) Enter(it *Interpretation) error {
	return h.surface.Enter(it.GetNumber("x", DefaultX), it.GetNumber("y", DefaultY))
}

func (h surfaceHooks) Exit(*Interpretation) error {
	return h.surface.Exit()
}

func (h surfaceHooks) MoveTo(x, y float64) error {
	return h.surface.MoveTo(x, y)
}

func (h surfaceHooks) LineTo(x, y float64) error {
	return h.surface.LineTo(x, y)
}
