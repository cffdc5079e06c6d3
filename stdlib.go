package lsystem

import "math"

// Turtle property defaults
const (
	DefaultX     = 0.0
	DefaultY     = 0.0
	DefaultD     = 2.0
	DefaultDelta = math.Pi / 2
	DefaultAlpha = 0.0
)

// Property describes a frame property used by a command set
type Property struct {
	Name        string
	Default     interface{}
	Description string
}

// TurtleProperties lists the properties of the turtle vocabulary
func TurtleProperties() []Property {
	return []Property{
		{Name: "x", Default: DefaultX, Description: "horizontal position"},
		{Name: "y", Default: DefaultY, Description: "vertical position"},
		{Name: "d", Default: DefaultD, Description: "step length of f and F"},
		{Name: "alpha", Default: DefaultAlpha, Description: "heading in radians"},
		{Name: "delta", Default: DefaultDelta, Description: "turn of + and - in radians"},
		{Name: "close", Default: true, Description: "close the path when the rendering finishes"},
	}
}

// RegisterTurtleLibrary registers the turtle commands: + and - turn by
// delta, f moves by d and F draws by d. A parameter overrides the angle or
// the length. Fl and Fr are aliases of F.
func RegisterTurtleLibrary(it *Interpretation) {
	// + - turn left
	it.SetCommand("+", Handler(func(ctx *Context) error {
		alpha := ctx.Get("alpha", DefaultAlpha)
		ctx.Set("alpha", alpha+ctx.Arg(0, ctx.Get("delta", DefaultDelta)))
		return nil
	}))

	// - - turn right
	it.SetCommand("-", Handler(func(ctx *Context) error {
		alpha := ctx.Get("alpha", DefaultAlpha)
		ctx.Set("alpha", alpha-ctx.Arg(0, ctx.Get("delta", DefaultDelta)))
		return nil
	}))

	// f - move forward without drawing
	it.SetCommand("f", Handler(func(ctx *Context) error {
		x, y := step(ctx)
		return ctx.MoveTo(x, y)
	}))

	// F - draw forward
	it.SetCommand("F", Handler(func(ctx *Context) error {
		x, y := step(ctx)
		return ctx.LineTo(x, y)
	}))

	it.Alias("F", "Fl", "Fr")
}

func step(ctx *Context) (float64, float64) {
	d := ctx.Arg(0, ctx.Get("d", DefaultD))
	alpha := ctx.Get("alpha", DefaultAlpha)
	x := ctx.Get("x", DefaultX) + d*math.Cos(alpha)
	y := ctx.Get("y", DefaultY) + d*math.Sin(alpha)
	ctx.Set("x", x)
	ctx.Set("y", y)
	return x, y
}
