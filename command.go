package lsystem

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
)

var assignmentPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([^=].*)$`)

type statement struct {
	target string // empty for a bare expression
	expr   *govaluate.EvaluableExpression
}

// scriptCommand is a command defined by formal parameter names and a body
// of statements.
type scriptCommand struct {
	params     []string
	source     string
	statements []statement
	ctx        *Context
}

// CompileCommand compiles a command from parameter names and a body. The
// body is a list of statements separated by ';' or newlines. A statement
// 'name = expression' sets a property of the current frame; any other
// statement is evaluated and becomes the command's result. Expressions see
// the parameters, the frame properties, pi and the functions sin, cos, tan,
// atan2, sqrt, abs, floor, ceil, min, max, rad, deg, moveTo and lineTo.
func CompileCommand(params []string, body string) (Command, error) {
	sc := &scriptCommand{params: params, source: body}
	functions := sc.functions()

	for _, raw := range strings.FieldsFunc(body, func(r rune) bool { return r == ';' || r == '\n' }) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		st := statement{}
		source := raw
		if m := assignmentPattern.FindStringSubmatch(raw); m != nil {
			st.target, source = m[1], m[2]
		}
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(source, functions)
		if err != nil {
			return nil, &ConstructionError{Message: fmt.Sprintf("invalid statement '%s'", raw), Err: err}
		}
		st.expr = expr
		sc.statements = append(sc.statements, st)
	}
	return sc, nil
}

func (sc *scriptCommand) Execute(ctx *Context) error {
	sc.ctx = ctx
	defer func() { sc.ctx = nil }()

	for _, st := range sc.statements {
		value, err := st.expr.Eval(commandParameters{sc: sc, ctx: ctx})
		if err != nil {
			return &ExecutionError{Command: ctx.Name, Message: fmt.Sprintf("'%s': %v", st.expr.String(), err), Err: err}
		}
		if st.target != "" {
			ctx.Set(st.target, value)
		} else {
			ctx.SetResult(value)
		}
	}
	return nil
}

func (sc *scriptCommand) String() string {
	return fmt.Sprintf("(%s) { %s }", strings.Join(sc.params, ", "), sc.source)
}

// commandParameters resolves names for govaluate: actual parameters first,
// then properties of the current frame.
type commandParameters struct {
	sc  *scriptCommand
	ctx *Context
}

func (p commandParameters) Get(name string) (interface{}, error) {
	for i, formal := range p.sc.params {
		if formal == name {
			if i >= len(p.ctx.Args) {
				return nil, fmt.Errorf("parameter '%s' has no value", name)
			}
			return p.ctx.Args[i], nil
		}
	}
	if v, ok := p.ctx.interp.State()[name]; ok && v != nil {
		return v, nil
	}
	if name == "pi" {
		return math.Pi, nil
	}
	return nil, fmt.Errorf("no parameter or property '%s'", name)
}

func (sc *scriptCommand) functions() map[string]govaluate.ExpressionFunction {
	unary := func(name string, f func(float64) float64) govaluate.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			xs, err := numbers(name, args, 1)
			if err != nil {
				return nil, err
			}
			return f(xs[0]), nil
		}
	}
	binary := func(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			xs, err := numbers(name, args, 2)
			if err != nil {
				return nil, err
			}
			return f(xs[0], xs[1]), nil
		}
	}
	pen := func(name string, draw func(c *Context, x, y float64) error) govaluate.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			xs, err := numbers(name, args, 2)
			if err != nil {
				return nil, err
			}
			if sc.ctx == nil {
				return nil, fmt.Errorf("%s outside of a rendering", name)
			}
			return true, draw(sc.ctx, xs[0], xs[1])
		}
	}

	return map[string]govaluate.ExpressionFunction{
		"sin":    unary("sin", math.Sin),
		"cos":    unary("cos", math.Cos),
		"tan":    unary("tan", math.Tan),
		"sqrt":   unary("sqrt", math.Sqrt),
		"abs":    unary("abs", math.Abs),
		"floor":  unary("floor", math.Floor),
		"ceil":   unary("ceil", math.Ceil),
		"rad":    unary("rad", func(d float64) float64 { return d * math.Pi / 180 }),
		"deg":    unary("deg", func(r float64) float64 { return r * 180 / math.Pi }),
		"atan2":  binary("atan2", math.Atan2),
		"min":    binary("min", math.Min),
		"max":    binary("max", math.Max),
		"moveTo": pen("moveTo", (*Context).MoveTo),
		"lineTo": pen("lineTo", (*Context).LineTo),
	}
}

func numbers(name string, args []interface{}, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", name, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, ok := a.(float64)
		if !ok {
			return nil, fmt.Errorf("argument %d of %s is not a number", i+1, name)
		}
		out[i] = v
	}
	return out, nil
}
