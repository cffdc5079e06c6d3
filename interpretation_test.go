package lsystem

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

// recordingSurface logs every call it receives
type recordingSurface struct {
	calls []string
}

func (s *recordingSurface) record(format string, args ...interface{}) error {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
	return nil
}

func (s *recordingSurface) Initialize(x, y float64) error {
	return s.record("init %.3f %.3f", x, y)
}

func (s *recordingSurface) Finalize(closePath bool) error {
	return s.record("final %v", closePath)
}

func (s *recordingSurface) Enter(x, y float64) error {
	return s.record("enter %.3f %.3f", x, y)
}

func (s *recordingSurface) Exit() error {
	return s.record("exit")
}

func (s *recordingSurface) MoveTo(x, y float64) error {
	return s.record("move %.3f %.3f", x, y)
}

func (s *recordingSurface) LineTo(x, y float64) error {
	return s.record("line %.3f %.3f", x, y)
}

func render(t *testing.T, turtle *Turtle, axiom string) {
	t.Helper()
	ls := mustParse(t, "lsystem(alphabet: {F, f, +, -, G}, axiom: "+axiom+", productions: {})")
	if err := turtle.Render(ls.Axiom()); err != nil {
		t.Fatalf("Unexpected render error: %v", err)
	}
}

func TestTurtleBranchScoping(t *testing.T) {
	surface := &recordingSurface{}
	turtle := NewTurtle(surface, nil)
	render(t, turtle, "F [ + F ] F")

	want := []string{
		"init 0.000 0.000",
		"line 2.000 0.000",
		"enter 2.000 0.000",
		"line 2.000 2.000",
		"exit",
		"line 4.000 0.000",
		"final true",
	}
	if got := strings.Join(surface.calls, "; "); got != strings.Join(want, "; ") {
		t.Errorf("Unexpected calls:\n got: %s\nwant: %s", got, strings.Join(want, "; "))
	}
	if turtle.Phase() != PhaseFinalized {
		t.Errorf("Expected phase finalized, got %s", turtle.Phase())
	}
}

func TestTurtleParameters(t *testing.T) {
	surface := &recordingSurface{}
	turtle := NewTurtle(surface, Frame{"d": 1.0, "close": false})

	ls := mustParse(t, `lsystem(alphabet: {F(l), f(l), +(a), -(a)}, axiom: F(5) +(3.141592653589793) f(2) -(1.5707963267948966) F(1), productions: {})`)
	if err := turtle.Render(ls.Axiom()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{
		"init 0.000 0.000",
		"line 5.000 0.000",
		"move 3.000 0.000",
		"line 3.000 1.000",
		"final false",
	}
	if got := strings.Join(surface.calls, "; "); got != strings.Join(want, "; ") {
		t.Errorf("Unexpected calls:\n got: %s\nwant: %s", got, strings.Join(want, "; "))
	}
}

func TestTurtleDefaults(t *testing.T) {
	turtle := NewTurtle(nil, Frame{"delta": math.Pi / 3})
	if turtle.GetNumber("d", 0) != DefaultD {
		t.Errorf("Expected d = %v, got %v", DefaultD, turtle.GetNumber("d", 0))
	}
	if turtle.GetNumber("delta", 0) != math.Pi/3 {
		t.Errorf("Initial frame did not override delta")
	}
	if !turtle.GetBool("close", false) {
		t.Error("Expected close to default to true")
	}

	render(t, turtle, "+ F")
	if x, y := turtle.GetNumber("x", 0), turtle.GetNumber("y", 0); math.Abs(x-1) > 1e-9 || math.Abs(y-math.Sqrt(3)) > 1e-9 {
		t.Errorf("Expected (1, %v), got (%v, %v)", math.Sqrt(3), x, y)
	}
}

func TestTurtleAliases(t *testing.T) {
	surface := &recordingSurface{}
	turtle := NewTurtle(surface, nil)

	ls := mustParse(t, `lsystem(alphabet: {Fl, Fr}, axiom: Fl Fr, productions: {})`)
	if err := turtle.Render(ls.Axiom()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(surface.calls) != 4 || surface.calls[2] != "line 4.000 0.000" {
		t.Errorf("Aliases did not draw: %v", surface.calls)
	}
}

func TestFrameStack(t *testing.T) {
	it := NewInterpretation(Frame{"alpha": 0.0})
	if err := it.Initialize(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := it.Enter(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	it.SetProperty("alpha", 1.0)
	it.SetProperty("color", "red")
	if it.Depth() != 1 {
		t.Errorf("Expected depth 1, got %d", it.Depth())
	}
	if err := it.Exit(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if it.GetNumber("alpha", -1) != 0 {
		t.Errorf("Branch leaked alpha: %v", it.GetNumber("alpha", -1))
	}
	if it.GetProperty("color", nil) != nil {
		t.Errorf("Branch leaked a new property")
	}
	if err := it.Exit(); err == nil {
		t.Error("Expected an error when exiting the outermost frame")
	}
}

func TestRenderStartsFresh(t *testing.T) {
	turtle := NewTurtle(nil, nil)
	render(t, turtle, "F F")
	render(t, turtle, "F")
	if x := turtle.GetNumber("x", -1); x != 2 {
		t.Errorf("Second rendering did not start from the initial frame: x = %v", x)
	}
	if turtle.InitialState().Number("x", -1) != 0 {
		t.Error("Rendering changed the initial frame")
	}
}

func TestCommandAliases(t *testing.T) {
	it := NewInterpretation(nil)
	it.SetCommand("F", ConstantCommand(1.0))
	it.Alias("F", "G")
	it.Alias("G", "H")
	it.Alias("Q", "R")

	if _, err := it.GetCommand("G"); err != nil {
		t.Errorf("Alias of a command should resolve: %v", err)
	}

	_, err := it.GetCommand("H")
	if !errors.Is(err, ErrAliasChain) {
		t.Errorf("Expected ErrAliasChain, got %v", err)
	}
	if err := it.Execute("H", nil); !errors.Is(err, ErrAliasChain) {
		t.Errorf("Expected Execute to fail with ErrAliasChain, got %v", err)
	}

	if _, err := it.GetCommand("R"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand for an alias of nothing, got %v", err)
	}

	if err := it.Execute("G", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if it.Result() != 1.0 {
		t.Errorf("Expected result 1, got %v", it.Result())
	}
}

func TestUnknownCommand(t *testing.T) {
	it := NewInterpretation(nil)
	it.SetLogger(quietLogger())

	err := it.Execute("Q", nil)
	var execErr *ExecutionError
	if !errors.As(err, &execErr) || !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("Expected an ExecutionError wrapping ErrUnknownCommand, got %v", err)
	}
	if execErr.Command != "Q" {
		t.Errorf("Expected command Q, got %q", execErr.Command)
	}

	var seen []string
	it.SetFallback(Handler(func(ctx *Context) error {
		seen = append(seen, ctx.Name)
		return nil
	}))
	if err := it.Execute("Q", []float64{1}); err != nil {
		t.Errorf("Fallback should handle unknown modules: %v", err)
	}
	if len(seen) != 1 || seen[0] != "Q" {
		t.Errorf("Fallback not called with the module name: %v", seen)
	}
}

func TestCommandErrorsAreWrapped(t *testing.T) {
	it := NewInterpretation(nil)
	boom := errors.New("boom")
	it.SetCommand("X", Handler(func(*Context) error { return boom }))

	err := it.Execute("X", nil)
	var execErr *ExecutionError
	if !errors.As(err, &execErr) || !errors.Is(err, boom) {
		t.Errorf("Expected an ExecutionError wrapping the command error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Error executing command 'X'") {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestUnsetCommand(t *testing.T) {
	it := NewInterpretation(nil)
	it.SetLogger(quietLogger())
	it.SetCommand("F", NoopCommand())

	if !it.UnsetCommand("F") {
		t.Error("Expected UnsetCommand to report the removal")
	}
	if it.UnsetCommand("F") {
		t.Error("Expected UnsetCommand to fail the second time")
	}
	if len(it.Commands()) != 0 {
		t.Errorf("Expected no commands, got %v", it.Commands())
	}
}

// lifecycleHooks records hook calls without drawing
type lifecycleHooks struct {
	calls []string
}

func (h *lifecycleHooks) Initialize(it *Interpretation) error {
	h.calls = append(h.calls, "initialize")
	return nil
}

func (h *lifecycleHooks) Finalize(it *Interpretation) error {
	h.calls = append(h.calls, "finalize")
	return nil
}

func (h *lifecycleHooks) Enter(it *Interpretation) error {
	h.calls = append(h.calls, fmt.Sprintf("enter %d", it.Depth()))
	return nil
}

func (h *lifecycleHooks) Exit(it *Interpretation) error {
	h.calls = append(h.calls, fmt.Sprintf("exit %d", it.Depth()))
	return nil
}

func TestHooksOrder(t *testing.T) {
	it := NewInterpretation(nil)
	it.SetFallback(NoopCommand())
	hooks := &lifecycleHooks{}
	it.SetHooks(hooks)

	tree := ModuleTree{Leaf(NewModule("A")), Branch(ModuleTree{Branch(NewTree(NewModule("B")))})}
	if err := it.Render(tree); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "initialize, enter 1, enter 2, exit 2, exit 1, finalize"
	if got := strings.Join(hooks.calls, ", "); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if it.Depth() != 0 {
		t.Errorf("Expected depth 0 after rendering, got %d", it.Depth())
	}
}

func TestFinalizeDiscardsFrames(t *testing.T) {
	turtle := NewTurtle(nil, nil)
	if err := turtle.Initialize(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := turtle.Enter(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := turtle.Execute("F", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := turtle.Exit(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := turtle.Execute("F", []float64{3}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := turtle.Finalize(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if turtle.Phase() != PhaseFinalized {
		t.Errorf("Expected phase finalized, got %v", turtle.Phase())
	}
	if turtle.Depth() != 0 {
		t.Errorf("Expected depth 0, got %d", turtle.Depth())
	}
	if err := turtle.Exit(); err == nil {
		t.Error("Expected an error when exiting after finalize")
	}
	if x := turtle.GetNumber("x", -1); x != 3 {
		t.Errorf("Expected the last frame to stay readable with x = 3, got %v", x)
	}

	if err := turtle.Initialize(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if x := turtle.GetNumber("x", -1); x != 0 {
		t.Errorf("Expected a fresh frame after Initialize, got x = %v", x)
	}
}
