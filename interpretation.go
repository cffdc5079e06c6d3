package lsystem

import (
	"fmt"
	"sort"
)

// Phase is the rendering state of an Interpretation
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseRendering
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseRendering:
		return "rendering"
	case PhaseFinalized:
		return "finalized"
	default:
		return "uninitialized"
	}
}

// Context is passed to commands
type Context struct {
	Name   string
	Args   []float64
	interp *Interpretation
}

// Arg returns the i-th actual parameter, or def when the module has fewer
func (c *Context) Arg(i int, def float64) float64 {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return def
}

// Interpretation returns the interpretation executing the command
func (c *Context) Interpretation() *Interpretation {
	return c.interp
}

// Get returns a numeric property of the current frame
func (c *Context) Get(name string, def float64) float64 {
	return c.interp.GetNumber(name, def)
}

// Set changes a property of the current frame
func (c *Context) Set(name string, value interface{}) {
	c.interp.SetProperty(name, value)
}

// SetResult records the value produced by the command
func (c *Context) SetResult(value interface{}) {
	c.interp.result = value
}

// MoveTo moves the pen without drawing, when the hooks provide a pen
func (c *Context) MoveTo(x, y float64) error {
	if pen, ok := c.interp.hooks.(Pen); ok {
		return pen.MoveTo(x, y)
	}
	return nil
}

// LineTo draws to (x, y), when the hooks provide a pen
func (c *Context) LineTo(x, y float64) error {
	if pen, ok := c.interp.hooks.(Pen); ok {
		return pen.LineTo(x, y)
	}
	return nil
}

// Command is executed for every module of the same name
type Command interface {
	Execute(ctx *Context) error
}

// Handler adapts a function to a Command
type Handler func(ctx *Context) error

// Execute calls h
func (h Handler) Execute(ctx *Context) error {
	return h(ctx)
}

// NoopCommand does nothing
func NoopCommand() Command {
	return Handler(func(*Context) error { return nil })
}

// ConstantCommand produces value, whatever its parameters
func ConstantCommand(value interface{}) Command {
	return Handler(func(ctx *Context) error {
		ctx.SetResult(value)
		return nil
	})
}

// Hooks observe the rendering lifecycle
type Hooks interface {
	Initialize(it *Interpretation) error
	Finalize(it *Interpretation) error
	Enter(it *Interpretation) error
	Exit(it *Interpretation) error
}

// Pen is implemented by hooks that can draw
type Pen interface {
	MoveTo(x, y float64) error
	LineTo(x, y float64) error
}

// commandEntry is either a command or the name of the command it aliases
type commandEntry struct {
	command Command
	alias   string
}

// Interpretation walks a module tree and executes the command registered
// for each module, keeping a stack of frames for branches.
type Interpretation struct {
	initial  Frame
	stack    *FrameStack
	final    Frame
	commands map[string]commandEntry
	fallback Command
	hooks    Hooks
	phase    Phase
	logger   *Logger
	result   interface{}
}

// NewInterpretation creates an interpretation whose renderings start from
// a copy of initial.
func NewInterpretation(initial Frame) *Interpretation {
	if initial == nil {
		initial = Frame{}
	}
	return &Interpretation{
		initial:  initial.Clone(),
		commands: make(map[string]commandEntry),
		logger:   NewLogger(false),
	}
}

// SetLogger replaces the logger
func (it *Interpretation) SetLogger(l *Logger) {
	it.logger = l
}

// SetHooks installs the lifecycle hooks
func (it *Interpretation) SetHooks(h Hooks) {
	it.hooks = h
}

// SetCommand registers a command under name, replacing any alias
func (it *Interpretation) SetCommand(name string, cmd Command) {
	it.commands[name] = commandEntry{command: cmd}
	it.logger.DebugCat(CatCommand, "Registered command: %s", name)
}

// Alias makes every name in aliases refer to target
func (it *Interpretation) Alias(target string, aliases ...string) {
	for _, a := range aliases {
		it.commands[a] = commandEntry{alias: target}
		it.logger.DebugCat(CatCommand, "Registered alias: %s -> %s", a, target)
	}
}

// UnsetCommand removes a command or alias
func (it *Interpretation) UnsetCommand(name string) bool {
	if _, exists := it.commands[name]; exists {
		delete(it.commands, name)
		it.logger.DebugCat(CatCommand, "Unregistered command: %s", name)
		return true
	}
	it.logger.WarnCat(CatCommand, "Attempted to unregister unknown command: %s", name)
	return false
}

// SetFallback sets the command run for modules without a command. With no
// fallback such modules are an error.
func (it *Interpretation) SetFallback(cmd Command) {
	it.fallback = cmd
}

// GetCommand resolves name. An alias is followed exactly once; an alias of
// an alias is an error.
func (it *Interpretation) GetCommand(name string) (Command, error) {
	entry, ok := it.commands[name]
	if !ok {
		return nil, &ExecutionError{Command: name, Err: ErrUnknownCommand}
	}
	if entry.alias == "" {
		return entry.command, nil
	}
	target, ok := it.commands[entry.alias]
	if !ok {
		return nil, &ExecutionError{
			Command: name,
			Message: fmt.Sprintf("alias of unknown command '%s'", entry.alias),
			Err:     ErrUnknownCommand,
		}
	}
	if target.alias != "" {
		return nil, &ExecutionError{
			Command: name,
			Message: fmt.Sprintf("alias of '%s', which is itself an alias of '%s'", entry.alias, target.alias),
			Err:     ErrAliasChain,
		}
	}
	return target.command, nil
}

// Commands lists the registered command and alias names
func (it *Interpretation) Commands() []string {
	names := make([]string, 0, len(it.commands))
	for name := range it.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Phase returns the rendering state
func (it *Interpretation) Phase() Phase {
	return it.phase
}

// Result returns the value recorded by the last command that set one
func (it *Interpretation) Result() interface{} {
	return it.result
}

// InitialState returns a copy of the frame renderings start from
func (it *Interpretation) InitialState() Frame {
	return it.initial.Clone()
}

// SetInitialProperty changes the frame renderings start from
func (it *Interpretation) SetInitialProperty(name string, value interface{}) {
	it.initial[name] = value
}

// State returns the current frame, initializing a rendering if none is
// under way.
func (it *Interpretation) State() Frame {
	if it.stack == nil {
		it.stack = NewFrameStack(it.initial)
	}
	return it.stack.Top()
}

// Depth returns the number of open branches: 0 at the top level of a
// rendering and outside of one.
func (it *Interpretation) Depth() int {
	if it.stack == nil {
		return 0
	}
	return it.stack.Depth()
}

// current is the frame getters read: the top of the stack, or the last
// frame of a finalized rendering.
func (it *Interpretation) current() Frame {
	if it.stack == nil && it.final != nil {
		return it.final
	}
	return it.State()
}

// GetProperty returns a property of the current frame, or def when it is
// missing or nil. After Finalize it reads the last frame of the rendering.
func (it *Interpretation) GetProperty(name string, def interface{}) interface{} {
	if v, ok := it.current()[name]; ok && v != nil {
		return v
	}
	return def
}

// GetNumber returns a numeric property of the current frame
func (it *Interpretation) GetNumber(name string, def float64) float64 {
	return it.current().Number(name, def)
}

// GetBool returns a boolean property of the current frame
func (it *Interpretation) GetBool(name string, def bool) bool {
	return it.current().Bool(name, def)
}

// SetProperty changes a property of the current frame
func (it *Interpretation) SetProperty(name string, value interface{}) {
	it.State()[name] = value
}

// Execute runs the command registered for name with the module's actual
// parameters.
func (it *Interpretation) Execute(name string, params []float64) error {
	cmd, err := it.GetCommand(name)
	if err != nil {
		if it.fallback == nil {
			it.logger.UnknownCommandError(name)
			return err
		}
		cmd = it.fallback
	}
	ctx := &Context{Name: name, Args: params, interp: it}
	if err := cmd.Execute(ctx); err != nil {
		if _, ok := err.(*ExecutionError); ok {
			return err
		}
		return &ExecutionError{Command: name, Err: err}
	}
	it.logger.TraceCat(CatCommand, "Executed %s%v", name, params)
	return nil
}

// Initialize starts a rendering with a fresh copy of the initial frame
func (it *Interpretation) Initialize() error {
	it.stack = NewFrameStack(it.initial)
	it.final = nil
	it.phase = PhaseRendering
	it.result = nil
	it.logger.DebugCat(CatRender, "Rendering started with %s", it.stack.Top())
	if it.hooks != nil {
		return it.hooks.Initialize(it)
	}
	return nil
}

// Enter opens a branch: the current frame is saved
func (it *Interpretation) Enter() error {
	it.State()
	it.stack.Push()
	if it.hooks != nil {
		return it.hooks.Enter(it)
	}
	return nil
}

// Exit closes a branch: the frame saved by Enter becomes current again
func (it *Interpretation) Exit() error {
	if it.hooks != nil {
		if err := it.hooks.Exit(it); err != nil {
			return err
		}
	}
	if it.stack == nil {
		return fmt.Errorf("exit without a rendering")
	}
	return it.stack.Pop()
}

// Finalize ends the rendering and discards the frame stack. The getters
// keep returning the last top-level frame until the next Initialize.
func (it *Interpretation) Finalize() error {
	it.phase = PhaseFinalized
	it.logger.DebugCat(CatRender, "Rendering finished")
	var err error
	if it.hooks != nil {
		err = it.hooks.Finalize(it)
	}
	if it.stack != nil {
		it.final = it.stack.Top()
		it.stack = nil
	}
	return err
}

// Render initializes, executes every module depth first and finalizes
func (it *Interpretation) Render(tree ModuleTree) error {
	if err := it.Initialize(); err != nil {
		return err
	}
	if err := it.renderTree(tree); err != nil {
		return err
	}
	return it.Finalize()
}

func (it *Interpretation) renderTree(tree ModuleTree) error {
	for _, n := range tree {
		if sub, ok := n.Subtree(); ok {
			if err := it.Enter(); err != nil {
				return err
			}
			if err := it.renderTree(sub); err != nil {
				return err
			}
			if err := it.Exit(); err != nil {
				return err
			}
			continue
		}
		m, _ := n.Module()
		if err := it.Execute(m.Name, m.Parameters); err != nil {
			return err
		}
	}
	return nil
}
