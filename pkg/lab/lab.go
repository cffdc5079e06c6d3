package lab

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/phroun/lsystem"
)

// Stats summarizes a derivation
type Stats struct {
	Generation int
	Modules    int
	Depth      int
	Counts     map[lsystem.ModuleKey]int
}

// SortedCounts returns the module keys ordered by name, then arity
func (s Stats) SortedCounts() []lsystem.ModuleKey {
	keys := make([]lsystem.ModuleKey, 0, len(s.Counts))
	for k := range s.Counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Arity < keys[j].Arity
	})
	return keys
}

// SourceError is a definition that failed to parse. Lines holds the
// definition so the error can be shown in context.
type SourceError struct {
	Lines []string
	Err   error
}

func (e *SourceError) Error() string {
	return e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Lab is a parsed L-system with the interpretation described by its
// configuration.
type Lab struct {
	cfg      *Config
	system   *lsystem.LSystem
	commands map[string]lsystem.Command
	lines    []string
	logger   *lsystem.Logger
}

// New parses the configured definition and compiles its commands. A nil
// logger creates a quiet one.
func New(cfg *Config, logger *lsystem.Logger) (*Lab, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = lsystem.NewLogger(false)
	}

	source, filename, err := cfg.Source()
	if err != nil {
		return nil, err
	}

	parser := lsystem.NewParser(source, &lsystem.Config{
		Filename:   filename,
		Seed:       cfg.Seed,
		MaxModules: cfg.MaxModules,
		Logger:     logger,
	})
	system, err := parser.Parse()
	if err != nil {
		return nil, &SourceError{Lines: parser.Lines(), Err: err}
	}

	commands := make(map[string]lsystem.Command, len(cfg.Commands))
	for name, def := range cfg.Commands {
		cmd, err := lsystem.CompileCommand(def.Parameters, def.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "command %q", name)
		}
		commands[name] = cmd
	}

	logger.DebugCat(lsystem.CatConfig, "Loaded %d productions, %d commands, %d aliases",
		len(system.Productions()), len(commands), len(cfg.Aliases))

	return &Lab{
		cfg:      cfg,
		system:   system,
		commands: commands,
		lines:    parser.Lines(),
		logger:   logger,
	}, nil
}

// Config returns the configuration the lab was built from
func (l *Lab) Config() *Config {
	return l.cfg
}

// System returns the parsed L-system
func (l *Lab) System() *lsystem.LSystem {
	return l.system
}

// Lines returns the definition split in lines
func (l *Lab) Lines() []string {
	return l.lines
}

// Run resets the derivation and derives the given number of steps. A
// negative count uses the configured steps.
func (l *Lab) Run(steps int) (lsystem.ModuleTree, error) {
	if steps < 0 {
		steps = l.cfg.Steps
	}
	l.Reset()
	return l.system.Derive(steps)
}

// Step derives one more generation
func (l *Lab) Step() (lsystem.ModuleTree, error) {
	return l.system.Derive(1)
}

// Reset restores the axiom. A configured seed restarts the random
// sequence so every run repeats the same stochastic choices.
func (l *Lab) Reset() {
	l.system.Reset()
	if l.cfg.Seed != 0 {
		l.system.SetRandom(rand.New(rand.NewSource(l.cfg.Seed)))
	}
}

// Current returns the current derivation
func (l *Lab) Current() lsystem.ModuleTree {
	return l.system.CurrentDerivation()
}

// Stats describes the current derivation
func (l *Lab) Stats() Stats {
	tree := l.system.CurrentDerivation()
	return Stats{
		Generation: l.system.Generation(),
		Modules:    tree.Len(),
		Depth:      tree.Depth(),
		Counts:     tree.Counts(),
	}
}

// Turtle builds a turtle drawing on s with the configured properties,
// commands and aliases.
func (l *Lab) Turtle(s lsystem.Surface) *lsystem.Turtle {
	t := lsystem.NewTurtle(s, frame(l.cfg.Properties))
	t.SetLogger(l.logger)
	for name, cmd := range l.commands {
		t.SetCommand(name, cmd)
	}
	for alias, target := range l.cfg.Aliases {
		t.Alias(target, alias)
	}
	if l.cfg.IgnoreUnknown {
		t.SetFallback(lsystem.NoopCommand())
	}
	return t
}

// Render interprets the current derivation on s
func (l *Lab) Render(s lsystem.Surface) error {
	tree := l.system.CurrentDerivation()
	l.logger.DebugCat(lsystem.CatRender, "Rendering generation %d (%d modules)", l.system.Generation(), tree.Len())
	return l.Turtle(s).Render(tree)
}

// frame converts decoded properties to the value types commands work with.
// YAML and TOML decode integers as int and int64.
func frame(props map[string]interface{}) lsystem.Frame {
	f := make(lsystem.Frame, len(props))
	for k, v := range props {
		switch n := v.(type) {
		case int:
			f[k] = float64(n)
		case int64:
			f[k] = float64(n)
		case float32:
			f[k] = float64(n)
		default:
			f[k] = v
		}
	}
	return f
}
