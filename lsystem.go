// Package lsystem parses, derives and interprets parametric, conditional,
// stochastic and context-sensitive Lindenmayer systems.
//
// Basic usage:
//
//	ls, err := lsystem.Parse(`lsystem(
//		alphabet: {F, +, -},
//		axiom: F,
//		productions: {F -> F + F - - F + F})`)
//	if err != nil {
//		return err
//	}
//	tree, err := ls.Derive(3)
//	turtle := lsystem.NewTurtle(surface, nil)
//	err = turtle.Render(tree)
package lsystem

import (
	"fmt"
	"strings"
)

// LSystem is a parsed L-system together with its current derivation
type LSystem struct {
	alphabet    *Alphabet
	axiom       ModuleTree
	productions []Production
	current     ModuleTree
	generation  int
	random      RandomSource
	logger      *Logger
	maxModules  int
}

// New assembles an L-system. Every module used by the axiom or the
// productions must be declared in the alphabet. A nil config uses defaults.
func New(alphabet *Alphabet, axiom ModuleTree, productions []Production, config *Config) (*LSystem, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if alphabet == nil {
		alphabet = &Alphabet{}
	}

	for _, m := range axiom.Modules() {
		if !alphabet.Has(m.Key()) {
			return nil, undeclared(m.Key(), "axiom")
		}
	}
	for _, prod := range productions {
		if err := checkProduction(alphabet, prod); err != nil {
			return nil, err
		}
	}

	ls := &LSystem{
		alphabet:    alphabet,
		axiom:       axiom,
		productions: productions,
		current:     axiom,
		random:      config.random(),
		logger:      config.logger(),
		maxModules:  config.MaxModules,
	}
	for _, s := range ls.UnreachableProductions() {
		ls.logger.WarnCat(CatDerive, "Production '%s' is never used: '%s' always matches first", oneLine(s.Production), oneLine(s.ShadowedBy))
	}
	return ls, nil
}

func undeclared(key ModuleKey, where string) error {
	return &ConstructionError{
		Message: fmt.Sprintf("module %s in the %s is not in the alphabet", key, where),
		Err:     ErrUndeclaredModule,
	}
}

func checkProduction(alphabet *Alphabet, prod Production) error {
	pred := prod.Predecessor()
	where := fmt.Sprintf("production '%s'", oneLine(prod))
	for _, m := range append(append(pred.LeftContext.Modules(), pred.Module), pred.RightContext.Modules()...) {
		if !alphabet.Has(m.Key()) {
			return undeclared(m.Key(), where)
		}
		if _, ok := m.FormalNames(); !ok {
			return &ConstructionError{Message: fmt.Sprintf("parameters of %s in the predecessor of %s must be names", m.Name, where)}
		}
	}

	var successors []*Successor
	switch p := prod.(type) {
	case *PlainProduction:
		successors = append(successors, p.Successor())
	case *ConditionalProduction:
		successors = append(successors, p.Successor())
	case *StochasticProduction:
		for _, s := range p.successors {
			successors = append(successors, s.Successor)
		}
	}
	for _, s := range successors {
		for _, m := range s.Tree().Modules() {
			if !alphabet.Has(m.Key()) {
				return undeclared(m.Key(), where)
			}
		}
	}
	return nil
}

func oneLine(p Production) string {
	return strings.Join(strings.Fields(p.String()), " ")
}

// Alphabet returns the declared modules
func (ls *LSystem) Alphabet() *Alphabet {
	return ls.alphabet
}

// Axiom returns the start tree
func (ls *LSystem) Axiom() ModuleTree {
	return ls.axiom
}

// Productions returns the productions in declaration order
func (ls *LSystem) Productions() []Production {
	out := make([]Production, len(ls.productions))
	copy(out, ls.productions)
	return out
}

// CurrentDerivation returns the tree produced by the last derivation step
func (ls *LSystem) CurrentDerivation() ModuleTree {
	return ls.current
}

// Generation returns how many steps have been derived since the axiom
func (ls *LSystem) Generation() int {
	return ls.generation
}

// SetRandom replaces the source used by stochastic productions
func (ls *LSystem) SetRandom(r RandomSource) {
	ls.random = r
}

// SetLogger replaces the logger
func (ls *LSystem) SetLogger(l *Logger) {
	ls.logger = l
}

// Reset restores the axiom as current derivation
func (ls *LSystem) Reset() {
	ls.current = ls.axiom
	ls.generation = 0
}

// Derive rewrites the current derivation steps times and returns the
// result. Each step builds a new tree from the previous one. When a step
// fails the derivation stays at the last completed step.
func (ls *LSystem) Derive(steps int) (ModuleTree, error) {
	for i := 0; i < steps; i++ {
		next, err := ls.rewrite(ls.current)
		if err != nil {
			return ls.current, fmt.Errorf("generation %d: %w", ls.generation+1, err)
		}
		if ls.maxModules > 0 && next.Len() > ls.maxModules {
			return ls.current, fmt.Errorf("generation %d has %d modules: %w", ls.generation+1, next.Len(), ErrDerivationLimit)
		}
		ls.current = next
		ls.generation++
		ls.logger.DebugCat(CatDerive, "Generation %d: %d modules", ls.generation, next.Len())
	}
	return ls.current, nil
}

// Shadowed pairs a production that can never apply with the earlier one
// that always matches first.
type Shadowed struct {
	Production Production
	ShadowedBy Production
}

// UnreachableProductions lists productions hidden behind an earlier
// unconditional production with the same predecessor. Matching takes the
// first production that applies, so the later ones are dead rules.
func (ls *LSystem) UnreachableProductions() []Shadowed {
	var out []Shadowed
	for j, later := range ls.productions {
		for _, earlier := range ls.productions[:j] {
			if shadows(earlier, later) {
				out = append(out, Shadowed{Production: later, ShadowedBy: earlier})
				break
			}
		}
	}
	return out
}

func shadows(earlier, later Production) bool {
	if earlier.Condition() != nil {
		return false
	}
	ep, lp := earlier.Predecessor(), later.Predecessor()
	if ep.Module.Key() != lp.Module.Key() {
		return false
	}
	if !ep.IsContextSensitive() {
		return true
	}
	return sameKeys(ep.LeftContext, lp.LeftContext) && sameKeys(ep.RightContext, lp.RightContext)
}

func sameKeys(a, b TemplateTree) bool {
	am, bm := a.Modules(), b.Modules()
	if len(am) != len(bm) {
		return false
	}
	for i := range am {
		if am[i].Key() != bm[i].Key() {
			return false
		}
	}
	return true
}

func (ls *LSystem) String() string {
	prods := make([]string, len(ls.productions))
	for i, p := range ls.productions {
		prods[i] = p.String()
	}
	return fmt.Sprintf("lsystem(alphabet: {%s}, axiom: %s, productions: {%s})",
		ls.alphabet, ls.axiom, strings.Join(prods, ", "))
}
