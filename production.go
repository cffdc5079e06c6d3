package lsystem

import (
	"fmt"
	"math/big"
	"strings"
)

// Predecessor is the left hand side of a production: one module with
// optional left and right context patterns.
type Predecessor struct {
	Module       ModuleTemplate
	LeftContext  TemplateTree
	RightContext TemplateTree
}

// HasLeftContext reports whether a left context was given
func (p *Predecessor) HasLeftContext() bool { return len(p.LeftContext) > 0 }

// HasRightContext reports whether a right context was given
func (p *Predecessor) HasRightContext() bool { return len(p.RightContext) > 0 }

// IsContextSensitive reports whether either context is present
func (p *Predecessor) IsContextSensitive() bool {
	return p.HasLeftContext() || p.HasRightContext()
}

// Matches compares the strict predecessor with m by name and arity
func (p *Predecessor) Matches(m Module) bool {
	return p.Module.Key() == m.Key()
}

// Formals lists the parameter names bound by the predecessor: left context,
// strict predecessor, right context.
func (p *Predecessor) Formals() []string {
	var names []string
	add := func(t ModuleTemplate) {
		if ns, ok := t.FormalNames(); ok {
			names = append(names, ns...)
		}
	}
	for _, m := range p.LeftContext.Modules() {
		add(m)
	}
	add(p.Module)
	for _, m := range p.RightContext.Modules() {
		add(m)
	}
	return names
}

func (p *Predecessor) String() string {
	var b strings.Builder
	if p.HasLeftContext() {
		b.WriteString(p.LeftContext.String())
		b.WriteString(" < ")
	}
	b.WriteString(p.Module.String())
	if p.HasRightContext() {
		b.WriteString(" > ")
		b.WriteString(p.RightContext.String())
	}
	return b.String()
}

// Successor produces a module tree from the actual parameters bound to a
// predecessor.
type Successor struct {
	tree TemplateTree
}

// NewSuccessor wraps a template tree
func NewSuccessor(tree TemplateTree) *Successor {
	return &Successor{tree: tree}
}

// Tree returns the template tree
func (s *Successor) Tree() TemplateTree {
	return s.tree
}

// Apply instantiates every template against actual
func (s *Successor) Apply(actual []float64) (ModuleTree, error) {
	return instantiate(s.tree, actual)
}

func instantiate(tree TemplateTree, actual []float64) (ModuleTree, error) {
	out := make(ModuleTree, 0, len(tree))
	for _, n := range tree {
		if sub, ok := n.Subtree(); ok {
			branch, err := instantiate(sub, actual)
			if err != nil {
				return nil, err
			}
			out = append(out, Branch(branch))
			continue
		}
		tmpl, _ := n.Module()
		m, err := tmpl.Instantiate(actual)
		if err != nil {
			return nil, err
		}
		out = append(out, Leaf(m))
	}
	return out, nil
}

func (s *Successor) String() string {
	return s.tree.String()
}

// Production rewrites a module matching its predecessor
type Production interface {
	Predecessor() *Predecessor
	// Condition returns nil for unconditional productions
	Condition() *BooleanExpression
	// Follow returns the replacement for a matched module. actual holds the
	// parameters bound to Predecessor().Formals().
	Follow(rnd RandomSource, actual []float64) (ModuleTree, error)
	String() string
}

// PlainProduction always rewrites to the same successor
type PlainProduction struct {
	predecessor *Predecessor
	successor   *Successor
}

// NewPlainProduction creates predecessor -> successor
func NewPlainProduction(predecessor *Predecessor, successor *Successor) *PlainProduction {
	return &PlainProduction{predecessor: predecessor, successor: successor}
}

func (p *PlainProduction) Predecessor() *Predecessor { return p.predecessor }
func (p *PlainProduction) Condition() *BooleanExpression { return nil }
func (p *PlainProduction) Successor() *Successor { return p.successor }

func (p *PlainProduction) Follow(_ RandomSource, actual []float64) (ModuleTree, error) {
	return p.successor.Apply(actual)
}

func (p *PlainProduction) String() string {
	return fmt.Sprintf("%s -> %s", p.predecessor, p.successor)
}

// ConditionalProduction applies only when its condition holds
type ConditionalProduction struct {
	predecessor *Predecessor
	condition   *BooleanExpression
	successor   *Successor
}

// NewConditionalProduction creates predecessor : condition -> successor
func NewConditionalProduction(predecessor *Predecessor, condition *BooleanExpression, successor *Successor) *ConditionalProduction {
	return &ConditionalProduction{predecessor: predecessor, condition: condition, successor: successor}
}

func (p *ConditionalProduction) Predecessor() *Predecessor { return p.predecessor }
func (p *ConditionalProduction) Condition() *BooleanExpression { return p.condition }
func (p *ConditionalProduction) Successor() *Successor { return p.successor }

func (p *ConditionalProduction) Follow(_ RandomSource, actual []float64) (ModuleTree, error) {
	return p.successor.Apply(actual)
}

func (p *ConditionalProduction) String() string {
	return fmt.Sprintf("%s: %s -> %s", p.predecessor, p.condition, p.successor)
}

// StochasticSuccessor is one weighted alternative of a stochastic production
type StochasticSuccessor struct {
	Probability float64
	Successor   *Successor

	lower, upper float64
}

// StochasticProduction picks one of its successors at random, weighted by
// probability.
type StochasticProduction struct {
	predecessor *Predecessor
	condition   *BooleanExpression
	successors  []StochasticSuccessor
}

// NewStochasticProduction validates the probabilities and lays them out as
// consecutive intervals of [0,1) in declaration order. Every probability
// must be in (0,1] and together they must add up to exactly 1. condition
// may be nil.
func NewStochasticProduction(predecessor *Predecessor, condition *BooleanExpression, successors []StochasticSuccessor) (*StochasticProduction, error) {
	if len(successors) == 0 {
		return nil, &ConstructionError{Message: fmt.Sprintf("stochastic production for '%s' has no successors", predecessor)}
	}

	laid := make([]StochasticSuccessor, len(successors))
	lower := 0.0
	total := new(big.Rat)
	for i, s := range successors {
		if !(s.Probability > 0 && s.Probability <= 1) {
			return nil, &ConstructionError{
				Message: fmt.Sprintf("probability %s of '%s'", formatNumber(s.Probability), predecessor),
				Err:     ErrProbabilityRange,
			}
		}
		s.lower = lower
		s.upper = lower + s.Probability
		lower = s.upper
		laid[i] = s
		total.Add(total, decimalRat(s.Probability))
	}

	if total.Cmp(big.NewRat(1, 1)) != 0 {
		return nil, &ConstructionError{
			Message: fmt.Sprintf("probabilities of '%s' add up to %s", predecessor, total.FloatString(6)),
			Err:     ErrProbabilitySum,
		}
	}

	return &StochasticProduction{predecessor: predecessor, condition: condition, successors: laid}, nil
}

// decimalRat converts v through its shortest decimal form so that 0.1 and
// 0.9 add up to 1 the way they read in a definition.
func decimalRat(v float64) *big.Rat {
	r, ok := new(big.Rat).SetString(formatNumber(v))
	if !ok {
		return new(big.Rat).SetFloat64(v)
	}
	return r
}

func (p *StochasticProduction) Predecessor() *Predecessor { return p.predecessor }
func (p *StochasticProduction) Condition() *BooleanExpression { return p.condition }

// Successors returns the weighted alternatives in declaration order
func (p *StochasticProduction) Successors() []StochasticSuccessor {
	out := make([]StochasticSuccessor, len(p.successors))
	copy(out, p.successors)
	return out
}

// Choose selects the successor whose interval contains r, r in [0,1)
func (p *StochasticProduction) Choose(r float64) *Successor {
	for _, s := range p.successors {
		if s.lower <= r && r < s.upper {
			return s.Successor
		}
	}
	return p.successors[len(p.successors)-1].Successor
}

func (p *StochasticProduction) Follow(rnd RandomSource, actual []float64) (ModuleTree, error) {
	return p.Choose(rnd.Float64()).Apply(actual)
}

func (p *StochasticProduction) String() string {
	var b strings.Builder
	b.WriteString(p.predecessor.String())
	if p.condition != nil {
		b.WriteString(": ")
		b.WriteString(p.condition.String())
	}
	b.WriteString(" {\n")
	for i, s := range p.successors {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "\t%s -> %s", formatNumber(s.Probability), s.Successor)
	}
	b.WriteString("\n}")
	return b.String()
}

// IdentityProduction copies a module unchanged. It is synthesized for
// modules no declared production matches.
type IdentityProduction struct {
	module Module
}

// NewIdentityProduction creates the identity rule for m
func NewIdentityProduction(m Module) *IdentityProduction {
	return &IdentityProduction{module: m}
}

func (p *IdentityProduction) Predecessor() *Predecessor {
	tmpl := ModuleTemplate{Name: p.module.Name}
	for _, v := range p.module.Parameters {
		tmpl.Parameters = append(tmpl.Parameters, NumberLiteral(v))
	}
	return &Predecessor{Module: tmpl}
}

func (p *IdentityProduction) Condition() *BooleanExpression { return nil }

func (p *IdentityProduction) Follow(RandomSource, []float64) (ModuleTree, error) {
	params := make([]float64, len(p.module.Parameters))
	copy(params, p.module.Parameters)
	return ModuleTree{Leaf(Module{Name: p.module.Name, Parameters: params})}, nil
}

func (p *IdentityProduction) String() string {
	return fmt.Sprintf("%s -> %s", p.module, p.module)
}
