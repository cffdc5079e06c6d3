package lsystem

import (
	"fmt"
	"strings"
)

// ModuleKey identifies a module by name and arity. Modules are matched by
// key, never by parameter values.
type ModuleKey struct {
	Name  string
	Arity int
}

func (k ModuleKey) String() string {
	return fmt.Sprintf("%s/%d", k.Name, k.Arity)
}

// Symbol is anything that can sit in a Tree leaf
type Symbol interface {
	Key() ModuleKey
	String() string
}

// Module is an actual module with evaluated parameters
type Module struct {
	Name       string
	Parameters []float64
}

// NewModule creates an actual module
func NewModule(name string, parameters ...float64) Module {
	return Module{Name: name, Parameters: parameters}
}

func (m Module) Key() ModuleKey {
	return ModuleKey{Name: m.Name, Arity: len(m.Parameters)}
}

// Equals compares name and arity only
func (m Module) Equals(other Module) bool {
	return m.Key() == other.Key()
}

func (m Module) String() string {
	if len(m.Parameters) == 0 {
		return m.Name
	}
	params := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		params[i] = formatNumber(p)
	}
	return fmt.Sprintf("%s(%s)", m.Name, strings.Join(params, ","))
}

// ModuleDefinition declares a module in an alphabet with named formal
// parameters.
type ModuleDefinition struct {
	Name       string
	Parameters []string
}

func (d ModuleDefinition) Key() ModuleKey {
	return ModuleKey{Name: d.Name, Arity: len(d.Parameters)}
}

// Accepts reports whether m is an instance of this definition
func (d ModuleDefinition) Accepts(m Module) bool {
	return d.Key() == m.Key()
}

func (d ModuleDefinition) String() string {
	if len(d.Parameters) == 0 {
		return d.Name
	}
	return fmt.Sprintf("%s(%s)", d.Name, strings.Join(d.Parameters, ","))
}

// ModuleTemplate is a module as written in a production: its parameters
// are expressions over the production's formal parameters.
type ModuleTemplate struct {
	Name       string
	Parameters []*NumericalExpression
}

func (t ModuleTemplate) Key() ModuleKey {
	return ModuleKey{Name: t.Name, Arity: len(t.Parameters)}
}

// Instantiate evaluates the parameter expressions against bindings
func (t ModuleTemplate) Instantiate(bindings []float64) (Module, error) {
	m := Module{Name: t.Name}
	if len(t.Parameters) == 0 {
		return m, nil
	}
	m.Parameters = make([]float64, len(t.Parameters))
	for i, expr := range t.Parameters {
		v, err := expr.Evaluate(bindings)
		if err != nil {
			return Module{}, fmt.Errorf("parameter %d of %s: %w", i+1, t.Name, err)
		}
		m.Parameters[i] = v
	}
	return m, nil
}

// FormalNames returns the parameter names when every parameter is a bare
// variable, as required in a predecessor.
func (t ModuleTemplate) FormalNames() ([]string, bool) {
	names := make([]string, len(t.Parameters))
	for i, expr := range t.Parameters {
		if expr == nil {
			return nil, false
		}
		v, ok := expr.root.(numVariable)
		if !ok {
			return nil, false
		}
		names[i] = v.name
	}
	return names, true
}

func (t ModuleTemplate) String() string {
	if len(t.Parameters) == 0 {
		return t.Name
	}
	params := make([]string, len(t.Parameters))
	for i, p := range t.Parameters {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(params, ","))
}
