package lsystem

import (
	"fmt"
	"strings"
)

// Alphabet is the ordered set of module definitions of an L-system
type Alphabet struct {
	definitions []ModuleDefinition
	index       map[ModuleKey]int
}

// NewAlphabet builds an alphabet, failing on the first duplicate
func NewAlphabet(definitions ...ModuleDefinition) (*Alphabet, error) {
	a := &Alphabet{index: make(map[ModuleKey]int)}
	for _, d := range definitions {
		if err := a.Add(d); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Add appends a definition. Adding a definition with the same name and
// arity twice is an error; the same name with another arity is a distinct
// module.
func (a *Alphabet) Add(d ModuleDefinition) error {
	if a.index == nil {
		a.index = make(map[ModuleKey]int)
	}
	if _, exists := a.index[d.Key()]; exists {
		return &ConstructionError{
			Message: fmt.Sprintf("alphabet already has a module '%s'", d),
			Err:     ErrDuplicateModule,
		}
	}
	a.index[d.Key()] = len(a.definitions)
	a.definitions = append(a.definitions, d)
	return nil
}

// Has reports whether a module with this name and arity is declared
func (a *Alphabet) Has(key ModuleKey) bool {
	_, ok := a.index[key]
	return ok
}

// Get returns the definition for a name and arity
func (a *Alphabet) Get(key ModuleKey) (ModuleDefinition, bool) {
	i, ok := a.index[key]
	if !ok {
		return ModuleDefinition{}, false
	}
	return a.definitions[i], true
}

// HasName reports whether any arity of name is declared
func (a *Alphabet) HasName(name string) bool {
	for _, d := range a.definitions {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Definitions returns the definitions in declaration order
func (a *Alphabet) Definitions() []ModuleDefinition {
	out := make([]ModuleDefinition, len(a.definitions))
	copy(out, a.definitions)
	return out
}

// Len returns the number of definitions
func (a *Alphabet) Len() int {
	return len(a.definitions)
}

func (a *Alphabet) String() string {
	parts := make([]string, len(a.definitions))
	for i, d := range a.definitions {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}
