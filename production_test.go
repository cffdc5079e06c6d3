package lsystem

import (
	"errors"
	"testing"
)

func stochastic(probabilities ...float64) (*StochasticProduction, error) {
	pred := &Predecessor{Module: ModuleTemplate{Name: "F"}}
	successors := make([]StochasticSuccessor, len(probabilities))
	for i, p := range probabilities {
		name := string(rune('A' + i))
		successors[i] = StochasticSuccessor{
			Probability: p,
			Successor:   NewSuccessor(NewTree(ModuleTemplate{Name: name})),
		}
	}
	return NewStochasticProduction(pred, nil, successors)
}

func TestStochasticProbabilities(t *testing.T) {
	tests := []struct {
		name          string
		probabilities []float64
		target        error
	}{
		{"halves", []float64{0.5, 0.5}, nil},
		{"decimal tenths", []float64{0.1, 0.2, 0.7}, nil},
		{"ten tenths", []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}, nil},
		{"single", []float64{1}, nil},
		{"short", []float64{0.5, 0.4}, ErrProbabilitySum},
		{"over", []float64{0.6, 0.6}, ErrProbabilitySum},
		{"zero", []float64{0, 1}, ErrProbabilityRange},
		{"negative", []float64{1.5, -0.5}, ErrProbabilityRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stochastic(tt.probabilities...)
			if tt.target == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}

	if _, err := stochastic(); err == nil {
		t.Error("Expected an error for a production without successors")
	}
}

func TestStochasticChoose(t *testing.T) {
	prod, err := stochastic(0.25, 0.75)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		r    float64
		want string
	}{
		{0, "A"},
		{0.2499, "A"},
		{0.25, "B"},
		{0.999, "B"},
	}
	for _, tt := range tests {
		if got := prod.Choose(tt.r).String(); got != tt.want {
			t.Errorf("Choose(%v): expected %s, got %s", tt.r, tt.want, got)
		}
	}
}

func TestAlphabet(t *testing.T) {
	alphabet, err := NewAlphabet(ModuleDefinition{Name: "A"}, ModuleDefinition{Name: "A", Parameters: []string{"x"}})
	if err != nil {
		t.Fatalf("Same name with another arity should be distinct: %v", err)
	}
	if !alphabet.Has(ModuleKey{Name: "A", Arity: 1}) || alphabet.Has(ModuleKey{Name: "A", Arity: 2}) {
		t.Error("Has does not distinguish arities")
	}
	if !alphabet.HasName("A") || alphabet.HasName("B") {
		t.Error("HasName gave a wrong answer")
	}

	err = alphabet.Add(ModuleDefinition{Name: "A"})
	var constructionErr *ConstructionError
	if !errors.As(err, &constructionErr) || !errors.Is(err, ErrDuplicateModule) {
		t.Errorf("Expected a ConstructionError wrapping ErrDuplicateModule, got %v", err)
	}
	if alphabet.Len() != 2 {
		t.Errorf("A rejected definition changed the alphabet: %d", alphabet.Len())
	}
	if alphabet.String() != "A, A(x)" {
		t.Errorf("Expected \"A, A(x)\", got %q", alphabet.String())
	}
}

func TestModuleEquality(t *testing.T) {
	if !NewModule("A", 1).Equals(NewModule("A", 2)) {
		t.Error("Modules with the same name and arity should be equal")
	}
	if NewModule("A", 1).Equals(NewModule("A")) {
		t.Error("Modules with another arity should differ")
	}
	if NewModule("F", 1.5, 2).String() != "F(1.5,2)" {
		t.Errorf("Unexpected string %q", NewModule("F", 1.5, 2).String())
	}
}

func TestIdentityProduction(t *testing.T) {
	m := NewModule("B", 3, 4)
	prod := NewIdentityProduction(m)

	tree, err := prod.Follow(nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tree.String() != "B(3,4)" {
		t.Errorf("Expected B(3,4), got %q", tree)
	}
	if !prod.Predecessor().Matches(m) {
		t.Error("Identity predecessor does not match its module")
	}
	if prod.Condition() != nil {
		t.Error("Identity production has a condition")
	}
}

func TestSuccessorApply(t *testing.T) {
	x, err := CompileNumerical("x * 2", "x", "y")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	y, _ := CompileNumerical("y", "x", "y")

	inner := NewTree(ModuleTemplate{Name: "B", Parameters: []*NumericalExpression{y}})
	tree := TemplateTree{Leaf(ModuleTemplate{Name: "A", Parameters: []*NumericalExpression{x}}), Branch(inner)}

	out, err := NewSuccessor(tree).Apply([]float64{3, 7})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.String() != "A(6) [ B(7) ]" {
		t.Errorf("Expected A(6) [ B(7) ], got %q", out)
	}

	if _, err := NewSuccessor(tree).Apply([]float64{3}); err == nil {
		t.Error("Expected an error for missing actual parameters")
	}
}
