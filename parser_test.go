package lsystem

import (
	"errors"
	"strings"
	"testing"
)

const fibonacci = `lsystem(
	alphabet: {A, B},
	axiom: A,
	productions: {
		A -> A B,
		B -> A
	}
)`

func mustParse(t *testing.T, source string) *LSystem {
	t.Helper()
	ls, err := Parse(source)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	return ls
}

func TestParseFibonacci(t *testing.T) {
	ls := mustParse(t, fibonacci)

	if ls.Alphabet().Len() != 2 {
		t.Errorf("Expected 2 modules in the alphabet, got %d", ls.Alphabet().Len())
	}
	if ls.Axiom().String() != "A" {
		t.Errorf("Expected axiom A, got %q", ls.Axiom())
	}
	if len(ls.Productions()) != 2 {
		t.Errorf("Expected 2 productions, got %d", len(ls.Productions()))
	}

	want := "lsystem(alphabet: {A, B}, axiom: A, productions: {A -> A B, B -> A})"
	if got := ls.String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"fibonacci", fibonacci},
		{"parametric", `lsystem(alphabet: {A(x), B(x, y), F}, axiom: A(1) B(2, 3),
			productions: {A(x): x < 5 -> A(x + 1) F, A(x): x >= 5 -> F, B(a, b) -> B(b, a)})`},
		{"stochastic", `lsystem(alphabet: {F, +, -}, axiom: F,
			productions: {F {0.5 -> F + F, 0.5 -> F - F}})`},
		{"conditional stochastic", `lsystem(alphabet: {A(n), B}, axiom: A(0),
			productions: {A(n): n < 3 {0.3 -> A(n + 1) B, 0.7 -> A(n + 1)}})`},
		{"context", `lsystem(alphabet: {A, B, C, X}, axiom: B A C,
			productions: {B < A -> X, A > C -> B, B < A > C -> C})`},
		{"context sequence", `lsystem(alphabet: {A(x), B, C(y)}, axiom: B B A(1) C(2),
			productions: {B B < A(x) > C(y) -> A(x + y)})`},
		{"branches", `lsystem(alphabet: {F, +, -}, axiom: F [ + F ] [ ] F,
			productions: {F -> F [ - F [ + F ] ] F})`},
		{"empty", `lsystem(alphabet: {}, axiom: , productions: {})`},
		{"large axiom values", `lsystem(alphabet: {A(x)}, axiom: A(1e300 * 10) A(-2.5e-7), productions: {})`},
		{"symbolic names", `lsystem(alphabet: {A, &, |, $}, axiom: $ & A |,
			productions: {& < A > | -> A |, $ -> $ &})`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := mustParse(t, tt.source)
			printed := first.String()

			second, err := Parse(printed)
			if err != nil {
				t.Fatalf("Printed definition does not parse: %v\n%s", err, printed)
			}
			if second.String() != printed {
				t.Errorf("Round trip changed the definition:\n%s\n%s", printed, second.String())
			}
		})
	}
}

func TestParseAxiomEvaluated(t *testing.T) {
	ls := mustParse(t, `lsystem(alphabet: {F(x)}, axiom: F(2 * 3 + 1) F(-1), productions: {})`)
	if got := ls.Axiom().String(); got != "F(7) F(-1)" {
		t.Errorf("Expected F(7) F(-1), got %q", got)
	}
}

func TestParseComments(t *testing.T) {
	ls := mustParse(t, `# Koch curve
lsystem(
	alphabet: {F, +, -},  # turtle vocabulary
	axiom: F,
	productions: {F -> F + F - - F + F}
) # trailing`)
	if len(ls.Productions()) != 1 {
		t.Errorf("Expected 1 production, got %d", len(ls.Productions()))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target error
	}{
		{"duplicate module", `lsystem(alphabet: {A, A}, axiom: A, productions: {})`, ErrDuplicateModule},
		{"duplicate name different arity", `lsystem(alphabet: {A, A(x)}, axiom: A, productions: {})`, ErrDuplicateModule},
		{"undeclared in axiom", `lsystem(alphabet: {A}, axiom: A B, productions: {})`, ErrUndeclaredModule},
		{"undeclared in successor", `lsystem(alphabet: {A}, axiom: A, productions: {A -> A C})`, ErrUndeclaredModule},
		{"probability sum", `lsystem(alphabet: {F}, axiom: F, productions: {F {0.5 -> F, 0.4 -> F F}})`, ErrProbabilitySum},
		{"probability range", `lsystem(alphabet: {F}, axiom: F, productions: {F {1.5 -> F, 0 -> F F}})`, ErrProbabilityRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Expected a ParseError, got %v", err)
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestParseGrammarErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"arity mismatch", `lsystem(alphabet: {F(x)}, axiom: F, productions: {})`},
		{"unknown parameter", `lsystem(alphabet: {F(x)}, axiom: F(1), productions: {F(x) -> F(y)})`},
		{"expression in predecessor", `lsystem(alphabet: {F(x)}, axiom: F(1), productions: {F(1) -> F(2)})`},
		{"parameter bound twice", `lsystem(alphabet: {F(x)}, axiom: F(1), productions: {F(x) < F(x) -> F(x)})`},
		{"parameter in axiom", `lsystem(alphabet: {F(x)}, axiom: F(x), productions: {})`},
		{"missing arrow", `lsystem(alphabet: {F}, axiom: F, productions: {F})`},
		{"sequence without context", `lsystem(alphabet: {F}, axiom: F, productions: {F F -> F})`},
		{"missing keyword", `lsystem(axiom: F, productions: {})`},
		{"missing close", `lsystem(alphabet: {A}, axiom: A, productions: {}`},
		{"trailing input", `lsystem(alphabet: {A}, axiom: A, productions: {}) A`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Expected a ParseError, got %v", err)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	source := "lsystem(alphabet: {A},\naxiom: A B, productions: {})"
	_, err := Parse(source)

	pos, ok := ErrorPosition(err)
	if !ok {
		t.Fatalf("Expected an error with a position, got %v", err)
	}
	if pos.Line != 2 || pos.Column != 10 {
		t.Errorf("Expected the error at 2:10, got %d:%d", pos.Line, pos.Column)
	}
}

func TestParseMissingClose(t *testing.T) {
	_, err := Parse(`lsystem(alphabet: {A}, axiom: A, productions: {}`)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected a ParseError, got %v", err)
	}
	if parseErr.Expected != "')'" || parseErr.Found != "end of input" {
		t.Errorf("Expected ')' / end of input, got %q / %q", parseErr.Expected, parseErr.Found)
	}
	if !strings.Contains(parseErr.Error(), "expected ')'") {
		t.Errorf("Unexpected message: %s", parseErr.Error())
	}
}

func TestParseLexicalError(t *testing.T) {
	_, err := Parse(`lsystem(alphabet: {F(x)}, axiom: F(1e), productions: {})`)
	var lexErr *LexicalError
	if !errors.As(err, &lexErr) {
		t.Fatalf("Expected a LexicalError, got %v", err)
	}
}

func TestParseSymbolicModules(t *testing.T) {
	ls := mustParse(t, `lsystem(alphabet: {F, +, -, /, *, &, |, $}, axiom: F + - / * & | $,
		productions: {+ -> -, - -> +})`)
	if ls.Alphabet().Len() != 8 {
		t.Errorf("Expected 8 modules, got %d", ls.Alphabet().Len())
	}
	tree, err := ls.Derive(1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := tree.String(); got != "F - + / * & | $" {
		t.Errorf("Expected F - + / * & | $, got %q", got)
	}
}

func TestParseSymbolicModulesInSequences(t *testing.T) {
	ls := mustParse(t, `lsystem(alphabet: {A, B, &, |, $}, axiom: $ & A |,
		productions: {& < A > | -> B, A -> A |, $ -> $ &})`)
	if got := ls.Axiom().String(); got != "$ & A |" {
		t.Errorf("Expected $ & A |, got %q", got)
	}
	tree, err := ls.Derive(1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := tree.String(); got != "$ & & B |" {
		t.Errorf("Expected $ & & B |, got %q", got)
	}

	for _, source := range []string{
		`lsystem(alphabet: {A, &}, axiom: A &, productions: {})`,
		`lsystem(alphabet: {A, |}, axiom: A, productions: {A -> A |})`,
		`lsystem(alphabet: {A, $}, axiom: $ A, productions: {$ > A -> A})`,
	} {
		if _, err := Parse(source); err != nil {
			t.Errorf("Unexpected error for %s: %v", source, err)
		}
	}
}

func TestParseNonFiniteAxiom(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"division by zero", "1/0"},
		{"overflow", "1e300*1e10"},
		{"not a number", "0/0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(`lsystem(alphabet: {F, A(x)}, axiom: F A(` + tt.value + `), productions: {})`)
			if !errors.Is(err, ErrNonFinite) {
				t.Fatalf("Expected ErrNonFinite, got %v", err)
			}
			pos, ok := ErrorPosition(err)
			if !ok {
				t.Fatalf("Expected a positioned error, got %v", err)
			}
			if pos.Line != 1 || pos.Column != 39 {
				t.Errorf("Expected position 1:39, got %d:%d", pos.Line, pos.Column)
			}
		})
	}
}

func TestParseFilenameInPosition(t *testing.T) {
	config := DefaultConfig()
	config.Filename = "plant.ls"
	_, err := ParseWithConfig(`lsystem(alphabet: {A}, axiom: B, productions: {})`, config)
	pos, ok := ErrorPosition(err)
	if !ok {
		t.Fatalf("Expected an error with a position, got %v", err)
	}
	if pos.Filename != "plant.ls" {
		t.Errorf("Expected filename plant.ls, got %q", pos.Filename)
	}
}

func TestParseNestedParentheses(t *testing.T) {
	const depth = 40
	open, closing := strings.Repeat("(", depth), strings.Repeat(")", depth)

	for _, condition := range []string{
		open + "x" + closing + " > 0",
		open + "x > 0" + closing,
		open + "x" + closing + " > 0 and " + open + "x < 2" + closing,
	} {
		ls := mustParse(t, `lsystem(alphabet: {A(x), B}, axiom: A(1), productions: {A(x): `+condition+` -> B})`)
		tree, err := ls.Derive(1)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got := tree.String(); got != "B" {
			t.Errorf("Expected B for %s, got %q", condition, got)
		}
	}
}
