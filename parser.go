package lsystem

import (
	"errors"
	"fmt"
	"math"
)

type symbolScope int

const (
	scopeModule symbolScope = iota
)

type symbolKey struct {
	scope symbolScope
	name  string
}

type symbol struct {
	definition ModuleDefinition
	position   SourcePosition
}

// exprScope binds identifiers in an expression to formal parameter slots
type exprScope struct {
	formals []string
	index   map[string]int
}

func newExprScope(formals []string) *exprScope {
	s := &exprScope{formals: formals, index: make(map[string]int, len(formals))}
	for i, name := range formals {
		s.index[name] = i
	}
	return s
}

// patternModule is a predecessor module before its formals are resolved
type patternModule struct {
	name       string
	parameters []string
	position   SourcePosition
}

// Parser builds an LSystem from a definition with recursive descent over
// the token stream.
type Parser struct {
	lexer    *Lexer
	config   *Config
	logger   *Logger
	symbols  map[symbolKey]symbol
	alphabet *Alphabet
	// positions of the module names read since the last reset, in order
	modulePositions []SourcePosition
	// input offsets where '(' does not open a parenthesized condition
	failedGroups map[int]bool
}

// NewParser creates a parser over source. A nil config uses defaults.
func NewParser(source string, config *Config) *Parser {
	if config == nil {
		config = DefaultConfig()
	}
	return &Parser{
		lexer:   NewLexer(source, config.Filename),
		config:  config,
		logger:  config.logger(),
		symbols: make(map[symbolKey]symbol),
	}
}

// Parse parses a definition with the default configuration
func Parse(source string) (*LSystem, error) {
	return NewParser(source, nil).Parse()
}

// ParseWithConfig parses a definition with the given configuration
func ParseWithConfig(source string, config *Config) (*LSystem, error) {
	return NewParser(source, config).Parse()
}

// Lines returns the source lines for error reporting
func (p *Parser) Lines() []string {
	return p.lexer.Lines()
}

// Parse consumes the whole definition. There is no partial result: either
// the complete model is returned or the first error.
func (p *Parser) Parse() (*LSystem, error) {
	ls, err := p.parseLSystem()
	if err != nil {
		p.logger.DebugCat(CatParse, "Parse failed: %v", err)
		return nil, err
	}
	p.logger.DebugCat(CatParse, "Parsed %d modules and %d productions", ls.alphabet.Len(), len(ls.productions))
	return ls, nil
}

// CompileNumerical compiles a standalone numeric expression over formals
func CompileNumerical(source string, formals ...string) (*NumericalExpression, error) {
	p := NewParser(source, nil)
	expr, err := p.parseNumerical(newExprScope(formals))
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEOF, "", ContextDefault); err != nil {
		return nil, err
	}
	return expr, nil
}

// CompileBoolean compiles a standalone condition over formals
func CompileBoolean(source string, formals ...string) (*BooleanExpression, error) {
	p := NewParser(source, nil)
	expr, err := p.parseBoolean(newExprScope(formals))
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEOF, "", ContextDefault); err != nil {
		return nil, err
	}
	return expr, nil
}

// Token helpers

func (p *Parser) peek(ctx LexContext) (Token, error) {
	return p.lexer.LookAhead(1, ctx)
}

func (p *Parser) check(tt TokenType, lexeme string, ctx LexContext) (bool, error) {
	tok, err := p.peek(ctx)
	if err != nil {
		return false, err
	}
	return tok.Is(tt, lexeme), nil
}

func (p *Parser) expect(tt TokenType, lexeme string, ctx LexContext) (Token, error) {
	tok, err := p.lexer.NextToken(ctx)
	if err != nil {
		return tok, err
	}
	if !tok.Is(tt, lexeme) {
		expected := tt.String()
		if lexeme != "" {
			expected = fmt.Sprintf("'%s'", lexeme)
		}
		return tok, &ParseError{Expected: expected, Found: tok.String(), Position: tok.Position}
	}
	return tok, nil
}

// skip consumes the next token when it matches
func (p *Parser) skip(tt TokenType, lexeme string, ctx LexContext) (bool, error) {
	ok, err := p.check(tt, lexeme, ctx)
	if err != nil || !ok {
		return false, err
	}
	_, err = p.lexer.NextToken(ctx)
	return err == nil, err
}

// atModule reports whether a module name follows. A symbolic name such as
// '-' is not a module when it starts the '->' operator.
func (p *Parser) atModule() (bool, error) {
	tok, err := p.peek(ContextModuleName)
	if err != nil || tok.Type != TokenIdentifier {
		return false, err
	}
	if tok.Lexeme != "-" {
		return true, nil
	}
	arrow, err := p.check(TokenOperator, "->", ContextDefault)
	if err != nil {
		return false, err
	}
	return !arrow, nil
}

// Symbol table

func (p *Parser) install(def ModuleDefinition, pos SourcePosition) error {
	key := symbolKey{scope: scopeModule, name: def.Name}
	if prev, exists := p.symbols[key]; exists {
		return &ParseError{
			Message:  fmt.Sprintf("module '%s' is already declared at %s", def.Name, prev.position),
			Position: pos,
			Err:      ErrDuplicateModule,
		}
	}
	p.symbols[key] = symbol{definition: def, position: pos}
	return nil
}

func (p *Parser) lookup(tok Token, arity int) (ModuleDefinition, error) {
	sym, ok := p.symbols[symbolKey{scope: scopeModule, name: tok.Lexeme}]
	if !ok {
		return ModuleDefinition{}, &ParseError{
			Message:  fmt.Sprintf("module '%s' is not in the alphabet", tok.Lexeme),
			Position: tok.Position,
			Err:      ErrUndeclaredModule,
		}
	}
	if len(sym.definition.Parameters) != arity {
		return ModuleDefinition{}, &ParseError{
			Message:  fmt.Sprintf("module '%s' takes %d parameters, got %d", tok.Lexeme, len(sym.definition.Parameters), arity),
			Position: tok.Position,
		}
	}
	return sym.definition, nil
}

// Grammar

func (p *Parser) parseLSystem() (*LSystem, error) {
	if _, err := p.expect(TokenKeyword, "lsystem", ContextDefault); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenBracketOpen, "(", ContextDefault); err != nil {
		return nil, err
	}
	if err := p.parseAlphabet(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDelimiter, ",", ContextDefault); err != nil {
		return nil, err
	}
	axiom, err := p.parseAxiom()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDelimiter, ",", ContextDefault); err != nil {
		return nil, err
	}
	productions, err := p.parseProductions()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenBracketClose, ")", ContextDefault); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEOF, "", ContextDefault); err != nil {
		return nil, err
	}
	return New(p.alphabet, axiom, productions, p.config)
}

func (p *Parser) parseAlphabet() error {
	if _, err := p.expect(TokenKeyword, "alphabet", ContextDefault); err != nil {
		return err
	}
	if _, err := p.expect(TokenDelimiter, ":", ContextDefault); err != nil {
		return err
	}
	if _, err := p.expect(TokenBracketOpen, "{", ContextDefault); err != nil {
		return err
	}

	p.alphabet = &Alphabet{}
	empty, err := p.check(TokenBracketClose, "}", ContextDefault)
	if err != nil {
		return err
	}
	for !empty {
		if err := p.parseModuleDefinition(); err != nil {
			return err
		}
		more, err := p.skip(TokenDelimiter, ",", ContextDefault)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	_, err = p.expect(TokenBracketClose, "}", ContextDefault)
	return err
}

func (p *Parser) parseModuleDefinition() error {
	nameTok, err := p.expect(TokenIdentifier, "", ContextModuleName)
	if err != nil {
		return err
	}
	def := ModuleDefinition{Name: nameTok.Lexeme}

	params, err := p.parseFormalList()
	if err != nil {
		return err
	}
	def.Parameters = params

	if err := p.install(def, nameTok.Position); err != nil {
		return err
	}
	if err := p.alphabet.Add(def); err != nil {
		return &ParseError{Message: err.Error(), Position: nameTok.Position, Err: err}
	}
	p.logger.TraceCat(CatParse, "Declared module %s", def)
	return nil
}

// parseFormalList parses an optional '(' IDENT (',' IDENT)* ')'
func (p *Parser) parseFormalList() ([]string, error) {
	open, err := p.skip(TokenBracketOpen, "(", ContextDefault)
	if err != nil || !open {
		return nil, err
	}
	var names []string
	closing, err := p.skip(TokenBracketClose, ")", ContextDefault)
	if err != nil || closing {
		return names, err
	}
	for {
		tok, err := p.expect(TokenIdentifier, "", ContextDefault)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			if n == tok.Lexeme {
				return nil, &ParseError{
					Message:  fmt.Sprintf("parameter '%s' is declared twice", tok.Lexeme),
					Position: tok.Position,
				}
			}
		}
		names = append(names, tok.Lexeme)
		more, err := p.skip(TokenDelimiter, ",", ContextDefault)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if _, err := p.expect(TokenBracketClose, ")", ContextDefault); err != nil {
		return nil, err
	}
	return names, nil
}

func (p *Parser) parseAxiom() (ModuleTree, error) {
	if _, err := p.expect(TokenKeyword, "axiom", ContextDefault); err != nil {
		return nil, err
	}
	tok, err := p.expect(TokenDelimiter, ":", ContextDefault)
	if err != nil {
		return nil, err
	}
	p.modulePositions = p.modulePositions[:0]
	tree, err := p.parseSuccessor(newExprScope(nil))
	if err != nil {
		return nil, err
	}
	axiom, err := instantiate(tree, nil)
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid axiom: %v", err), Position: tok.Position, Err: err}
	}
	for i, m := range axiom.Modules() {
		for j, v := range m.Parameters {
			if !math.IsInf(v, 0) && !math.IsNaN(v) {
				continue
			}
			pos := tok.Position
			if i < len(p.modulePositions) {
				pos = p.modulePositions[i]
			}
			return nil, &ParseError{
				Message:  fmt.Sprintf("parameter %d of axiom module '%s' evaluates to %v", j+1, m.Name, v),
				Position: pos,
				Err:      ErrNonFinite,
			}
		}
	}
	return axiom, nil
}

// parseSuccessor parses modules and bracketed branches until neither follows
func (p *Parser) parseSuccessor(scope *exprScope) (TemplateTree, error) {
	tree := TemplateTree{}
	for {
		branch, err := p.check(TokenBracketOpen, "[", ContextModuleName)
		if err != nil {
			return nil, err
		}
		if branch {
			if _, err := p.lexer.NextToken(ContextModuleName); err != nil {
				return nil, err
			}
			sub, err := p.parseSuccessor(scope)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenBracketClose, "]", ContextDefault); err != nil {
				return nil, err
			}
			tree = append(tree, Branch(sub))
			continue
		}

		module, err := p.atModule()
		if err != nil {
			return nil, err
		}
		if !module {
			return tree, nil
		}
		tmpl, err := p.parseActualModule(scope)
		if err != nil {
			return nil, err
		}
		tree = append(tree, Leaf(tmpl))
	}
}

func (p *Parser) parseActualModule(scope *exprScope) (ModuleTemplate, error) {
	nameTok, err := p.expect(TokenIdentifier, "", ContextModuleName)
	if err != nil {
		return ModuleTemplate{}, err
	}
	tmpl := ModuleTemplate{Name: nameTok.Lexeme}
	p.modulePositions = append(p.modulePositions, nameTok.Position)

	open, err := p.skip(TokenBracketOpen, "(", ContextDefault)
	if err != nil {
		return ModuleTemplate{}, err
	}
	if open {
		closing, err := p.skip(TokenBracketClose, ")", ContextDefault)
		if err != nil {
			return ModuleTemplate{}, err
		}
		for !closing {
			expr, err := p.parseNumerical(scope)
			if err != nil {
				return ModuleTemplate{}, err
			}
			tmpl.Parameters = append(tmpl.Parameters, expr)
			more, err := p.skip(TokenDelimiter, ",", ContextDefault)
			if err != nil {
				return ModuleTemplate{}, err
			}
			if !more {
				if _, err := p.expect(TokenBracketClose, ")", ContextDefault); err != nil {
					return ModuleTemplate{}, err
				}
				break
			}
		}
	}

	if _, err := p.lookup(nameTok, len(tmpl.Parameters)); err != nil {
		return ModuleTemplate{}, err
	}
	return tmpl, nil
}

func (p *Parser) parseProductions() ([]Production, error) {
	if _, err := p.expect(TokenKeyword, "productions", ContextDefault); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDelimiter, ":", ContextDefault); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenBracketOpen, "{", ContextDefault); err != nil {
		return nil, err
	}

	var productions []Production
	empty, err := p.check(TokenBracketClose, "}", ContextDefault)
	if err != nil {
		return nil, err
	}
	for !empty {
		prod, err := p.parseProduction()
		if err != nil {
			return nil, err
		}
		p.logger.TraceCat(CatParse, "Parsed production %s", prod)
		productions = append(productions, prod)
		more, err := p.skip(TokenDelimiter, ",", ContextDefault)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}

	if _, err := p.expect(TokenBracketClose, "}", ContextDefault); err != nil {
		return nil, err
	}
	return productions, nil
}

func (p *Parser) parseProduction() (Production, error) {
	pred, scope, err := p.parsePredecessor()
	if err != nil {
		return nil, err
	}

	var condition *BooleanExpression
	colon, err := p.skip(TokenDelimiter, ":", ContextDefault)
	if err != nil {
		return nil, err
	}
	if colon {
		block, err := p.check(TokenBracketOpen, "{", ContextDefault)
		if err != nil {
			return nil, err
		}
		if !block {
			if condition, err = p.parseBoolean(scope); err != nil {
				return nil, err
			}
		}
	}

	tok, err := p.lexer.NextToken(ContextDefault)
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Is(TokenBracketOpen, "{"):
		return p.parseStochasticBlock(pred, condition, scope, tok.Position)
	case tok.Is(TokenOperator, "->"):
		tree, err := p.parseSuccessor(scope)
		if err != nil {
			return nil, err
		}
		if condition != nil {
			return NewConditionalProduction(pred, condition, NewSuccessor(tree)), nil
		}
		return NewPlainProduction(pred, NewSuccessor(tree)), nil
	default:
		return nil, &ParseError{Expected: "'->' or '{'", Found: tok.String(), Position: tok.Position}
	}
}

func (p *Parser) parseStochasticBlock(pred *Predecessor, condition *BooleanExpression, scope *exprScope, pos SourcePosition) (Production, error) {
	var successors []StochasticSuccessor
	for {
		number, err := p.check(TokenNumber, "", ContextDefault)
		if err != nil {
			return nil, err
		}
		if !number {
			break
		}
		probTok, _ := p.lexer.NextToken(ContextDefault)
		if _, err := p.expect(TokenOperator, "->", ContextDefault); err != nil {
			return nil, err
		}
		tree, err := p.parseSuccessor(scope)
		if err != nil {
			return nil, err
		}
		successors = append(successors, StochasticSuccessor{Probability: probTok.Number, Successor: NewSuccessor(tree)})
		if _, err := p.skip(TokenDelimiter, ",", ContextDefault); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenBracketClose, "}", ContextDefault); err != nil {
		return nil, err
	}

	prod, err := NewStochasticProduction(pred, condition, successors)
	if err != nil {
		return nil, &ParseError{Message: err.Error(), Position: pos, Err: err}
	}
	return prod, nil
}

// parsePredecessor parses [left '<'] module ['>' right]. Contexts are
// sequences of modules; the parameters they name become the formal
// parameters of the production.
func (p *Parser) parsePredecessor() (*Predecessor, *exprScope, error) {
	first, err := p.parsePatternSequence()
	if err != nil {
		return nil, nil, err
	}

	var left []patternModule
	strict := first[0]
	open, err := p.check(TokenBracketOpen, "<", ContextPredecessor)
	if err != nil {
		return nil, nil, err
	}
	if open {
		if _, err := p.lexer.NextToken(ContextPredecessor); err != nil {
			return nil, nil, err
		}
		left = first
		if strict, err = p.parsePatternModule(); err != nil {
			return nil, nil, err
		}
	} else if len(first) > 1 {
		tok, _ := p.peek(ContextPredecessor)
		return nil, nil, &ParseError{Expected: "'<'", Found: tok.String(), Position: tok.Position}
	}

	var right []patternModule
	closing, err := p.check(TokenBracketClose, ">", ContextPredecessor)
	if err != nil {
		return nil, nil, err
	}
	if closing {
		if _, err := p.lexer.NextToken(ContextPredecessor); err != nil {
			return nil, nil, err
		}
		if right, err = p.parsePatternSequence(); err != nil {
			return nil, nil, err
		}
	}

	var formals []string
	seen := make(map[string]bool)
	for _, group := range [][]patternModule{left, {strict}, right} {
		for _, m := range group {
			for _, name := range m.parameters {
				if seen[name] {
					return nil, nil, &ParseError{
						Message:  fmt.Sprintf("parameter '%s' is bound twice in the predecessor", name),
						Position: m.position,
					}
				}
				seen[name] = true
				formals = append(formals, name)
			}
		}
	}

	scope := newExprScope(formals)
	pred := &Predecessor{
		Module:       scope.template(strict),
		LeftContext:  scope.templates(left),
		RightContext: scope.templates(right),
	}
	return pred, scope, nil
}

func (p *Parser) parsePatternSequence() ([]patternModule, error) {
	first, err := p.parsePatternModule()
	if err != nil {
		return nil, err
	}
	seq := []patternModule{first}
	for {
		more, err := p.atModule()
		if err != nil {
			return nil, err
		}
		if !more {
			return seq, nil
		}
		m, err := p.parsePatternModule()
		if err != nil {
			return nil, err
		}
		seq = append(seq, m)
	}
}

// parsePatternModule parses a predecessor module whose parameters must be
// plain identifiers.
func (p *Parser) parsePatternModule() (patternModule, error) {
	nameTok, err := p.expect(TokenIdentifier, "", ContextModuleName)
	if err != nil {
		return patternModule{}, err
	}
	params, err := p.parseFormalList()
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) && parseErr.Message == "" {
			parseErr.Message = fmt.Sprintf("predecessor parameters must be names, found %s", parseErr.Found)
		}
		return patternModule{}, err
	}
	if _, err := p.lookup(nameTok, len(params)); err != nil {
		return patternModule{}, err
	}
	return patternModule{name: nameTok.Lexeme, parameters: params, position: nameTok.Position}, nil
}

func (s *exprScope) template(m patternModule) ModuleTemplate {
	tmpl := ModuleTemplate{Name: m.name}
	for _, name := range m.parameters {
		tmpl.Parameters = append(tmpl.Parameters, &NumericalExpression{
			formals:   s.formals,
			variables: []string{name},
			root:      numVariable{name: name, index: s.index[name]},
		})
	}
	return tmpl
}

func (s *exprScope) templates(ms []patternModule) TemplateTree {
	if len(ms) == 0 {
		return nil
	}
	tree := make(TemplateTree, len(ms))
	for i, m := range ms {
		tree[i] = Leaf(s.template(m))
	}
	return tree
}

// Numeric expressions

func (p *Parser) parseNumerical(scope *exprScope) (*NumericalExpression, error) {
	root, err := p.parseExpr(scope)
	if err != nil {
		return nil, err
	}
	return &NumericalExpression{formals: scope.formals, variables: numVariables(root, nil), root: root}, nil
}

func (p *Parser) parseExpr(scope *exprScope) (numNode, error) {
	left, err := p.parseTerm(scope)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek(ContextDefault)
		if err != nil {
			return nil, err
		}
		if !tok.Is(TokenOperator, "+") && !tok.Is(TokenOperator, "-") {
			return left, nil
		}
		p.lexer.NextToken(ContextDefault)
		right, err := p.parseTerm(scope)
		if err != nil {
			return nil, err
		}
		left = numBinary{op: tok.Lexeme[0], left: left, right: right}
	}
}

func (p *Parser) parseTerm(scope *exprScope) (numNode, error) {
	left, err := p.parseFactor(scope)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.peek(ContextDefault)
		if err != nil {
			return nil, err
		}
		if !tok.Is(TokenOperator, "*") && !tok.Is(TokenOperator, "/") {
			return left, nil
		}
		p.lexer.NextToken(ContextDefault)
		right, err := p.parseFactor(scope)
		if err != nil {
			return nil, err
		}
		left = numBinary{op: tok.Lexeme[0], left: left, right: right}
	}
}

func (p *Parser) parseFactor(scope *exprScope) (numNode, error) {
	base, err := p.parseUnit(scope)
	if err != nil {
		return nil, err
	}
	power, err := p.skip(TokenOperator, "^", ContextDefault)
	if err != nil {
		return nil, err
	}
	if !power {
		return base, nil
	}
	exponent, err := p.parseFactor(scope)
	if err != nil {
		return nil, err
	}
	return numBinary{op: '^', left: base, right: exponent}, nil
}

func (p *Parser) parseUnit(scope *exprScope) (numNode, error) {
	tok, err := p.lexer.NextToken(ContextDefault)
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Type == TokenIdentifier:
		i, ok := scope.index[tok.Lexeme]
		if !ok {
			return nil, &ParseError{
				Message:  fmt.Sprintf("unknown parameter '%s'", tok.Lexeme),
				Position: tok.Position,
			}
		}
		return numVariable{name: tok.Lexeme, index: i}, nil
	case tok.Type == TokenNumber:
		return numLiteral{value: tok.Number}, nil
	case tok.Is(TokenOperator, "-"):
		operand, err := p.parseUnit(scope)
		if err != nil {
			return nil, err
		}
		return numNegate{operand: operand}, nil
	case tok.Is(TokenBracketOpen, "("):
		inner, err := p.parseExpr(scope)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenBracketClose, ")", ContextDefault); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, &ParseError{Expected: "a numerical expression", Found: tok.String(), Position: tok.Position}
}

// Boolean expressions

func (p *Parser) parseBoolean(scope *exprScope) (*BooleanExpression, error) {
	root, err := p.parseBoolExpr(scope)
	if err != nil {
		return nil, err
	}
	return &BooleanExpression{formals: scope.formals, variables: boolVariables(root, nil), root: root}, nil
}

func (p *Parser) parseBoolExpr(scope *exprScope) (boolNode, error) {
	left, err := p.parseBoolTerm(scope)
	if err != nil {
		return nil, err
	}
	for {
		or, err := p.skip(TokenKeyword, "or", ContextDefault)
		if err != nil {
			return nil, err
		}
		if !or {
			return left, nil
		}
		right, err := p.parseBoolTerm(scope)
		if err != nil {
			return nil, err
		}
		left = boolBinary{op: "or", left: left, right: right}
	}
}

func (p *Parser) parseBoolTerm(scope *exprScope) (boolNode, error) {
	left, err := p.parseBoolFactor(scope)
	if err != nil {
		return nil, err
	}
	for {
		and, err := p.skip(TokenKeyword, "and", ContextDefault)
		if err != nil {
			return nil, err
		}
		if !and {
			return left, nil
		}
		right, err := p.parseBoolFactor(scope)
		if err != nil {
			return nil, err
		}
		left = boolBinary{op: "and", left: left, right: right}
	}
}

func (p *Parser) parseBoolFactor(scope *exprScope) (boolNode, error) {
	tok, err := p.peek(ContextDefault)
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Is(TokenKeyword, "true"), tok.Is(TokenKeyword, "false"):
		p.lexer.NextToken(ContextDefault)
		return boolLiteral{value: tok.Lexeme == "true"}, nil
	case tok.Is(TokenKeyword, "not"):
		p.lexer.NextToken(ContextDefault)
		operand, err := p.parseBoolExpr(scope)
		if err != nil {
			return nil, err
		}
		return boolNot{operand: operand}, nil
	case tok.Is(TokenBracketOpen, "("):
		// Either a parenthesized condition or a comparison whose left
		// operand starts with '('. Try the condition first, at most once
		// per position so nested parentheses stay polynomial.
		saved := p.lexer.mark()
		if p.failedGroups[saved.offset] {
			break
		}
		p.lexer.NextToken(ContextDefault)
		if inner, err := p.parseBoolExpr(scope); err == nil {
			if _, err := p.expect(TokenBracketClose, ")", ContextDefault); err == nil {
				return inner, nil
			}
		}
		p.lexer.reset(saved)
		if p.failedGroups == nil {
			p.failedGroups = make(map[int]bool)
		}
		p.failedGroups[saved.offset] = true
	}
	return p.parseComparison(scope)
}

func (p *Parser) parseComparison(scope *exprScope) (boolNode, error) {
	left, err := p.parseExpr(scope)
	if err != nil {
		return nil, err
	}
	tok, err := p.lexer.NextToken(ContextDefault)
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenOperator || !isRelational(tok.Lexeme) {
		return nil, &ParseError{Expected: "a comparison operator", Found: tok.String(), Position: tok.Position}
	}
	right, err := p.parseExpr(scope)
	if err != nil {
		return nil, err
	}
	return comparison{op: tok.Lexeme, left: left, right: right}, nil
}

func numVariables(n numNode, acc []string) []string {
	switch v := n.(type) {
	case numVariable:
		for _, name := range acc {
			if name == v.name {
				return acc
			}
		}
		return append(acc, v.name)
	case numNegate:
		return numVariables(v.operand, acc)
	case numBinary:
		return numVariables(v.right, numVariables(v.left, acc))
	}
	return acc
}

func boolVariables(n boolNode, acc []string) []string {
	switch v := n.(type) {
	case boolNot:
		return boolVariables(v.operand, acc)
	case boolBinary:
		return boolVariables(v.right, boolVariables(v.left, acc))
	case comparison:
		return numVariables(v.right, numVariables(v.left, acc))
	}
	return acc
}
