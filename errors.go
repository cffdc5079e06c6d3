package lsystem

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateModule  = errors.New("duplicate module")
	ErrUndeclaredModule = errors.New("undeclared module")
	ErrProbabilityRange = errors.New("probability must be in (0, 1]")
	ErrProbabilitySum   = errors.New("probabilities must add up to exactly 1")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrAliasChain       = errors.New("alias refers to another alias")
	ErrDerivationLimit  = errors.New("derivation grew beyond the module limit")
	ErrNonFinite        = errors.New("value is not a finite number")
)

// LexicalError reports a malformed token
type LexicalError struct {
	Message  string
	Position SourcePosition
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Position)
}

// ParseError reports a grammar violation. Either Message or the
// Expected/Found pair describes the problem.
type ParseError struct {
	Message  string
	Expected string
	Found    string
	Position SourcePosition
	Err      error
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s at %s", e.Message, e.Position)
	}
	return fmt.Sprintf("expected %s, found %s at %s", e.Expected, e.Found, e.Position)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConstructionError is raised while building model values such as an
// alphabet or a stochastic production.
type ConstructionError struct {
	Message string
	Err     error
}

func (e *ConstructionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// EvaluationError is returned when an expression cannot be evaluated
type EvaluationError struct {
	Expression string
	Message    string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate '%s': %s", e.Expression, e.Message)
}

// ExecutionError reports a failure while interpreting a module tree
type ExecutionError struct {
	Command string
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("Error executing command '%s': %s", e.Command, msg)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ErrorPosition extracts the source position carried by a lexical or parse
// error, if any.
func ErrorPosition(err error) (SourcePosition, bool) {
	var lexErr *LexicalError
	if errors.As(err, &lexErr) {
		return lexErr.Position, true
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Position, true
	}
	return SourcePosition{}, false
}
