package lsystem

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Binding strength used when printing expressions back in definition syntax
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precSum
	precProduct
	precPower
	precUnit
)

type numNode interface {
	evalNum(env []float64) float64
	precedence() int
	write(b *strings.Builder)
}

type boolNode interface {
	evalBool(env []float64) bool
	precedence() int
	write(b *strings.Builder)
}

type numLiteral struct {
	value float64
}

func (n numLiteral) evalNum([]float64) float64 { return n.value }
func (n numLiteral) precedence() int { return precUnit }
func (n numLiteral) write(b *strings.Builder) { b.WriteString(formatNumber(n.value)) }

type numVariable struct {
	name  string
	index int
}

func (n numVariable) evalNum(env []float64) float64 { return env[n.index] }
func (n numVariable) precedence() int { return precUnit }
func (n numVariable) write(b *strings.Builder) { b.WriteString(n.name) }

type numNegate struct {
	operand numNode
}

func (n numNegate) evalNum(env []float64) float64 { return -n.operand.evalNum(env) }
func (n numNegate) precedence() int { return precUnit }

func (n numNegate) write(b *strings.Builder) {
	b.WriteByte('-')
	writeOperand(b, n.operand, n.operand.precedence() < precUnit)
}

type numBinary struct {
	op          byte
	left, right numNode
}

func (n numBinary) evalNum(env []float64) float64 {
	l, r := n.left.evalNum(env), n.right.evalNum(env)
	switch n.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	case '^':
		return math.Pow(l, r)
	}
	return math.NaN()
}

func (n numBinary) precedence() int {
	switch n.op {
	case '+', '-':
		return precSum
	case '*', '/':
		return precProduct
	default:
		return precPower
	}
}

func (n numBinary) write(b *strings.Builder) {
	p := n.precedence()
	if n.op == '^' {
		// right associative
		writeOperand(b, n.left, n.left.precedence() <= p)
		b.WriteString(" ^ ")
		writeOperand(b, n.right, n.right.precedence() < p)
		return
	}
	writeOperand(b, n.left, n.left.precedence() < p)
	b.WriteByte(' ')
	b.WriteByte(n.op)
	b.WriteByte(' ')
	writeOperand(b, n.right, n.right.precedence() <= p)
}

type boolLiteral struct {
	value bool
}

func (n boolLiteral) evalBool([]float64) bool { return n.value }
func (n boolLiteral) precedence() int { return precUnit }
func (n boolLiteral) write(b *strings.Builder) {
	b.WriteString(strconv.FormatBool(n.value))
}

// boolNot negates everything to its right, so it is wrapped in parentheses
// whenever it is an operand of and/or.
type boolNot struct {
	operand boolNode
}

func (n boolNot) evalBool(env []float64) bool { return !n.operand.evalBool(env) }
func (n boolNot) precedence() int { return precNot }

func (n boolNot) write(b *strings.Builder) {
	b.WriteString("not ")
	n.operand.write(b)
}

type boolBinary struct {
	op          string // "and" or "or"
	left, right boolNode
}

func (n boolBinary) evalBool(env []float64) bool {
	if n.op == "and" {
		return n.left.evalBool(env) && n.right.evalBool(env)
	}
	return n.left.evalBool(env) || n.right.evalBool(env)
}

func (n boolBinary) precedence() int {
	if n.op == "and" {
		return precAnd
	}
	return precOr
}

func (n boolBinary) write(b *strings.Builder) {
	p := n.precedence()
	writeBoolOperand(b, n.left, n.left.precedence() < p)
	b.WriteString(" " + n.op + " ")
	writeBoolOperand(b, n.right, n.right.precedence() <= p)
}

type comparison struct {
	op          string
	left, right numNode
}

func (n comparison) evalBool(env []float64) bool {
	l, r := n.left.evalNum(env), n.right.evalNum(env)
	switch n.op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	case "=":
		return l == r
	case "<>":
		return l != r
	}
	return false
}

func (n comparison) precedence() int { return precCompare }

func (n comparison) write(b *strings.Builder) {
	n.left.write(b)
	b.WriteString(" " + n.op + " ")
	n.right.write(b)
}

func writeOperand(b *strings.Builder, n numNode, parens bool) {
	if parens {
		b.WriteByte('(')
	}
	n.write(b)
	if parens {
		b.WriteByte(')')
	}
}

func writeBoolOperand(b *strings.Builder, n boolNode, parens bool) {
	if _, isNot := n.(boolNot); isNot {
		parens = true
	}
	if parens {
		b.WriteByte('(')
	}
	n.write(b)
	if parens {
		b.WriteByte(')')
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isRelational(op string) bool {
	switch op {
	case "<", "<=", ">", ">=", "=", "<>":
		return true
	}
	return false
}

// NumericalExpression is a compiled arithmetic expression over a list of
// formal parameters. The zero value evaluates to NaN.
type NumericalExpression struct {
	formals   []string
	variables []string
	root      numNode
}

// NumberLiteral returns a constant expression
func NumberLiteral(value float64) *NumericalExpression {
	return &NumericalExpression{root: numLiteral{value: value}}
}

// Evaluate binds actual to the formal parameters positionally and computes
// the value.
func (e *NumericalExpression) Evaluate(actual []float64) (float64, error) {
	if e == nil || e.root == nil {
		return math.NaN(), nil
	}
	if len(actual) != len(e.formals) {
		return math.NaN(), &EvaluationError{
			Expression: e.String(),
			Message:    fmt.Sprintf("expected %d parameters, got %d", len(e.formals), len(actual)),
		}
	}
	return e.root.evalNum(actual), nil
}

// Formals returns the names bound by Evaluate, in binding order
func (e *NumericalExpression) Formals() []string {
	if e == nil {
		return nil
	}
	return e.formals
}

// Variables returns the formal parameters the expression refers to
func (e *NumericalExpression) Variables() []string {
	if e == nil {
		return nil
	}
	return e.variables
}

// IsConstant reports whether the expression refers to no parameter at all
func (e *NumericalExpression) IsConstant() bool {
	return len(e.Variables()) == 0
}

func (e *NumericalExpression) String() string {
	if e == nil || e.root == nil {
		return "NaN"
	}
	var b strings.Builder
	e.root.write(&b)
	return b.String()
}

// BooleanExpression is a compiled condition over a list of formal
// parameters. The zero value evaluates to true.
type BooleanExpression struct {
	formals   []string
	variables []string
	root      boolNode
}

// Evaluate binds actual to the formal parameters positionally and computes
// the truth value.
func (e *BooleanExpression) Evaluate(actual []float64) (bool, error) {
	if e == nil || e.root == nil {
		return true, nil
	}
	if len(actual) != len(e.formals) {
		return false, &EvaluationError{
			Expression: e.String(),
			Message:    fmt.Sprintf("expected %d parameters, got %d", len(e.formals), len(actual)),
		}
	}
	return e.root.evalBool(actual), nil
}

// Formals returns the names bound by Evaluate, in binding order
func (e *BooleanExpression) Formals() []string {
	if e == nil {
		return nil
	}
	return e.formals
}

// Variables returns the formal parameters the condition refers to
func (e *BooleanExpression) Variables() []string {
	if e == nil {
		return nil
	}
	return e.variables
}

func (e *BooleanExpression) String() string {
	if e == nil || e.root == nil {
		return "true"
	}
	var b strings.Builder
	e.root.write(&b)
	return b.String()
}
