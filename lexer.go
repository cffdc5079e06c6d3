package lsystem

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LexContext selects how ambiguous characters are recognized
type LexContext int

const (
	// ContextDefault treats + - * / ^ < > = as operators
	ContextDefault LexContext = iota
	// ContextModuleName also accepts + - / * & | $ as single character identifiers
	ContextModuleName
	// ContextPredecessor also accepts < and > as context brackets
	ContextPredecessor
)

func (c LexContext) String() string {
	switch c {
	case ContextModuleName:
		return "MODULE_NAME"
	case ContextPredecessor:
		return "CONTEXT"
	default:
		return "DEFAULT"
	}
}

const (
	identifierSymbols = "+-/*&|$"
	openBrackets      = "({["
	closeBrackets     = ")}]"
	delimiters        = ",:"
	operatorStarts    = "-+*/^<>="
)

type scanState struct {
	offset int // rune index into input
	bytes  int
	line   int
	column int
}

// Lexer splits a definition into tokens. The caller passes the lexing
// context with every request since the grammar decides what a character
// means.
type Lexer struct {
	input    []rune
	filename string
	cur      scanState
	begin    scanState
	context  LexContext
}

// NewLexer creates a lexer over input; filename is only used in positions
func NewLexer(input, filename string) *Lexer {
	return &Lexer{
		input:    []rune(input),
		filename: filename,
		cur:      scanState{offset: 0, line: 1, column: 1},
	}
}

// NextToken skips whitespace and comments and returns the next token. At
// the end of the input a TokenEOF token is returned.
func (l *Lexer) NextToken(ctx LexContext) (Token, error) {
	l.context = ctx
	l.skipIgnored()
	l.begin = l.cur

	if l.atEnd() {
		return Token{Type: TokenEOF, Position: l.position()}, nil
	}

	if tok, ok := l.identifier(); ok {
		return tok, nil
	}
	if tok, ok, err := l.number(); err != nil || ok {
		return tok, err
	}
	if tok, ok := l.bracket(); ok {
		return tok, nil
	}
	if tok, ok := l.delimiter(); ok {
		return tok, nil
	}
	if tok, ok := l.operator(); ok {
		return tok, nil
	}

	c := l.peek(1)
	l.advance()
	return Token{}, &LexicalError{
		Message:  fmt.Sprintf("unexpected character %s", strconv.QuoteRune(c)),
		Position: l.position(),
	}
}

// LookAhead returns the token distance positions ahead without consuming
// anything.
func (l *Lexer) LookAhead(distance int, ctx LexContext) (Token, error) {
	saved, savedCtx := l.cur, l.context
	defer func() {
		l.cur, l.context = saved, savedCtx
	}()

	var tok Token
	var err error
	for i := 0; i < distance; i++ {
		tok, err = l.NextToken(ctx)
		if err != nil || tok.Type == TokenEOF {
			break
		}
	}
	return tok, err
}

// mark and reset let the parser backtrack over an alternative
func (l *Lexer) mark() scanState {
	return l.cur
}

func (l *Lexer) reset(s scanState) {
	l.cur = s
}

// Lines returns the input split into lines for error context
func (l *Lexer) Lines() []string {
	return strings.Split(string(l.input), "\n")
}

func (l *Lexer) atEnd() bool {
	return l.cur.offset >= len(l.input)
}

// peek returns the n-th upcoming character, 1 being the current one, or 0
// past the end.
func (l *Lexer) peek(n int) rune {
	i := l.cur.offset + n - 1
	if i < 0 || i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

func (l *Lexer) advance() {
	if l.atEnd() {
		return
	}
	if l.input[l.cur.offset] == '\n' {
		l.cur.line++
		l.cur.column = 1
	} else {
		l.cur.column++
	}
	l.cur.bytes += utf8.RuneLen(l.input[l.cur.offset])
	l.cur.offset++
}

func (l *Lexer) skipIgnored() {
	for !l.atEnd() {
		c := l.peek(1)
		switch {
		case isWhitespace(c):
			l.advance()
		case c == '#':
			for !l.atEnd() && l.peek(1) != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) lexeme() string {
	return string(l.input[l.begin.offset:l.cur.offset])
}

func (l *Lexer) position() SourcePosition {
	return SourcePosition{
		Line:     l.begin.line,
		Column:   l.begin.column,
		Offset:   l.begin.bytes,
		Length:   l.cur.offset - l.begin.offset,
		Filename: l.filename,
	}
}

func (l *Lexer) recognize(tt TokenType) Token {
	return Token{Type: tt, Lexeme: l.lexeme(), Position: l.position()}
}

func (l *Lexer) identifier() (Token, bool) {
	c := l.peek(1)
	if l.context == ContextModuleName && strings.ContainsRune(identifierSymbols, c) {
		l.advance()
		return l.recognize(TokenIdentifier), true
	}
	if !isLetter(c) {
		return Token{}, false
	}
	l.advance()
	for isLetter(l.peek(1)) || isDigit(l.peek(1)) {
		l.advance()
	}
	if IsKeyword(l.lexeme()) {
		return l.recognize(TokenKeyword), true
	}
	return l.recognize(TokenIdentifier), true
}

func (l *Lexer) digits() {
	for isDigit(l.peek(1)) {
		l.advance()
	}
}

func (l *Lexer) number() (Token, bool, error) {
	if !isDigit(l.peek(1)) {
		return Token{}, false, nil
	}
	l.digits()

	if l.peek(1) == '.' && isDigit(l.peek(2)) {
		l.advance()
		l.digits()
	}

	if c := l.peek(1); c == 'e' || c == 'E' {
		l.advance()
		if c := l.peek(1); c == '+' || c == '-' {
			l.advance()
		}
		if !isDigit(l.peek(1)) {
			found := "end of input"
			if !l.atEnd() {
				found = strconv.QuoteRune(l.peek(1))
			}
			return Token{}, false, &LexicalError{
				Message:  fmt.Sprintf("expected digits in the exponent of '%s', got %s", l.lexeme(), found),
				Position: l.position(),
			}
		}
		l.digits()
	}

	value, err := strconv.ParseFloat(l.lexeme(), 64)
	if err != nil {
		return Token{}, false, &LexicalError{
			Message:  fmt.Sprintf("unable to parse '%s' as a number", l.lexeme()),
			Position: l.position(),
		}
	}
	tok := l.recognize(TokenNumber)
	tok.Number = value
	return tok, true, nil
}

func (l *Lexer) bracket() (Token, bool) {
	open, closing := openBrackets, closeBrackets
	if l.context == ContextPredecessor {
		open += "<"
		closing += ">"
	}
	c := l.peek(1)
	switch {
	case strings.ContainsRune(open, c):
		l.advance()
		return l.recognize(TokenBracketOpen), true
	case strings.ContainsRune(closing, c):
		l.advance()
		return l.recognize(TokenBracketClose), true
	}
	return Token{}, false
}

func (l *Lexer) delimiter() (Token, bool) {
	if !strings.ContainsRune(delimiters, l.peek(1)) {
		return Token{}, false
	}
	l.advance()
	return l.recognize(TokenDelimiter), true
}

func (l *Lexer) operator() (Token, bool) {
	c := l.peek(1)
	if !strings.ContainsRune(operatorStarts, c) {
		return Token{}, false
	}
	l.advance()
	next := l.peek(1)
	switch {
	case c == '-' && next == '>':
		l.advance()
	case c == '<' && (next == '=' || next == '>'):
		l.advance()
	case c == '>' && next == '=':
		l.advance()
	}
	return l.recognize(TokenOperator), true
}

func isWhitespace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isLetter(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
