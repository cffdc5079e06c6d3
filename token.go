package lsystem

import (
	"fmt"
	"strconv"
)

// TokenType is the category of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenIdentifier
	TokenBracketOpen
	TokenBracketClose
	TokenOperator
	TokenDelimiter
	TokenKeyword
)

var tokenTypeNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenNumber:       "NUMBER",
	TokenIdentifier:   "IDENTIFIER",
	TokenBracketOpen:  "BRACKET_OPEN",
	TokenBracketClose: "BRACKET_CLOSE",
	TokenOperator:     "OPERATOR",
	TokenDelimiter:    "DELIMITER",
	TokenKeyword:      "KEYWORD",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]bool{
	"lsystem":     true,
	"alphabet":    true,
	"axiom":       true,
	"productions": true,
	"ignore":      true,
	"include":     true,
	"and":         true,
	"or":          true,
	"not":         true,
	"true":        true,
	"false":       true,
}

// IsKeyword reports whether word is reserved
func IsKeyword(word string) bool {
	return keywords[word]
}

// Token is a lexeme recognized by the Lexer. Tokens are values and never
// change after the lexer produced them.
type Token struct {
	Type     TokenType
	Lexeme   string
	Number   float64 // parsed value of a TokenNumber
	Position SourcePosition
}

// Is reports whether the token has the given type and, when lexeme is not
// empty, the given lexeme.
func (t Token) Is(tt TokenType, lexeme string) bool {
	return t.Type == tt && (lexeme == "" || t.Lexeme == lexeme)
}

// Value returns the literal value: a float64 for numbers, the text otherwise
func (t Token) Value() interface{} {
	if t.Type == TokenNumber {
		return t.Number
	}
	return t.Lexeme
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %s", t.Type, strconv.Quote(t.Lexeme))
}
