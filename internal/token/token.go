// Package token defines the lexical tokens produced by the lexer and the
// source-location metadata threaded through every later stage.
package token

import "fmt"

// Location pins a token, AST node, or IR node back to the source text. It
// exists for diagnostics only; nothing in the pipeline branches on it.
type Location struct {
	Source string
	Offset int
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Source == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}

// Type identifies the kind of a Token.
type Type string

const (
	Num     Type = "NUM"
	Str     Type = "STR"
	Symbol  Type = "SYMBOL"
	Id      Type = "ID"
	Comma   Type = "COMMA"
	Dot     Type = "DOT"
	Colon   Type = "COLON"
	Equal   Type = "EQUAL"
	LParen  Type = "LPAREN"
	RParen  Type = "RPAREN"
	LCurly  Type = "LCURLY"
	RCurly  Type = "RCURLY"
	LSquare Type = "LSQUARE"
	RSquare Type = "RSQUARE"
	Comment Type = "COMMENT"
	Eof     Type = "EOF"
)

// Token is a single tagged lexeme with its defining location.
//
// Num/Str/Symbol/Id tokens carry their payload in Lexeme (Num and Id keep
// the raw source text; Str and Symbol carry the already-unescaped value).
type Token struct {
	Type   Type
	Lexeme string
	Loc    Location
}

func (t Token) String() string {
	return fmt.Sprintf("%s<%s>@%s", t.Type, t.Lexeme, t.Loc)
}

// IsEof reports whether t marks the end of the token stream.
func (t Token) IsEof() bool { return t.Type == Eof }

// Reserved words. Reserved identifiers are compared by lexeme at parse
// time (§4.2); the lexer itself never special-cases them, it only ever
// emits Id.
var reserved = map[string]bool{
	"def":      true,
	"func":     true,
	"if":       true,
	"then":     true,
	"else":     true,
	"let":      true,
	"in":       true,
	"begin":    true,
	"end":      true,
	"opcode":   true,
	"operator": true,
	"true":     true,
	"false":    true,
}

// IsReserved reports whether lexeme is one of the reserved words listed in
// spec.md §6.
func IsReserved(lexeme string) bool {
	return reserved[lexeme]
}
