package lexer

import (
	"github.com/ava12/lrx/source"
)

// Token is a lexeme fetched by lexer.
type Token struct {
	tokenType int
	typeName  string
	text      []byte
	pos       source.Pos
}

// NewToken creates new token.
func NewToken(tokenType int, typeName string, text []byte, pos source.Pos) *Token {
	return &Token{tokenType, typeName, text, pos}
}

// Type returns token type.
func (t *Token) Type() int {
	return t.tokenType
}

// TypeName returns token type name.
func (t *Token) TypeName() string {
	return t.typeName
}

// Text returns token text.
func (t *Token) Text() string {
	return string(t.text)
}

// Content returns token text as bytes. Must not be modified.
func (t *Token) Content() []byte {
	return t.text
}

// Pos returns token position.
func (t *Token) Pos() source.Pos {
	return t.pos
}

// SourceName returns source name or empty string.
func (t *Token) SourceName() string {
	return t.pos.SourceName()
}

// Line returns 1-based line number.
func (t *Token) Line() int {
	return t.pos.Line()
}

// Col returns 1-based column number.
func (t *Token) Col() int {
	return t.pos.Col()
}

const (
	EofTokenType = -2
	EofTokenName = "-end-of-file-"
)

// EofToken returns end-of-file token positioned after the last byte of source.
func EofToken(s *source.Source) *Token {
	return &Token{tokenType: EofTokenType, typeName: EofTokenName, pos: source.NewPos(s, s.Len())}
}
