package parser

import (
	"io"
)

// Lexeme is a plain Token implementation.
type Lexeme struct {
	Type    string
	Content any
	// NewLine is set if the lexeme is preceded by line terminator.
	NewLine bool
	LineNo  int
	ColNo   int
}

func (l *Lexeme) Kind() string {
	return l.Type
}

func (l *Lexeme) Value() any {
	return l.Content
}

func (l *Lexeme) LineTerminatorBefore() bool {
	return l.NewLine
}

func (l *Lexeme) Line() int {
	return l.LineNo
}

func (l *Lexeme) Col() int {
	return l.ColNo
}

// SliceStream returns tokens from slice.
type SliceStream struct {
	tokens []Token
	pos    int
}

// NewSliceStream creates stream returning tokens in order.
func NewSliceStream(tokens ...Token) *SliceStream {
	return &SliceStream{tokens: tokens}
}

func (s *SliceStream) Next() (Token, error) {
	if s.pos >= len(s.tokens) {
		return nil, io.EOF
	}

	s.pos++
	return s.tokens[s.pos-1], nil
}

type lineBreakToken struct {
	Token
}

func (lineBreakToken) LineTerminatorBefore() bool {
	return true
}

type lineBreakStream struct {
	TokenStream
	line int
}

// MarkLineBreaks wraps stream reporting line terminator before every token
// placed on a line after the previous token's one.
// For streams that cannot detect line terminators themselves.
// Multiline tokens are not supported: only the starting line is tracked.
func MarkLineBreaks(ts TokenStream) TokenStream {
	return &lineBreakStream{TokenStream: ts}
}

func (s *lineBreakStream) Next() (Token, error) {
	tok, e := s.TokenStream.Next()
	if e != nil {
		return nil, e
	}

	first := s.line == 0
	newLine := tok.Line() > s.line
	s.line = tok.Line()
	if newLine && !first && !tok.LineTerminatorBefore() {
		return lineBreakToken{tok}, nil
	}
	return tok, nil
}
