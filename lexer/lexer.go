// Package lexer defines regexp-based lexical analyzer used for grammar descriptions.
package lexer

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/ava12/lrx"
	"github.com/ava12/lrx/source"
)

const (
	// ErrorTokenType is the type for fake tokens capturing broken lexemes (e.g. incorrect string literals).
	// The purpose of these tokens is to generate more informative error messages.
	// Lexer will never return a token of this type, an error with message containing token text will be returned instead.
	ErrorTokenType = -1

	// ErrorTokenName is the type name for ErrorTokenType.
	ErrorTokenName = "-error-"
)

// Error codes used by lexer:
const (
	// WrongCharError indicates that lexer cannot fetch any token at current position.
	// Error message contains the rune at current source position.
	WrongCharError = lrx.GrammarSyntaxErrors + iota

	// BadTokenError indicates that lexer has fetched a token of ErrorTokenType.
	BadTokenError
)

// TokenType describes token type for specific capturing group of regular expression.
type TokenType struct {
	// Type contains token type, non-negative. ErrorTokenType is treated specially.
	Type int

	// TypeName contains token type name, may be any value.
	TypeName string
}

// Lexer performs lexical analysis using regexp.Regexp.
// Lexer itself is immutable, stateless, and safe for concurrent use,
// position tracking is done by Scanner.
// Each token type that may be returned by lexer maps to its own regexp capturing group index.
// A match containing no captured groups is treated as insignificant lexeme (e.g. whitespace or comment),
// in this case lexer tries to fetch a token again at new position.
// Every byte of source must belong to some lexeme.
type Lexer struct {
	types []TokenType
	re    *regexp.Regexp
}

// New creates new Lexer.
// Each n-th element of types describes token type for (n+1)-th regexp capturing group.
// A group that has no description or that has negative token type is treated as ErrorTokenType.
func New(re *regexp.Regexp, types []TokenType) *Lexer {
	ts := make([]TokenType, len(types))
	for i, t := range types {
		ts[i].TypeName = t.TypeName
		if t.Type >= 0 {
			ts[i].Type = t.Type
		} else {
			ts[i].Type = ErrorTokenType
		}
	}
	return &Lexer{types: ts, re: re}
}

func wrongCharError(s *source.Source, pos int) *lrx.Error {
	r, _ := utf8.DecodeRune(s.Content()[pos:])
	msg := fmt.Sprintf("wrong char %q (u+%x)", r, r)
	line, col := s.LineCol(pos)
	return lrx.NewError(WrongCharError, msg, s.Name(), line, col)
}

func wrongTokenError(t *Token) *lrx.Error {
	return lrx.FormatErrorPos(t, BadTokenError, "bad token %q", t.Text())
}

// match fetches a single lexeme at pos. Returns nil token for insignificant lexemes.
func (l *Lexer) match(src *source.Source, pos int) (*Token, int, error) {
	content := src.Content()[pos:]
	match := l.re.FindSubmatchIndex(content)
	if len(match) == 0 || match[0] != 0 || match[1] <= match[0] {
		return nil, 0, wrongCharError(src, pos)
	}

	for i := 2; i < len(match); i += 2 {
		if match[i] < 0 || match[i+1] < 0 {
			continue
		}

		tokenType := ErrorTokenType
		typeName := ErrorTokenName
		if len(l.types) >= (i >> 1) {
			tokenType = l.types[(i>>1)-1].Type
			typeName = l.types[(i>>1)-1].TypeName
		}
		token := NewToken(tokenType, typeName, content[match[i]:match[i+1]], source.NewPos(src, pos+match[i]))
		if tokenType == ErrorTokenType {
			return nil, 0, wrongTokenError(token)
		}

		return token, match[1], nil
	}

	return nil, match[1], nil
}

// Scanner returns new scanner for the source starting at its first byte.
func (l *Lexer) Scanner(src *source.Source) *Scanner {
	return &Scanner{lexer: l, src: src}
}

// Scanner holds current position in a single source.
type Scanner struct {
	lexer *Lexer
	src   *source.Source
	pos   int
}

// Next fetches token starting at current source position and advances current position.
// Returns nil token and lrx.Error and does not change position if there is a lexical error.
// Returns EoF token if current position is at the end of source.
func (s *Scanner) Next() (*Token, error) {
	for {
		if s.pos >= s.src.Len() {
			return EofToken(s.src), nil
		}

		t, advance, e := s.lexer.match(s.src, s.pos)
		if e != nil {
			return nil, e
		}

		s.pos += advance
		if t != nil {
			return t, nil
		}
	}
}

// Source returns scanned source.
func (s *Scanner) Source() *source.Source {
	return s.src
}
