package parser

import (
	"strings"

	"github.com/ava12/lrx"
)

// Error codes used by parser:
const (
	// UnexpectedTokenError is the code of *ParseError for a token with no action in current state.
	UnexpectedTokenError = lrx.ParseErrors + iota
	// UnexpectedEndError is the code of *ParseError for premature end of input.
	UnexpectedEndError
	// UnknownTokenError is the code of *ParseError for a token of unknown kind.
	UnknownTokenError
	UnknownGoalError
	// ReducerError indicates missing reducer binding.
	ReducerError
	// GotoError indicates a reduction landing on an empty goto cell of corrupted tables.
	GotoError
)

// ParseError describes rejected token. Unwraps to *lrx.Error.
type ParseError struct {
	// Got contains token kind or automaton.EndOfInput.
	Got string
	// Expected contains sorted kinds acceptable in current state.
	Expected []string
	Line     int
	Col      int

	err *lrx.Error
}

func (e *ParseError) Error() string {
	return e.err.Message
}

// ErrorCode returns error code.
func (e *ParseError) ErrorCode() int {
	return e.err.Code
}

func (e *ParseError) Unwrap() error {
	return e.err
}

func newParseError(code int, msg string, got string, expected []string, tok Token) *ParseError {
	line, col := 0, 0
	if tok != nil {
		line, col = tok.Line(), tok.Col()
	}
	if len(expected) > 0 {
		msg += ", expecting " + strings.Join(expected, ", ")
	}
	return &ParseError{
		Got:      got,
		Expected: expected,
		Line:     line,
		Col:      col,
		err:      lrx.NewError(code, msg, "", line, col),
	}
}

func unexpectedTokenError(tok Token, expected []string) *ParseError {
	return newParseError(UnexpectedTokenError, "unexpected "+tok.Kind()+" token", tok.Kind(), expected, tok)
}

func unexpectedEndError(got string, expected []string) *ParseError {
	return newParseError(UnexpectedEndError, "unexpected end of input", got, expected, nil)
}

func unknownTokenError(tok Token) *ParseError {
	return newParseError(UnknownTokenError, "unknown token kind "+tok.Kind(), tok.Kind(), nil, tok)
}

func unknownGoalError(goal string) *lrx.Error {
	return lrx.FormatError(UnknownGoalError, "unknown goal %s", goal)
}

func reducerError(prod int) *lrx.Error {
	return lrx.FormatError(ReducerError, "no reducer bound to production #%d", prod)
}

func gotoError(nt string, state int) *lrx.Error {
	return lrx.FormatError(GotoError, "no goto for %s in state %d", nt, state)
}
