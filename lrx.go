/*
Package lrx is an LR(1) parser generator and table-driven parser runtime.

Consists of subpackages:
  - cmd/lrgen: console utility converting grammar description to persisted tables (JSON or Go source);
  - grammar: in-memory grammar model (terminals, nonterminals, productions, reducer expressions);
  - langdef: converts grammar description text to grammar model;
  - expand: validates grammar and expands parameterized nonterminals, optional symbols and constraints;
  - automaton: builds canonical LR(1) automaton and resolves conflicts;
  - tables: flat persisted form of automaton, JSON and Go source encoders;
  - parser: stack machine executing tables against a token stream;
  - tree: generic syntax tree built by default reducers;
  - lrgen: grammar text to tables pipeline.

Typical usage is:

1. Describe grammar in the grammar description language, with reducer expressions for productions.

2. Compile it to tables either "on the fly" using lrgen.Compile or with lrgen utility.

3. Provide a token stream (the lexer is not a part of this library) and reducer bindings.

4. Create new parser for the tables and feed it token streams.
*/
package lrx

import (
	goerrors "errors"
	"fmt"

	"github.com/pingcap/errors"
	"go.uber.org/multierr"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	GrammarSyntaxErrors = 1   // used by langdef
	ValidationErrors    = 101 // used by expand
	ConflictErrors      = 201 // used by automaton
	TableErrors         = 301 // used by tables
	ParseErrors         = 401 // used by parser
)

// Error is the error type used by lrx subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source file or 0.
	Line int

	// Col contains column number in source file or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error.
type SourcePos interface {
	// SourceName returns source file name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if line != 0 && col != 0 {
		if name == "" {
			msg += fmt.Sprintf(" at line %d col %d", line, col)
		} else {
			msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
		}
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// ErrorCode returns Error.Code.
func (e *Error) ErrorCode() int {
	return e.Code
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

type coder interface {
	ErrorCode() int
}

// CodeOf returns the code of the first lrx error found in e, looking through traced
// and combined errors. Returns 0 if e is nil or carries no code.
func CodeOf(e error) int {
	for _, item := range multierr.Errors(e) {
		var c coder
		if goerrors.As(errors.Cause(item), &c) {
			return c.ErrorCode()
		}
	}
	return 0
}
