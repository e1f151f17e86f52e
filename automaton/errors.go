package automaton

import (
	"strings"

	"github.com/ava12/lrx"
)

// Error codes used by automaton:
const (
	// GrammarConflictError is the code of *ConflictError.
	GrammarConflictError = lrx.ConflictErrors + iota
)

// ConflictKind tells what kind of conflict was found.
type ConflictKind int

const (
	ShiftReduceConflict ConflictKind = iota
	ReduceReduceConflict
	// RestrictionConflict indicates a restricted position that no token can pass
	// regardless of line terminator presence.
	RestrictionConflict
)

func (k ConflictKind) String() string {
	switch k {
	case ShiftReduceConflict:
		return "shift/reduce"
	case ReduceReduceConflict:
		return "reduce/reduce"
	default:
		return "restriction"
	}
}

// ConflictError describes unresolved conflict. Unwraps to *lrx.Error.
type ConflictError struct {
	// State contains state index.
	State int
	// Terminal contains lookahead terminal name.
	Terminal string
	// Productions contains conflicting production indexes.
	Productions []int
	Kind        ConflictKind

	err *lrx.Error
}

func (e *ConflictError) Error() string {
	return e.err.Message
}

// ErrorCode returns GrammarConflictError.
func (e *ConflictError) ErrorCode() int {
	return e.err.Code
}

func (e *ConflictError) Unwrap() error {
	return e.err
}

func (b *builder) conflictError(state, terminal int, kind ConflictKind, prods []int) *ConflictError {
	items := make([]string, len(prods))
	for i, p := range prods {
		items[i] = b.formatProduction(p)
	}
	return &ConflictError{
		State:       state,
		Terminal:    b.terminals[terminal],
		Productions: prods,
		Kind:        kind,
		err: lrx.FormatError(GrammarConflictError, "%s conflict in state %d on %s: %s",
			kind, state, b.terminals[terminal], strings.Join(items, "; ")),
	}
}
