package expand

import (
	"github.com/ava12/lrx"
	"github.com/ava12/lrx/source"
)

// Error codes used by expand:
const (
	UndefinedSymbolError = lrx.ValidationErrors + iota
	ArityMismatchError
	LookaheadError
	ExclusionError
	UnsupportedSymbolError
)

func formatError(pos source.Pos, code int, msg string, params ...any) *lrx.Error {
	if pos.Source() == nil {
		return lrx.FormatError(code, msg, params...)
	}
	return lrx.FormatErrorPos(pos, code, msg, params...)
}

func undefinedSymbolError(pos source.Pos, nt, name string) *lrx.Error {
	return formatError(pos, UndefinedSymbolError, "%s: undefined symbol %s", nt, name)
}

func undefinedParamError(pos source.Pos, nt, name string) *lrx.Error {
	return formatError(pos, UndefinedSymbolError, "%s: undefined parameter %s", nt, name)
}

func noGoalError() *lrx.Error {
	return lrx.FormatError(UndefinedSymbolError, "grammar has no goal")
}

func arityError(pos source.Pos, nt, name string, expected, got int) *lrx.Error {
	return formatError(pos, ArityMismatchError, "%s: %s takes %d argument(s), got %d", nt, name, expected, got)
}

func argNameError(pos source.Pos, nt, name, arg string) *lrx.Error {
	return formatError(pos, ArityMismatchError, "%s: %s has no parameter %s", nt, name, arg)
}

func passThroughError(pos source.Pos, nt, arg string) *lrx.Error {
	return formatError(pos, ArityMismatchError, "%s: cannot pass %s, no such parameter", nt, arg)
}

func matchIndexError(pos source.Pos, nt string, index, arity int) *lrx.Error {
	return formatError(pos, ArityMismatchError, "%s: reducer refers to $%d, production has %d value(s)", nt, index, arity)
}

func goalParamsError(name string) *lrx.Error {
	return lrx.FormatError(ArityMismatchError, "goal %s must have no parameters", name)
}

func lookaheadLengthError(pos source.Pos, nt string, length int) *lrx.Error {
	return formatError(pos, LookaheadError, "%s: lookahead tests %d tokens, only one is allowed", nt, length)
}

func lookaheadSetError(pos source.Pos, nt, name string) *lrx.Error {
	return formatError(pos, LookaheadError, "%s: lookahead set %s must derive single tokens", nt, name)
}

func exclusionSetError(pos source.Pos, nt, name string) *lrx.Error {
	return formatError(pos, ExclusionError, "%s: excluded %s must derive single tokens", nt, name)
}

func exclusionRangeError(pos source.Pos, nt, from, to string) *lrx.Error {
	return formatError(pos, ExclusionError, "%s: bad range %q through %q, single characters expected", nt, from, to)
}

func unsupportedSymbolError(pos source.Pos, nt string, s any) *lrx.Error {
	return formatError(pos, UnsupportedSymbolError, "%s: unsupported symbol %s", nt, s)
}
