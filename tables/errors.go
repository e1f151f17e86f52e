package tables

import (
	"github.com/ava12/lrx"
)

// Error codes used by tables:
const (
	// DecodeError indicates malformed persisted tables.
	DecodeError = lrx.TableErrors + iota
	// InconsistentTablesError indicates tables referring to non-existent states, productions or symbols.
	InconsistentTablesError
	// BadIdentifierError indicates invalid Go package or variable name.
	BadIdentifierError
)

func decodeError(e error) *lrx.Error {
	return lrx.FormatError(DecodeError, "cannot decode tables: %s", e.Error())
}

func inconsistentError(msg string, params ...any) *lrx.Error {
	return lrx.FormatError(InconsistentTablesError, "inconsistent tables: "+msg, params...)
}

func badIdentifierError(kind, name string) *lrx.Error {
	return lrx.FormatError(BadIdentifierError, "invalid %s name: %q", kind, name)
}
