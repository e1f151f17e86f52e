package grammar

import (
	"strconv"
	"strings"
)

// Symbol is a right-hand side element. Implemented by Ref, Lit, Optional, Exclusion,
// Lookahead, NoLineTerminator and Prose only.
type Symbol interface {
	String() string
	isSymbol()
}

// Sigil is nonterminal argument kind.
type Sigil byte

const (
	ArgTrue  Sigil = '+'
	ArgFalse Sigil = '~'
	// ArgPass passes caller's parameter of the same name.
	ArgPass Sigil = '?'
)

// Arg is a nonterminal call argument.
type Arg struct {
	Sigil Sigil
	Name  string
}

func (a Arg) String() string {
	return string(a.Sigil) + a.Name
}

// Ref refers to terminal or nonterminal by name.
type Ref struct {
	Name string
	Args []Arg
}

func (r Ref) String() string {
	if len(r.Args) == 0 {
		return r.Name
	}

	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = a.String()
	}
	return r.Name + "[" + strings.Join(args, ", ") + "]"
}

// Lit refers to literal token by its spelling.
type Lit struct {
	Text string
}

func (l Lit) String() string {
	return strconv.Quote(l.Text)
}

// Optional matches zero or one occurrence of Inner.
type Optional struct {
	Inner Symbol
}

func (o Optional) String() string {
	return o.Inner.String() + "?"
}

// ExcludedKind tells what Excluded item contains.
type ExcludedKind int

const (
	// ExcludeSymbol excludes a terminal, literal or nonterminal deriving single terminals.
	ExcludeSymbol ExcludedKind = iota
	// ExcludeRange excludes single rune literal tokens from From to To inclusive.
	ExcludeRange
)

// Excluded is a "but not" clause item.
type Excluded struct {
	Kind     ExcludedKind
	Symbol   Symbol
	From, To string
}

func (x Excluded) String() string {
	if x.Kind == ExcludeRange {
		return strconv.Quote(x.From) + " through " + strconv.Quote(x.To)
	}
	return x.Symbol.String()
}

// Exclusion matches Base unless it starts with excluded terminal.
// Validator resolves Except to Terminals and clears Except.
type Exclusion struct {
	Base      Symbol
	Except    []Excluded
	Terminals []string
}

func (x Exclusion) String() string {
	var items []string
	if len(x.Except) > 0 {
		items = make([]string, len(x.Except))
		for i, e := range x.Except {
			items[i] = e.String()
		}
	} else {
		items = x.Terminals
	}

	if len(items) == 1 {
		return x.Base.String() + " but not " + items[0]
	}
	return x.Base.String() + " but not one of " + strings.Join(items, ", ")
}

// LookaheadOp is lookahead assertion operator.
type LookaheadOp string

const (
	LookaheadEq    LookaheadOp = "=="
	LookaheadNe    LookaheadOp = "!="
	LookaheadNotIn LookaheadOp = "<!"
)

// Lookahead asserts next token.
// Before validation Seqs (token sequences) or Nonterminal are set depending on Op;
// validator normalizes assertion to Negative and Tokens and clears the rest.
type Lookahead struct {
	Op          LookaheadOp
	Seqs        [][]Symbol
	Nonterminal string

	Negative bool
	Tokens   []string
}

func (l Lookahead) String() string {
	if l.Op == "" {
		op := "=="
		if l.Negative {
			op = "<!"
		}
		return "[lookahead " + op + " {" + strings.Join(l.Tokens, ", ") + "}]"
	}

	if l.Nonterminal != "" {
		return "[lookahead " + string(l.Op) + " " + l.Nonterminal + "]"
	}

	seqs := make([]string, len(l.Seqs))
	for i, seq := range l.Seqs {
		items := make([]string, len(seq))
		for j, s := range seq {
			items[j] = s.String()
		}
		seqs[i] = strings.Join(items, " ")
	}
	if l.Op == LookaheadNotIn {
		return "[lookahead <! {" + strings.Join(seqs, ", ") + "}]"
	}
	return "[lookahead " + string(l.Op) + " " + strings.Join(seqs, ", ") + "]"
}

// NoLineTerminator forbids line terminator before the next token.
type NoLineTerminator struct{}

func (NoLineTerminator) String() string {
	return "[no LineTerminator here]"
}

// Prose is an opaque placeholder.
type Prose struct {
	Text string
}

func (p Prose) String() string {
	return "[> " + p.Text + "]"
}

func (Ref) isSymbol()              {}
func (Lit) isSymbol()              {}
func (Optional) isSymbol()         {}
func (Exclusion) isSymbol()        {}
func (Lookahead) isSymbol()        {}
func (NoLineTerminator) isSymbol() {}
func (Prose) isSymbol()            {}

// ProducesValue reports whether symbol pushes a value when matched.
func ProducesValue(s Symbol) bool {
	switch s.(type) {
	case Ref, Lit, Optional, Exclusion:
		return true
	default:
		return false
	}
}

// ValueCount returns the number of value-producing symbols.
func ValueCount(symbols []Symbol) int {
	res := 0
	for _, s := range symbols {
		if ProducesValue(s) {
			res++
		}
	}
	return res
}

// FormatSymbols returns space separated symbols.
func FormatSymbols(symbols []Symbol) string {
	if len(symbols) == 0 {
		return "[empty]"
	}

	items := make([]string, len(symbols))
	for i, s := range symbols {
		items[i] = s.String()
	}
	return strings.Join(items, " ")
}
