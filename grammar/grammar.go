// Package grammar defines in-memory grammar model shared by front-end, validator and automaton builder.
package grammar

import (
	"github.com/ava12/lrx/source"
)

// Terminal describes token kind.
// Literal contains token spelling for literal tokens and is empty for named token classes.
type Terminal struct {
	Name    string
	Literal string
}

// IsLiteral reports whether the terminal is a literal token.
func (t Terminal) IsLiteral() bool {
	return t.Literal != ""
}

// Guard is production activation predicate: production is kept only in variants
// where parameter Param has value Value.
type Guard struct {
	Param string
	Value bool
}

// Production is a single right-hand side alternative of a nonterminal.
type Production struct {
	Symbols []Symbol
	// Reducer is nil for default reducer.
	Reducer *Expr
	// ID is an external production identifier or empty string.
	ID    string
	Guard *Guard
	Pos   source.Pos
}

// Arity returns the number of value-producing symbols.
func (p Production) Arity() int {
	return ValueCount(p.Symbols)
}

// Nonterminal is a nonterminal definition.
type Nonterminal struct {
	Name   string
	Params []string
	// Type is optional type annotation or empty string.
	Type        string
	Productions []Production
	Pos         source.Pos
}

// ParamIndex returns parameter index or -1.
func (nt *Nonterminal) ParamIndex(name string) int {
	for i, p := range nt.Params {
		if p == name {
			return i
		}
	}
	return -1
}

// Grammar is a set of terminals and nonterminal definitions.
// Terminals and nonterminals are stored in slices, all cross-references are by name.
type Grammar struct {
	Terminals    []Terminal
	Nonterminals []Nonterminal
	// Goals contains goal nonterminal names. First nonterminal is the goal if empty.
	Goals []string
	// Expanded is set for grammars produced by validator, these contain no parameters,
	// optional symbols, prose, unresolved literals, exclusion or lookahead clauses.
	Expanded bool

	tIndex   map[string]int
	litIndex map[string]int
	ntIndex  map[string]int
}

// New creates empty grammar.
func New() *Grammar {
	return &Grammar{
		tIndex:   make(map[string]int),
		litIndex: make(map[string]int),
		ntIndex:  make(map[string]int),
	}
}

func (g *Grammar) ensureIndex() {
	if g.tIndex != nil {
		return
	}

	g.tIndex = make(map[string]int, len(g.Terminals))
	g.litIndex = make(map[string]int)
	g.ntIndex = make(map[string]int, len(g.Nonterminals))
	for i, t := range g.Terminals {
		g.tIndex[t.Name] = i
		if t.Literal != "" {
			g.litIndex[t.Literal] = i
		}
	}
	for i, nt := range g.Nonterminals {
		g.ntIndex[nt.Name] = i
	}
}

// AddTerminal appends terminal and returns its index.
// Returns index of existing terminal and false if the name is already taken.
func (g *Grammar) AddTerminal(t Terminal) (int, bool) {
	g.ensureIndex()
	if i, has := g.tIndex[t.Name]; has {
		return i, false
	}

	i := len(g.Terminals)
	g.Terminals = append(g.Terminals, t)
	g.tIndex[t.Name] = i
	if t.Literal != "" {
		if _, has := g.litIndex[t.Literal]; !has {
			g.litIndex[t.Literal] = i
		}
	}
	return i, true
}

// AddNonterminal appends nonterminal and returns its index.
// Returns index of existing nonterminal and false if the name is already taken.
func (g *Grammar) AddNonterminal(nt Nonterminal) (int, bool) {
	g.ensureIndex()
	if i, has := g.ntIndex[nt.Name]; has {
		return i, false
	}

	i := len(g.Nonterminals)
	g.Nonterminals = append(g.Nonterminals, nt)
	g.ntIndex[nt.Name] = i
	return i, true
}

// Terminal returns terminal by name.
func (g *Grammar) Terminal(name string) (*Terminal, bool) {
	i := g.TerminalIndex(name)
	if i < 0 {
		return nil, false
	}
	return &g.Terminals[i], true
}

// TerminalIndex returns terminal index or -1.
func (g *Grammar) TerminalIndex(name string) int {
	g.ensureIndex()
	i, has := g.tIndex[name]
	if !has {
		return -1
	}
	return i
}

// LiteralTerminal returns terminal declared with literal spelling.
func (g *Grammar) LiteralTerminal(literal string) (*Terminal, bool) {
	g.ensureIndex()
	i, has := g.litIndex[literal]
	if !has {
		return nil, false
	}
	return &g.Terminals[i], true
}

// Nonterminal returns nonterminal definition by name.
func (g *Grammar) Nonterminal(name string) (*Nonterminal, bool) {
	i := g.NonterminalIndex(name)
	if i < 0 {
		return nil, false
	}
	return &g.Nonterminals[i], true
}

// NonterminalIndex returns nonterminal index or -1.
func (g *Grammar) NonterminalIndex(name string) int {
	g.ensureIndex()
	i, has := g.ntIndex[name]
	if !has {
		return -1
	}
	return i
}

// GoalNames returns goal nonterminal names, defaulting to the first nonterminal.
func (g *Grammar) GoalNames() []string {
	if len(g.Goals) > 0 || len(g.Nonterminals) == 0 {
		return g.Goals
	}
	return []string{g.Nonterminals[0].Name}
}
