// Package automaton builds canonical LR(1) automaton for expanded grammar.
//
// Terminals are numbered in grammar order, end of input gets the next number.
// Nonterminals and productions are numbered in grammar order too,
// states are numbered in breadth-first discovery order starting with one start state per goal.
package automaton

import (
	"time"

	"go.uber.org/zap"

	"github.com/ava12/lrx/expand"
	"github.com/ava12/lrx/grammar"
)

// EndOfInput is the name of pseudo-terminal matching end of token stream.
const EndOfInput = "-end-of-input-"

// ActionKind is parser action kind.
type ActionKind int8

const (
	ErrorAction ActionKind = iota
	ShiftAction
	ReduceAction
	AcceptAction
)

// Action is a single parser action.
// Target is a state index for ShiftAction, production index for ReduceAction
// and goal index for AcceptAction.
type Action struct {
	Kind   ActionKind
	Target int
}

// Condition tells whether action depends on anything besides current state and token kind.
type Condition int8

const (
	// Unconditional entry has a single action.
	Unconditional Condition = iota
	// LookaheadGuarded entry has a single action, but some candidates were removed by lookahead assertions.
	LookaheadGuarded
	// LineTerminatorSplit entry has Action for tokens not preceded by line terminator
	// and Alt for tokens preceded by one.
	LineTerminatorSplit
)

// Entry is action table cell. Alt equals Action unless Cond is LineTerminatorSplit.
type Entry struct {
	Cond   Condition
	Action Action
	Alt    Action
}

// Select returns action for token with given line terminator fact.
func (e Entry) Select(lineTerminatorBefore bool) Action {
	if lineTerminatorBefore {
		return e.Alt
	}
	return e.Action
}

// Production is a concrete production of expanded grammar.
type Production struct {
	// LHS contains nonterminal index.
	LHS int
	// Symbols contains right-hand side terminal and nonterminal names.
	Symbols []string
	// Arity is the number of values popped on reduction.
	Arity   int
	Reducer grammar.Expr
	// ID is an external production identifier or empty string.
	ID string
}

// Goal is a goal nonterminal with its start state.
type Goal struct {
	Name  string
	State int
}

// Automaton is an immutable LR(1) automaton.
type Automaton struct {
	terminals    []string
	nonterminals []string
	productions  []Production
	goals        []Goal
	actions      [][]Entry
	gotos        [][]int
	tIndex       map[string]int
	ntIndex      map[string]int
}

// Build creates automaton for grammar g, g is expanded first if needed.
// Returns validation errors or *ConflictError.
func Build(g *grammar.Grammar, opts ...Option) (*Automaton, error) {
	started := time.Now()
	var e error
	if !g.Expanded {
		g, e = expand.Expand(g)
		if e != nil {
			return nil, e
		}
	}

	e = g.Check()
	if e != nil {
		return nil, e
	}

	b := newBuilder(g, newConfig(opts))
	b.discover()
	e = b.buildRows()
	if e != nil {
		return nil, e
	}

	a := b.result()
	b.logger.Info("automaton built",
		zap.Int("states", len(a.actions)),
		zap.Int("productions", len(a.productions)),
		zap.Int("terminals", len(a.terminals)),
		zap.Int("nonterminals", len(a.nonterminals)),
		zap.Duration("duration", time.Since(started)))
	return a, nil
}

func newAutomaton(terminals, nonterminals []string) *Automaton {
	a := &Automaton{
		terminals:    terminals,
		nonterminals: nonterminals,
		tIndex:       make(map[string]int, len(terminals)),
		ntIndex:      make(map[string]int, len(nonterminals)),
	}
	for i, name := range terminals {
		a.tIndex[name] = i
	}
	for i, name := range nonterminals {
		a.ntIndex[name] = i
	}
	return a
}

// NumStates returns the number of states.
func (a *Automaton) NumStates() int {
	return len(a.actions)
}

// Terminals returns terminal names, the last one is EndOfInput.
func (a *Automaton) Terminals() []string {
	return a.terminals
}

// Nonterminals returns concrete nonterminal names.
func (a *Automaton) Nonterminals() []string {
	return a.nonterminals
}

// Productions returns all productions, indexes are used as ReduceAction targets.
func (a *Automaton) Productions() []Production {
	return a.productions
}

// Goals returns goals in declaration order.
func (a *Automaton) Goals() []Goal {
	return a.goals
}

// Action returns action table entry, zero Entry (error) for invalid indexes.
func (a *Automaton) Action(state, terminal int) Entry {
	if state < 0 || state >= len(a.actions) || terminal < 0 || terminal >= len(a.terminals) {
		return Entry{}
	}
	return a.actions[state][terminal]
}

// Goto returns state entered after reduction to nonterminal nt in state or -1.
func (a *Automaton) Goto(state, nt int) int {
	if state < 0 || state >= len(a.gotos) || nt < 0 || nt >= len(a.nonterminals) {
		return -1
	}
	return a.gotos[state][nt]
}

// Reducer returns reducer expression of production.
func (a *Automaton) Reducer(prod int) grammar.Expr {
	return a.productions[prod].Reducer
}

// Start returns start state of goal nonterminal.
func (a *Automaton) Start(goal string) (int, bool) {
	for _, g := range a.goals {
		if g.Name == goal {
			return g.State, true
		}
	}
	return 0, false
}

// TerminalID returns terminal index or -1.
func (a *Automaton) TerminalID(name string) int {
	i, has := a.tIndex[name]
	if !has {
		return -1
	}
	return i
}

// NonterminalID returns nonterminal index or -1.
func (a *Automaton) NonterminalID(name string) int {
	i, has := a.ntIndex[name]
	if !has {
		return -1
	}
	return i
}
